package redis

import (
	"strconv"
	"strings"

	"github.com/kapeta/sdk-go-redis/config"
)

// BuildURL returns the connection URL for info:
//
//	redis://[user[:password]@]host:port
//
// Credentials are percent-encoded, host and port are not. The password is
// only included together with a username.
func BuildURL(info *config.ResourceInfo) string {
	var b strings.Builder
	b.WriteString(Scheme)

	if creds := info.Credentials; creds != nil && creds.Username != "" {
		b.WriteString(encodeURIComponent(creds.Username))
		if creds.Password != "" {
			b.WriteByte(':')
			b.WriteString(encodeURIComponent(creds.Password))
		}
		b.WriteByte('@')
	}

	b.WriteString(hostPort(info))
	return b.String()
}

func hostPort(info *config.ResourceInfo) string {
	return info.Host + ":" + strconv.Itoa(info.Port)
}

const upperHex = "0123456789ABCDEF"

// encodeURIComponent escapes every byte outside A-Z a-z 0-9 and -_.!~*'()
// so URLs match those produced by the other Kapeta SDKs. url.QueryEscape and
// url.PathEscape use different reserved sets.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
