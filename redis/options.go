package redis

import (
	"crypto/tls"
	"fmt"
	"maps"
	"net"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kapeta/sdk-go-redis/validation"
)

// OptionURL is the option key holding the connection URL.
const OptionURL = "url"

// Options are free-form client options keyed like Settings' mapstructure tags.
type Options map[string]any

// MergeOptions returns {caller..., resource..., "url": url}. Resource options
// override caller options and url overrides both. Neither input is modified.
func MergeOptions(caller, resource Options, url string) Options {
	merged := make(Options, len(caller)+len(resource)+1)
	maps.Copy(merged, caller)
	maps.Copy(merged, resource)
	merged[OptionURL] = url
	return merged
}

// Settings are the client options understood by Connect. Zero values keep the
// go-redis defaults.
type Settings struct {
	URL             string        `mapstructure:"url" validate:"required"`
	ClientName      string        `mapstructure:"client_name"`
	DB              int           `mapstructure:"db" validate:"gte=0"`
	Protocol        int           `mapstructure:"protocol" validate:"omitempty,oneof=2 3"`
	PoolSize        int           `mapstructure:"pool_size" validate:"gte=0"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	MaxActiveConns  int           `mapstructure:"max_active_conns" validate:"gte=0"`
	MaxRetries      int           `mapstructure:"max_retries" validate:"gte=-1"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" validate:"gte=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `mapstructure:"idle_timeout"`
	ConnMaxLifetime time.Duration `mapstructure:"max_conn_age"`
	PoolFIFO        bool          `mapstructure:"pool_fifo"`
	TLS             bool          `mapstructure:"tls"`
}

// DecodeSettings decodes and validates opts. Numbers and booleans may be
// given as strings and durations as "500ms"-style strings. Keys Settings does
// not know are returned sorted in unused.
func DecodeSettings(opts Options) (settings Settings, unused []string, err error) {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Metadata:         &md,
		Result:           &settings,
	})
	if err != nil {
		return Settings{}, nil, fmt.Errorf("redis options: %w", err)
	}
	if err := dec.Decode(map[string]any(opts)); err != nil {
		return Settings{}, nil, fmt.Errorf("redis options: %w", err)
	}
	if err := validation.Validate(settings); err != nil {
		return Settings{}, nil, fmt.Errorf("redis options: %w", err)
	}

	sort.Strings(md.Unused)
	return settings, md.Unused, nil
}

// ClientOptions parses the settings URL and overlays the non-zero settings.
func (s Settings) ClientOptions() (*goredis.Options, error) {
	opts, err := goredis.ParseURL(s.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	if s.ClientName != "" {
		opts.ClientName = s.ClientName
	}
	if s.DB != 0 {
		opts.DB = s.DB
	}
	if s.Protocol != 0 {
		opts.Protocol = s.Protocol
	}
	if s.PoolSize != 0 {
		opts.PoolSize = s.PoolSize
	}
	if s.MinIdleConns != 0 {
		opts.MinIdleConns = s.MinIdleConns
	}
	if s.MaxIdleConns != 0 {
		opts.MaxIdleConns = s.MaxIdleConns
	}
	if s.MaxActiveConns != 0 {
		opts.MaxActiveConns = s.MaxActiveConns
	}
	if s.MaxRetries != 0 {
		opts.MaxRetries = s.MaxRetries
	}
	if s.MinRetryBackoff != 0 {
		opts.MinRetryBackoff = s.MinRetryBackoff
	}
	if s.MaxRetryBackoff != 0 {
		opts.MaxRetryBackoff = s.MaxRetryBackoff
	}
	if s.DialTimeout != 0 {
		opts.DialTimeout = s.DialTimeout
	}
	if s.ReadTimeout != 0 {
		opts.ReadTimeout = s.ReadTimeout
	}
	if s.WriteTimeout != 0 {
		opts.WriteTimeout = s.WriteTimeout
	}
	if s.PoolTimeout != 0 {
		opts.PoolTimeout = s.PoolTimeout
	}
	if s.ConnMaxIdleTime != 0 {
		opts.ConnMaxIdleTime = s.ConnMaxIdleTime
	}
	if s.ConnMaxLifetime != 0 {
		opts.ConnMaxLifetime = s.ConnMaxLifetime
	}
	if s.PoolFIFO {
		opts.PoolFIFO = true
	}
	if s.TLS && opts.TLSConfig == nil {
		host, _, err := net.SplitHostPort(opts.Addr)
		if err != nil {
			host = opts.Addr
		}
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
