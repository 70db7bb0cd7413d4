package version

import (
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/kapeta/sdk-go-redis/version.Version=1.2.3".
var (
	Version   = "dev"
	GitCommit = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the build information, filling the commit and Go version from
// the embedded VCS settings when they were not set at link time.
func Get() Info {
	return fromBuildInfo(Version, GitCommit, debug.ReadBuildInfo)
}

func fromBuildInfo(ver, commit string, read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: ver, GitCommit: commit}
	if bi, ok := read(); ok && bi != nil {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// String returns "version[-commit][-dirty]".
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}
