// Package version reports which cpisync build is running. Release builds
// set the variables below via ldflags:
//
//	go build -ldflags "-X github.com/rbb-data/cpisync/version.Version=v1.2.0 \
//	  -X github.com/rbb-data/cpisync/version.CommitHash=$(git rev-parse HEAD)"
//
// Other builds fall back to the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unset = "dev"

// Set at build time.
var (
	CommitHash = unset
	BuildTime  = "unknown"
	Version    = unset
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Modified  bool   `json:"modified,omitempty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi)
}

// resolve prefers ldflags values and fills the gaps from bi, which may be nil.
func resolve(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info
	}

	if info.Version == unset && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	if info.Commit != unset {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("cpisync %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns the first seven characters of the commit, marked when the
// working tree was dirty.
func (i Info) Short() string {
	c := i.Commit
	if len(c) > 7 {
		c = c[:7]
	}
	if i.Modified {
		c += "+dirty"
	}
	return c
}

// UserAgent is sent with every outgoing request, e.g. "cpisync/v1.2.0 (a1b2c3d)".
func (i Info) UserAgent() string {
	return fmt.Sprintf("cpisync/%s (%s)", i.Version, i.Short())
}
