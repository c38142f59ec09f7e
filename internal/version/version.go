// Package version provides build information for the Stellar library server.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time using -ldflags "-X .../version.Version=...".
var (
	Name      = "Stellar Library"
	Version   = "0.1.0"
	BuildTime = ""
	GitCommit = ""
)

// Info contains version information
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
	GoVersion string `json:"goVersion"`
}

// GetInfo returns the current version information. When GitCommit was not
// injected, the VCS revision embedded by the Go toolchain is used.
func GetInfo() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
	if info.GitCommit == "" || info.BuildTime == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch {
				case s.Key == "vcs.revision" && info.GitCommit == "":
					info.GitCommit = s.Value
				case s.Key == "vcs.time" && info.BuildTime == "":
					info.BuildTime = s.Value
				}
			}
		}
	}
	return info
}

// String returns a formatted version string
func (i Info) String() string {
	s := fmt.Sprintf("%s v%s", i.Name, i.Version)
	if i.GitCommit != "" {
		s += fmt.Sprintf(" (%s)", i.GitCommit[:min(7, len(i.GitCommit))])
	}
	if i.BuildTime != "" {
		s += fmt.Sprintf(" built %s", i.BuildTime)
	}
	return s
}
