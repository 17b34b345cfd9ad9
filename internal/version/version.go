// Package version reports build information for the license-server binaries.
//
// the values are set at build time with ldflags, e.g.
//
//	go build -ldflags "-X github.com/information-sharing-networks/license-server/internal/version.version=1.2.0" ./cmd/license-server
package version

import "runtime/debug"

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info contains the build information for the running binary
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

// Get returns the build information.
// When the binary was built without ldflags the VCS revision recorded by the go toolchain is used instead.
func Get() Info {
	info := Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}

	if info.GitCommit != "unknown" {
		return info
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.GitCommit = setting.Value
			case "vcs.time":
				if info.BuildDate == "unknown" {
					info.BuildDate = setting.Value
				}
			}
		}
	}
	return info
}
