// Package buildinfo carries the release identifiers stamped in at link time
package buildinfo

import "runtime/debug"

// Version and Commit are set with
// -ldflags "-X github.com/sul-dlss/dor-services-app-sub001/internal/buildinfo.Version=v1.2.0"
var (
	Version = ""
	Commit  = ""
)

// GetVersion returns the stamped version, then the module version recorded
// by `go install`, then "dev".
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetCommit returns the stamped commit or the VCS revision from build info
func GetCommit() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}
