// Package version provides the bucketlink build version.
//
//nolint:revive
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release version, overridden by ldflags at build time.
	Version = "dev"
	// CommitHash is the git commit hash, overridden by ldflags at build time.
	CommitHash = ""
	// BuildTime is the build timestamp, overridden by ldflags at build time.
	BuildTime = ""
)

// GetInfo returns the version followed by the short commit hash when known.
func GetInfo() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					CommitHash = setting.Value
				case "vcs.time":
					BuildTime = setting.Value
				}
			}
		}
	}

	res := Version
	if CommitHash != "" {
		shortHash := CommitHash
		if len(shortHash) > 7 {
			shortHash = shortHash[:7]
		}
		res += fmt.Sprintf(" (%s)", shortHash)
	}
	return res
}
