// Package version exposes the build identity of the running binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags at release build time. A plain source build falls back
// to the VCS metadata the toolchain embeds.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// GetInfo formats the version with its short commit hash, when one is known.
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
	if CommitHash == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, shortHash(CommitHash))
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
