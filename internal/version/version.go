// Package version exposes build metadata for the ritual binary.
//
// Version, Commit, and Date are overridden at release time via ldflags:
//
//	go build -ldflags "-X github.com/ritual-sh/ritual/internal/version.Version=v1.2.0"
//
// Builds installed without ldflags get values backfilled from
// runtime/debug build info, so `go install` still reports something real.
package version

import (
	"fmt"
	"runtime/debug"
)

// Populated via ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns just the version number.
func Short() string { return Version }

// Full returns the version with commit and build date.
func Full() string {
	return fmt.Sprintf("%s (%s) %s", Version, Commit, Date)
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		backfill(info)
	}
}

// backfill fills any variable still holding its ldflags default from build
// info. Explicit ldflags values always win.
func backfill(info *debug.BuildInfo) {
	if info == nil {
		return
	}
	// An untagged HEAD build reports "(devel)"; keep "dev" for that.
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && s.Value != "" {
				Commit = shortRev(s.Value)
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
