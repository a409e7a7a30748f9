// Package version holds the engine name, semantic version and build
// metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Engine identity written into generated files.
const (
	Name  = "gridstage"
	Major = 0
	Minor = 3
	Patch = 0
)

var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
)

// Semver returns "major.minor.patch".
func Semver() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}

// Info describes the build in structured form.
type Info struct {
	Name      string
	Version   string
	BuildDate string
	Commit    string
	GoVersion string
}

// Get returns the build info. Commit falls back to the VCS revision
// recorded by the Go toolchain.
func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Semver(),
		BuildDate: BuildDate,
		Commit:    BuildCommit,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Commit == "" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

// String returns a human-readable build string.
func String() string {
	info := Get()
	return fmt.Sprintf("%s v%s built %s commit[%s]",
		info.Name,
		info.Version,
		coalesce(info.BuildDate, "unknown"),
		coalesce(info.Commit, "unknown"),
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
