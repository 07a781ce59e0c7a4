// Package version reports what build of the engine is running
package version

import (
	"runtime"
	"runtime/debug"
)

// BuildInfo describes one binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Set with -ldflags "-X hellomama/internal/core/version.version=v1.2.0 ..."
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Info returns the build info for service. Commit and date fall back to the
// VCS stamp the Go toolchain embeds when ldflags did not set them
func Info(service string) BuildInfo {
	bi := BuildInfo{Service: service, Version: version, Commit: commit, Date: date, Go: runtime.Version()}
	if bi.Commit != "" && bi.Date != "" {
		return bi
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "" {
					bi.Date = s.Value
				}
			}
		}
	}
	if bi.Commit == "" {
		bi.Commit = "none"
	}
	if bi.Date == "" {
		bi.Date = "unknown"
	}
	return bi
}
