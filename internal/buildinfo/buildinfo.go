// Package buildinfo exposes version metadata injected at build time.
package buildinfo

import "strings"

// Info captures identifying metadata for a build of the awsclients CLI.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
}

// These variables are intended to be overridden via -ldflags during release builds.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Current returns the build metadata for logging and diagnostics.
func Current() Info {
	return Info{
		Version:   fallback(Version, "dev"),
		GitCommit: fallback(GitCommit, "unknown"),
		BuildDate: fallback(BuildDate, "unknown"),
	}
}

// UserAgent returns the build as an SDK user agent key/value pair.
func (i Info) UserAgent() (string, string) {
	return "awsclients", i.Version
}

func fallback(value, def string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}

	return trimmed
}
