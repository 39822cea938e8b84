// Package version holds build metadata injected via ldflags.
package version

var (
	Version = "1.4.0"
	Commit  = "unknown"
	Date    = "unknown"
)
