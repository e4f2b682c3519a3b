// Package version holds build version information, kept in its own package
// so both the CLI and future callers can import it without cycles.
package version

// Version is the build version string, set by ldflags during release builds.
var Version = "v1.0.0-dev"

// BuildTime is the build timestamp, set by ldflags.
var BuildTime = "unknown"

// String returns the human-readable version line.
func String() string {
	return Version + " (built " + BuildTime + ")"
}
