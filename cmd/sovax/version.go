package main

// Version information for sovaX
var (
	// Version is the current release. BuildDate and GitCommit are set with
	// -ldflags at build time.
	Version = "1.0.0"

	BuildDate = "dev"

	GitCommit = "dev"
)

// GetVersionInfo returns formatted version information
func GetVersionInfo() string {
	if BuildDate != "dev" && GitCommit != "dev" {
		return Version + " (" + GitCommit + ", built " + BuildDate + ")"
	}
	return Version + " (dev build)"
}
