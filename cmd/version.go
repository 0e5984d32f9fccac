// Package cmd holds build metadata injected via ldflags.
package cmd

// Build metadata set at link time.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)
