// Package version carries build metadata injected via -ldflags.
package version

var (
	// Version is the release version.
	Version = "0.1.0"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build date.
	Date = "unknown"
)
