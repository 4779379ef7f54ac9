// Package build holds build-time information.
package build

var (
	// Version is the application version.
	// It defaults to "dev" and can be overwritten by linker flags.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is when the binary was built.
	Date = "unknown"
)
