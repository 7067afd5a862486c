// Package version holds the build details of the ctrl-execute binary,
// set at link time with -ldflags "-X".
package version

import "fmt"

// Build and version details
var (
	GitCommit = ""
	GitBranch = ""
	BuildDate = ""
	Version   = "unknown"
)

// String formats a string with version details, leaving out anything
// that was not set at build time.
func String() string {
	s := ""
	if GitCommit != "" {
		s += fmt.Sprintf("git commit: %s\n", GitCommit)
	}
	if GitBranch != "" {
		s += fmt.Sprintf("git branch: %s\n", GitBranch)
	}
	if BuildDate != "" {
		s += fmt.Sprintf("build date: %s\n", BuildDate)
	}
	return s + fmt.Sprintf("version: %s", Version)
}

// LogFields returns the build details as logger key/value pairs.
func LogFields() []interface{} {
	return []interface{}{
		"GitCommit", GitCommit,
		"GitBranch", GitBranch,
		"BuildDate", BuildDate,
		"Version", Version,
	}
}
