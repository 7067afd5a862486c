package compute

import (
	"fmt"
)

// ExternalCommandError is returned when a child process (copy, login or
// submission command) exits with a non-zero status.
type ExternalCommandError struct {
	Cmd      string
	Host     string
	ExitCode int
}

func (e *ExternalCommandError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("error running %s", e.Cmd)
	}
	return fmt.Sprintf("error running %s to %s.", e.Cmd, e.Host)
}

// PluginResolutionError is returned when no scheduler plugin is registered
// under a name.
type PluginResolutionError struct {
	Name string
}

func (e *PluginResolutionError) Error() string {
	return fmt.Sprintf("could not find a scheduler plugin named '%s'", e.Name)
}
