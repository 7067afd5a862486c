package util

import (
	"errors"
	"fmt"

	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/orca"
)

// Exit codes shared by the commands.
const (
	ExitFailure          = 1
	ExitPlatformNotFound = 10
)

// ExitError asks for the process to exit with Code. A nil Err exits
// silently.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit returns an ExitError with a formatted message.
func Exit(code int, format string, args ...interface{}) error {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	var cmdErr *compute.ExternalCommandError
	var platformErr *config.PlatformDirNotFoundError
	var nodeSetErr *orca.NodeSetRequiredError

	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &cmdErr):
		return cmdErr.ExitCode
	case errors.As(err, &platformErr), errors.As(err, &nodeSetErr):
		return ExitPlatformNotFound
	}
	return ExitFailure
}
