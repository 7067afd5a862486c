package compute

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

// Runner runs a command line and returns its exit code.
type Runner func(ctx context.Context, command string, verbose bool) (int, error)

// RunCommand splits command using shell quoting rules and runs it as a
// child process, waiting for it to exit. The child inherits stdin, stdout
// and stderr in verbose mode; otherwise all three are connected to the
// null device.
//
// A child that runs and exits returns its exit code (0-255) and a nil error.
// An error is returned when the command can't be parsed or started, or when
// the child is killed by a signal (including cancellation of ctx).
func RunCommand(ctx context.Context, command string, verbose bool) (int, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return 0, fmt.Errorf("parsing command %q: %w", command, err)
	}
	if len(args) == 0 {
		return 0, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if verbose {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}
	return 0, fmt.Errorf("running %s: %w", args[0], err)
}
