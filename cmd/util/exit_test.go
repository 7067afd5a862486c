package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/orca"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{config.Errorf("missing"), 1},
		{&compute.PluginResolutionError{Name: "x"}, 1},
		{&compute.ExternalCommandError{Cmd: "qsub", Host: "h", ExitCode: 255}, 255},
		{fmt.Errorf("wrapped: %w", &compute.ExternalCommandError{ExitCode: 3}), 3},
		{&config.PlatformDirNotFoundError{Platform: "x"}, 10},
		{&orca.NodeSetRequiredError{Platform: "x"}, 10},
		{&ExitError{Code: 22}, 22},
		{Exit(2, "file %s not found", "x"), 2},
	}

	for _, tt := range tests {
		if code := ExitCode(tt.err); code != tt.code {
			t.Errorf("ExitCode(%v) = %d, expected %d", tt.err, code, tt.code)
		}
	}
}

func TestSilentExitError(t *testing.T) {
	if (&ExitError{Code: 3}).Error() != "" {
		t.Fatal("expected empty message")
	}
}
