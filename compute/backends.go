package compute

import (
	"context"
	"fmt"

	"github.com/lsst/ctrl-execute/config"
)

// Plugin allocates nodes through one kind of batch scheduler, such as
// PBS/Torque or Slurm. Plugins embed an Allocator, which holds the
// resolved parameters and writes the generated files.
type Plugin interface {
	// Base returns the allocator the plugin works through.
	Base() *Allocator
	// LoadConfig loads the scheduler specific allocation config from the
	// platform package directory.
	LoadConfig(platformDir string) (config.AllocationConfig, error)
	// RenderFiles writes the submit, daemon config and allocation files.
	RenderFiles(platformDir string) (Artifacts, error)
	// Submit hands the rendered files to the scheduler.
	Submit(ctx context.Context, files Artifacts) error
}

// Artifacts are the files generated for one allocation request.
// AllocationFile is empty when the platform has no allocation template.
type Artifacts struct {
	SubmitFile       string
	CondorConfigFile string
	AllocationFile   string
}

// Allocate runs a plugin through every step of an allocation: loading the
// config, rendering files, submitting them and printing the node set summary.
// Files written before a failure are left in place.
func Allocate(ctx context.Context, p Plugin, platformDir string) error {
	a := p.Base()
	if a.State() != Constructed {
		return fmt.Errorf("allocator is %s, expected %s", a.State(), Constructed)
	}

	if _, err := p.LoadConfig(platformDir); err != nil {
		return err
	}

	files, err := p.RenderFiles(platformDir)
	if err != nil {
		return err
	}
	a.advance(FilesRendered)

	if err := p.Submit(ctx, files); err != nil {
		return err
	}
	a.advance(Submitted)

	if err := a.PrintNodeSetInfo(a.Out); err != nil {
		return err
	}
	a.advance(Reported)
	return nil
}
