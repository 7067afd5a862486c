// Package slurm allocates nodes through Slurm. The local host is expected to
// share a filesystem with the cluster, so sbatch is run directly.
package slurm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/util/fsutil"
	"github.com/spf13/afero"
)

// Name is the scheduler name selecting this plugin.
const Name = "slurm"

// SubmitCmd submits the generated batch script.
const SubmitCmd = "sbatch"

// Plugin is the Slurm scheduler plugin.
type Plugin struct {
	*compute.Allocator
	// Chdir changes the working directory before sbatch runs, so job
	// output lands in the local scratch directory.
	Chdir func(dir string) error
}

// NewPlugin returns a new Slurm plugin working through a.
func NewPlugin(a *compute.Allocator) *Plugin {
	return &Plugin{Allocator: a, Chdir: os.Chdir}
}

// LoadConfig loads etc/config/slurmConfig.yaml from the platform directory
// and resolves the reservation and dynamic slots block.
func (p *Plugin) LoadConfig(platformDir string) (config.AllocationConfig, error) {
	name := filepath.Join(platformDir, "etc", "config", "slurmConfig.yaml")
	ac, err := p.LoadAllocationConfig(name, "slurm")
	if err != nil {
		return ac, err
	}
	opts := p.Options()

	scratch := util.SubstituteVar(ac.Platform.ScratchDirectory, "USER_HOME", p.UserHome())

	block := "#"
	blockFile := opts.DynamicSlots
	if blockFile == "" && ac.Platform.DynamicSlotsTemplate != "" {
		blockFile = filepath.Join(platformDir, "etc", "templates", ac.Platform.DynamicSlotsTemplate)
	}
	if blockFile != "" {
		b, err := afero.ReadFile(p.FS(), blockFile)
		if err != nil {
			return ac, &config.ConfigurationError{Msg: "reading dynamic slots block", Err: err}
		}
		block = strings.TrimRight(string(b), "\n")
	}

	p.Update(func(b *compute.ParamsBuilder) {
		b.Default("SCRATCH_DIR", scratch)
		b.Default("RESERVATION", reservation(ac.Platform.Reservation))
		if opts.Reservation != "" {
			b.Override("RESERVATION", reservation(opts.Reservation))
		}
		b.Default("DYNAMIC_SLOTS_BLOCK", block)
	})
	return ac, nil
}

func reservation(r string) string {
	if r == "" {
		return "#"
	}
	return "#SBATCH --reservation " + r
}

// RenderFiles writes the Slurm batch script, the glide-in condor config and
// the allocation script.
func (p *Plugin) RenderFiles(platformDir string) (compute.Artifacts, error) {
	var files compute.Artifacts
	var err error
	templates := filepath.Join(platformDir, "etc", "templates")

	files.SubmitFile, err = p.CreateSubmitFile(filepath.Join(templates, "generic.slurm.template"))
	if err != nil {
		return files, err
	}
	files.CondorConfigFile, err = p.CreateCondorConfigFile(filepath.Join(templates, "glidein_condor_config.template"))
	if err != nil {
		return files, err
	}
	files.AllocationFile, err = p.CreateAllocationFile(filepath.Join(templates, "allocation.sh.template"))
	if err != nil {
		return files, err
	}
	return files, nil
}

// Submit runs sbatch on the generated batch script from the local scratch
// directory.
func (p *Plugin) Submit(ctx context.Context, files compute.Artifacts) error {
	dir := p.LocalScratchDirectory()
	if err := fsutil.EnsureDir(p.FS(), dir); err != nil {
		return fmt.Errorf("creating local scratch directory: %w", err)
	}
	if err := p.Chdir(dir); err != nil {
		return fmt.Errorf("changing to local scratch directory: %w", err)
	}

	cmd := shellquote.Join(SubmitCmd, files.SubmitFile)
	return p.RunChecked(ctx, cmd, "", cmd)
}
