// Package pbs allocates nodes through PBS/Torque. Generated files are
// copied to the cluster login host and submitted there with qsub.
package pbs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/util/fsutil"
)

// Name is the scheduler name selecting this plugin.
const Name = "pbs"

// Plugin is the PBS/Torque scheduler plugin.
type Plugin struct {
	*compute.Allocator
}

// NewPlugin returns a new PBS plugin working through a.
func NewPlugin(a *compute.Allocator) *Plugin {
	return &Plugin{a}
}

// LoadConfig loads etc/config/pbsConfig.yaml from the platform directory.
func (p *Plugin) LoadConfig(platformDir string) (config.AllocationConfig, error) {
	name := filepath.Join(platformDir, "etc", "config", "pbsConfig.yaml")
	ac, err := p.LoadAllocationConfig(name, "pbs")
	if err != nil {
		return ac, err
	}
	scratch := util.SubstituteVar(ac.Platform.ScratchDirectory, "USER_HOME", p.UserHome())
	p.Update(func(b *compute.ParamsBuilder) {
		b.Default("SCRATCH_DIR", scratch)
	})
	return ac, nil
}

// RenderFiles writes the PBS submit file, the glide-in condor config and,
// when the platform has a template for it, the allocation script.
func (p *Plugin) RenderFiles(platformDir string) (compute.Artifacts, error) {
	var files compute.Artifacts
	var err error
	templates := filepath.Join(platformDir, "etc", "templates")

	files.SubmitFile, err = p.CreateSubmitFile(filepath.Join(templates, "generic.pbs.template"))
	if err != nil {
		return files, err
	}
	files.CondorConfigFile, err = p.CreateCondorConfigFile(filepath.Join(templates, "glidein_condor_config.template"))
	if err != nil {
		return files, err
	}

	alloc := filepath.Join(templates, "allocation.sh.template")
	if fsutil.Exists(p.FS(), alloc) {
		files.AllocationFile, err = p.CreateAllocationFile(alloc)
		if err != nil {
			return files, err
		}
	}
	return files, nil
}

// Submit copies the generated files to the scratch directory on the login
// host, then runs qsub there.
func (p *Plugin) Submit(ctx context.Context, files compute.Artifacts) error {
	conf := p.Config()
	host := p.HostName()
	login := fmt.Sprintf("%s@%s", p.UserName(), host)
	scratch := p.ScratchDirectory()

	copies := []string{files.SubmitFile, files.CondorConfigFile}
	if files.AllocationFile != "" {
		copies = append(copies, files.AllocationFile)
	}
	for _, f := range copies {
		dest := fmt.Sprintf("%s:%s/%s", login, scratch, filepath.Base(f))
		cmd := conf.RemoteCopyCmd + " " + shellquote.Join(f, dest)
		if err := p.RunChecked(ctx, conf.RemoteCopyCmd, host, cmd); err != nil {
			return err
		}
	}

	qsub := fmt.Sprintf("%s/qsub", p.UtilityPath())
	remote := fmt.Sprintf("%s/%s", scratch, filepath.Base(files.SubmitFile))
	cmd := conf.RemoteLoginCmd + " " + shellquote.Join(login, qsub, remote)
	return p.RunChecked(ctx, conf.RemoteLoginCmd, host, cmd)
}
