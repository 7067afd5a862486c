// Package queue runs PBS queue commands (qdel, qstat) on a platform's login
// host.
package queue

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/spf13/afero"
)

// Command runs queue commands as the platform user on the login host.
type Command struct {
	LoginCmd    string
	UserName    string
	HostName    string
	UtilityPath string
	// Run runs the remote command. Output is passed through to the terminal.
	Run compute.Runner
}

// New returns a Command for the platform, reading the user name from the
// identity file and the login host from the platform's pbsConfig.yaml.
func New(fs afero.Fs, platform, platformDir string, conf config.Config) (*Command, error) {
	info, err := config.LoadCondorInfoConfig(fs, conf.CondorInfoFile)
	if err != nil {
		return nil, err
	}
	user, ok := info.Lookup(platform)
	if !ok || user.Name == "" {
		return nil, config.Errorf("%s does not specify user name for platform %s", info.Source, platform)
	}

	ac, err := config.LoadAllocationConfig(fs, filepath.Join(platformDir, "etc", "config", "pbsConfig.yaml"))
	if err != nil {
		return nil, err
	}

	return &Command{
		LoginCmd:    conf.QueueLoginCmd,
		UserName:    user.Name,
		HostName:    ac.Platform.LoginHostName,
		UtilityPath: ac.Platform.UtilityPath,
		Run:         compute.RunCommand,
	}, nil
}

// Delete removes a job from the queue and returns the exit code of qdel.
func (c *Command) Delete(ctx context.Context, jobID string) (int, error) {
	return c.remote(ctx, "qdel", jobID)
}

// Status reports the queue status and returns the exit code of qstat. With
// no arguments it lists the jobs of the platform user.
func (c *Command) Status(ctx context.Context, args ...string) (int, error) {
	if len(args) == 0 {
		args = []string{"-u" + c.UserName}
	}
	return c.remote(ctx, "qstat", args...)
}

func (c *Command) remote(ctx context.Context, name string, args ...string) (int, error) {
	login := fmt.Sprintf("%s@%s", c.UserName, c.HostName)
	util := fmt.Sprintf("%s/%s", c.UtilityPath, name)
	cmd := c.LoginCmd + " " + shellquote.Join(append([]string{login, util}, args...)...)
	return c.Run(ctx, cmd, true)
}
