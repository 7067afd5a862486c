// Package queue contains the qdelete and qstatus commands.
package queue

import (
	"context"
	"syscall"

	"github.com/lsst/ctrl-execute/cmd/util"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/queue"
	executil "github.com/lsst/ctrl-execute/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type hooks struct {
	Delete func(ctx context.Context, conf config.Config, platform, jobID string) (int, error)
	Status func(ctx context.Context, conf config.Config, platform string, args []string) (int, error)
}

// NewDeleteCommand returns the qdelete command
func NewDeleteCommand() *cobra.Command {
	cmd, _ := newDeleteCommandHooks()
	return cmd
}

// NewStatusCommand returns the qstatus command
func NewStatusCommand() *cobra.Command {
	cmd, _ := newStatusCommandHooks()
	return cmd
}

func defaultHooks() *hooks {
	return &hooks{
		Delete: Delete,
		Status: Status,
	}
}

func newDeleteCommandHooks() (*cobra.Command, *hooks) {
	hooks := defaultHooks()

	var (
		configFile string
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "qdelete PLATFORM JOBID",
		Short: "Delete a job from a platform's queue.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return err
			}
			ctx := executil.SignalContext(context.Background(), 0, syscall.SIGINT, syscall.SIGTERM)
			return exitStatus(hooks.Delete(ctx, conf, args[0], args[1]))
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	cmd.Flags().AddFlagSet(util.ConfigFlags(&flagConf, &configFile))

	return cmd, hooks
}

func newStatusCommandHooks() (*cobra.Command, *hooks) {
	hooks := defaultHooks()

	var (
		configFile string
		flagConf   config.Config
	)

	cmd := &cobra.Command{
		Use:   "qstatus PLATFORM [QSTAT ARGS...]",
		Short: "Report the status of a platform's queue.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return err
			}
			ctx := executil.SignalContext(context.Background(), 0, syscall.SIGINT, syscall.SIGTERM)
			return exitStatus(hooks.Status(ctx, conf, args[0], args[1:]))
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)
	// Everything after the platform is handed to qstat untouched.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().AddFlagSet(util.ConfigFlags(&flagConf, &configFile))

	return cmd, hooks
}

// exitStatus passes the remote command's exit code on to the process.
func exitStatus(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		return &util.ExitError{Code: code}
	}
	return nil
}

// Delete runs qdel for jobID on the platform's login host.
func Delete(ctx context.Context, conf config.Config, platform, jobID string) (int, error) {
	q, err := newQueueCommand(conf, platform)
	if err != nil {
		return 0, err
	}
	return q.Delete(ctx, jobID)
}

// Status runs qstat on the platform's login host.
func Status(ctx context.Context, conf config.Config, platform string, args []string) (int, error) {
	q, err := newQueueCommand(conf, platform)
	if err != nil {
		return 0, err
	}
	return q.Status(ctx, args...)
}

func newQueueCommand(conf config.Config, platform string) (*queue.Command, error) {
	dir, err := conf.PlatformDir(platform)
	if err != nil {
		return nil, err
	}
	return queue.New(afero.NewOsFs(), platform, dir, conf)
}
