// Package allocate contains the command that allocates glide-in nodes on a
// remote platform through its batch scheduler.
package allocate

import (
	"context"
	"fmt"
	"path/filepath"
	"syscall"

	"github.com/lsst/ctrl-execute/cmd/util"
	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/compute/backends"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/logger"
	executil "github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewCommand returns the allocate command
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	Allocate func(ctx context.Context, conf config.Config, platform string, opts compute.Options) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		Allocate: Allocate,
	}

	var (
		configFile string
		flagConf   config.Config
		opts       compute.Options
		cpus       int
		shutdown   int
	)

	cmd := &cobra.Command{
		Use:   "allocate PLATFORM",
		Short: "Allocate glide-in nodes on a platform.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			f := cmd.Flags()
			if f.Changed("cpus") {
				opts.Slots = cpus
			}
			if f.Changed("glidein-shutdown") {
				opts.GlideinShutdown = &shutdown
			}

			ctx := executil.SignalContext(context.Background(), 0, syscall.SIGINT, syscall.SIGTERM)
			return hooks.Allocate(ctx, conf, args[0], opts)
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)

	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.IntVarP(&opts.NodeCount, "node-count", "n", 0, "number of nodes to use")
	f.IntVarP(&opts.Slots, "slots", "s", 0, "slots per node")
	f.IntVar(&cpus, "cpus", 0, "cpus per node; same as --slots")
	f.StringVarP(&opts.WallClock, "maximum-wall-clock", "m", "", "maximum wall clock time")
	f.StringVarP(&opts.NodeSet, "node-set", "N", "", "node set name")
	f.StringVarP(&opts.Queue, "queue", "q", "", "queue name")
	f.BoolVarP(&opts.Email, "email", "e", false, "email notification flag")
	f.StringVarP(&opts.OutputLog, "output-log", "O", "", "output log filename")
	f.StringVarP(&opts.ErrorLog, "error-log", "E", "", "error log filename")
	f.IntVarP(&shutdown, "glidein-shutdown", "g", 0, "glide-in inactivity shutdown time in seconds")
	f.StringVar(&opts.Reservation, "reservation", "", "scheduler reservation to submit into")
	f.StringVar(&opts.DynamicSlots, "dynamic-slots", "", "file holding the dynamic slots block for the glide-in config")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose")

	cmd.MarkFlagRequired("node-count")
	cmd.MarkFlagRequired("maximum-wall-clock")
	cmd.MarkFlagsOneRequired("slots", "cpus")
	cmd.MarkFlagsMutuallyExclusive("slots", "cpus")

	return cmd, hooks
}

// Allocate loads the platform's configuration, renders the scheduler files
// and submits them through the plugin selected by the platform's scheduler.
func Allocate(ctx context.Context, conf config.Config, platform string, opts compute.Options) error {
	log := logger.NewLogger("allocate", conf.Logger)
	log.Debug("Version", version.LogFields()...)

	dir, err := conf.PlatformDir(platform)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	execConf, err := config.LoadExecConfig(fs, filepath.Join(dir, "etc", "config", "execConfig.yaml"))
	if err != nil {
		return err
	}

	alloc, err := compute.NewAllocator(fs, platform, opts, execConf, conf)
	if err != nil {
		return err
	}
	alloc.Log = log

	plugin, err := backends.NewPlugin(alloc.Scheduler(), alloc)
	if err != nil {
		return err
	}
	log.Debug("allocating", "platform", platform, "scheduler", alloc.Scheduler(), "platformDir", dir)

	return compute.Allocate(ctx, plugin, dir)
}
