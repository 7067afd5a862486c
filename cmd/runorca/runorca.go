// Package runorca contains the command that generates an orchestration
// config for a platform and launches the orchestrator on it.
package runorca

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lsst/ctrl-execute/cmd/util"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/logger"
	"github.com/lsst/ctrl-execute/orca"
	executil "github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewCommand returns the run-orca command
func NewCommand() *cobra.Command {
	cmd, _ := newCommandHooks()
	return cmd
}

type hooks struct {
	RunOrca func(ctx context.Context, conf config.Config, opts orca.Options) error
}

func newCommandHooks() (*cobra.Command, *hooks) {
	hooks := &hooks{
		RunOrca: RunOrca,
	}

	var (
		configFile string
		flagConf   config.Config
		opts       orca.Options
		setups     []string
	)

	cmd := &cobra.Command{
		Use:   "run-orca",
		Short: "Generate an orchestration config for a platform and launch it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := util.MergeConfigFileWithFlags(configFile, flagConf)
			if err != nil {
				return fmt.Errorf("error processing config: %v", err)
			}

			pkgs, err := parseSetups(setups)
			if err != nil {
				return err
			}
			opts.Setup = pkgs

			ctx := executil.SignalContext(context.Background(), 0, syscall.SIGINT, syscall.SIGTERM)
			return hooks.RunOrca(ctx, conf, opts)
		},
	}
	cmd.SetGlobalNormalizationFunc(util.NormalizeFlags)

	f := cmd.Flags()
	f.AddFlagSet(util.ConfigFlags(&flagConf, &configFile))
	f.StringVarP(&opts.Platform, "platform", "p", "", "platform")
	f.StringVarP(&opts.Command, "command", "c", "", "command")
	f.StringVarP(&opts.InputDataFile, "id-file", "i", "", "input data file")
	f.StringVarP(&opts.EupsPath, "eups-path", "e", "", "eups path")
	f.StringVarP(&opts.NodeSet, "node-set", "N", "", "name of collection of nodes to use")
	f.StringVarP(&opts.IDsPerJob, "ids-per-job", "n", "", "ids per job")
	f.StringVarP(&opts.DefaultRoot, "default-root", "r", "", "remote Defaults.DEFAULT_ROOT")
	f.StringVarP(&opts.LocalScratch, "local-scratch", "l", "", "remote Defaults.LOCAL_SCRATCH")
	f.StringVarP(&opts.DataDirectory, "data-directory", "d", "", "remote Defaults.DATA_DIRECTORY")
	f.StringVarP(&opts.FileSystemDomain, "file-system-domain", "F", "", "Defaults.FILE_SYSTEM_DOMAIN")
	f.StringVarP(&opts.UserName, "user-name", "u", "", "Defaults.USER_NAME")
	f.StringVarP(&opts.UserHome, "user-home", "H", "", "Defaults.USER_HOME")
	f.StringVarP(&opts.RunID, "run-id", "R", "", "runid of the production run")
	f.StringArrayVarP(&setups, "setup", "s", nil, "setup a package, as NAME=VERSION; may be repeated")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose")

	cmd.MarkFlagRequired("platform")
	cmd.MarkFlagRequired("command")
	cmd.MarkFlagRequired("id-file")
	cmd.MarkFlagRequired("eups-path")

	return cmd, hooks
}

func parseSetups(setups []string) ([]orca.Package, error) {
	var pkgs []orca.Package
	for _, s := range setups {
		name, ver, ok := strings.Cut(s, "=")
		if !ok || name == "" || ver == "" {
			return nil, fmt.Errorf("invalid --setup value %q, expected NAME=VERSION", s)
		}
		pkgs = append(pkgs, orca.Package{Name: name, Version: ver})
	}
	return pkgs, nil
}

// RunOrca writes a new orchestration config for the platform and runs the
// orchestrator on it. A non-zero orchestrator exit code is returned as an
// ExitError.
func RunOrca(ctx context.Context, conf config.Config, opts orca.Options) error {
	log := logger.NewLogger("run-orca", conf.Logger)
	log.Debug("Version", version.LogFields()...)

	fs := afero.NewOsFs()
	c, err := orca.NewConfigurator(fs, opts, conf)
	if err != nil {
		return err
	}
	c.Log = log

	dir, err := conf.PlatformDir(opts.Platform)
	if err != nil {
		return err
	}
	if err := c.Load(filepath.Join(dir, "etc", "config", "execConfig.yaml"), dir); err != nil {
		return err
	}

	tpl, err := c.GenericConfigFileName()
	if err != nil {
		return err
	}
	if _, err := c.CreateConfiguration(ctx, tpl); err != nil {
		return err
	}

	code, err := c.Launch(ctx)
	if err != nil {
		return err
	}
	if code != 0 {
		return &util.ExitError{Code: code}
	}
	return nil
}
