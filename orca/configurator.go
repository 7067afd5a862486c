// Package orca builds orchestration configs from platform settings and
// command line overrides, then launches the orchestrator on them.
package orca

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/logger"
	"github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/util/fsutil"
	"github.com/lsst/ctrl-execute/util/tplwriter"
	"github.com/spf13/afero"
)

// Package is a software package name and version.
type Package struct {
	Name    string
	Version string
}

// Options are the run-orca command line values. Empty values mean "not given".
type Options struct {
	Platform         string
	Command          string
	InputDataFile    string
	EupsPath         string
	NodeSet          string
	IDsPerJob        string
	DefaultRoot      string
	LocalScratch     string
	DataDirectory    string
	FileSystemDomain string
	UserName         string
	UserHome         string
	RunID            string
	Setup            []Package
	Verbose          bool
}

// NodeSetRequiredError is returned by Load when the platform requires a
// node set name and none was given.
type NodeSetRequiredError struct {
	Platform string
}

func (e *NodeSetRequiredError) Error() string {
	return "nodeset parameter required by this platform"
}

// Configurator consolidates platform configuration with command line
// overrides and writes orchestration config files.
type Configurator struct {
	// Out receives the run id announcement.
	Out io.Writer
	// Run runs the orchestrator.
	Run compute.Runner
	// ListPackages returns the currently set up packages.
	ListPackages func(ctx context.Context) ([]Package, error)
	Log          *logger.Logger

	fs         afero.Fs
	opts       Options
	conf       config.Config
	params     compute.Params
	runID      string
	setupUsing string
	outputFile string
}

// NewConfigurator resolves the user identity for the platform and records
// the command line overrides.
func NewConfigurator(fs afero.Fs, opts Options, conf config.Config) (*Configurator, error) {
	return newConfigurator(fs, opts, conf, util.CurrentUserName, time.Now)
}

func newConfigurator(fs afero.Fs, opts Options, conf config.Config, login func() (string, error), now func() time.Time) (*Configurator, error) {
	info, err := config.LoadCondorInfoConfig(fs, conf.CondorInfoFile)
	if err != nil {
		return nil, err
	}

	user, _ := info.Lookup(opts.Platform)
	if opts.UserName != "" {
		user.Name = opts.UserName
	}
	if opts.UserHome != "" {
		user.Home = opts.UserHome
	}
	if user.Name == "" || user.Home == "" {
		id, err := info.Identity(opts.Platform)
		if err != nil {
			return nil, err
		}
		if user.Name == "" {
			user.Name = id.Name
		}
		if user.Home == "" {
			user.Home = id.Home
		}
	}

	b := compute.NewParamsBuilder().
		Override("USER_NAME", user.Name).
		Override("USER_HOME", user.Home)
	overrideIfSet(b, "DEFAULT_ROOT", opts.DefaultRoot)
	overrideIfSet(b, "LOCAL_SCRATCH", opts.LocalScratch)
	overrideIfSet(b, "DATA_DIRECTORY", opts.DataDirectory)
	overrideIfSet(b, "IDS_PER_JOB", opts.IDsPerJob)
	b.Override("NODE_SET", opts.NodeSet)

	command := opts.Command
	if opts.InputDataFile != "" {
		input, err := config.ResolvePath(opts.InputDataFile)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolving input data file: %w", err)
		}
		b.Override("INPUT_DATA_FILE", abs)
		command += " ${id_option}"
	}
	overrideIfSet(b, "FILE_SYSTEM_DOMAIN", opts.FileSystemDomain)
	overrideIfSet(b, "EUPS_PATH", opts.EupsPath)
	b.Override("COMMAND", command)

	runID := opts.RunID
	if runID == "" {
		name, err := login()
		if err != nil {
			return nil, err
		}
		runID = util.TimestampID(name, now())
	}

	c := &Configurator{
		Out:    os.Stdout,
		Run:    compute.RunCommand,
		Log:    logger.NewLogger("orca", conf.Logger),
		fs:     fs,
		opts:   opts,
		conf:   conf,
		params: b.Build(),
		runID:  runID,
	}
	c.ListPackages = c.eupsListSetup
	return c, nil
}

func overrideIfSet(b *compute.ParamsBuilder, key, val string) {
	if val != "" {
		b.Override(key, val)
	}
}

// Load reads the platform exec config and records its values as defaults.
func (c *Configurator) Load(execConfigName, platformDir string) error {
	ec, err := config.LoadExecConfig(c.fs, execConfigName)
	if err != nil {
		return err
	}
	p := ec.Platform

	if p.NodeSetRequired && c.opts.NodeSet == "" {
		return &NodeSetRequiredError{Platform: c.opts.Platform}
	}

	dataDir, err := config.ResolvePath(p.DataDirectory)
	if err != nil {
		return err
	}

	user := c.params.Lookup("USER_NAME")
	b := c.params.Builder().
		Default("DEFAULT_ROOT", util.SubstituteVar(p.DefaultRoot, "USER_NAME", user)).
		Default("LOCAL_SCRATCH", util.SubstituteVar(p.LocalScratch, "USER_NAME", user)).
		Default("IDS_PER_JOB", p.IDsPerJob).
		Default("DATA_DIRECTORY", dataDir).
		Default("FILE_SYSTEM_DOMAIN", p.FileSystemDomain).
		Default("EUPS_PATH", p.EupsPath).
		Default("PLATFORM_DIR", platformDir)
	c.params = b.Build()
	c.setupUsing = p.SetupUsing
	return nil
}

// GenericConfigFileName returns the orchestration config template to use.
// Packages named on the command line, or a platform asking for "setups",
// select the template with explicit setup commands; "getenv" selects the
// template that copies the submitting environment.
func (c *Configurator) GenericConfigFileName() (string, error) {
	name := ""
	switch {
	case c.setupUsing == "":
		name = "config_with_setups.py.template"
	case len(c.opts.Setup) == 0 && c.setupUsing == "getenv":
		name = "config_with_getenv.py.template"
	case len(c.opts.Setup) != 0 || c.setupUsing == "setups":
		name = "config_with_setups.py.template"
	default:
		return "", config.Errorf(
			"invalid value for execConfig element 'setup_using'= '%s'; should be 'getenv' or 'setups'",
			c.setupUsing)
	}
	return filepath.Join(c.conf.TemplateDir, name), nil
}

// SetupPackages returns one setup command per package, joined into a
// single string that continues across lines. Packages named on the command
// line replace or extend the currently set up ones. Locally set up packages
// are left out on every platform except "lsst".
func (c *Configurator) SetupPackages(ctx context.Context) (string, error) {
	pkgs, err := c.ListPackages(ctx)
	if err != nil {
		return "", err
	}

	var order []string
	versions := map[string]string{}
	add := func(p Package) {
		if _, ok := versions[p.Name]; !ok {
			order = append(order, p.Name)
		}
		versions[p.Name] = p.Version
	}
	for _, p := range pkgs {
		add(p)
	}
	for _, p := range c.opts.Setup {
		c.Log.Debug("setup package", "name", p.Name, "version", p.Version)
		add(p)
	}

	var sb strings.Builder
	for _, name := range order {
		version := versions[name]
		if c.opts.Platform != "lsst" && strings.HasPrefix(version, "LOCAL:") {
			continue
		}
		fmt.Fprintf(&sb, "setup -j %s %s\\n\\\n", name, version)
	}
	return sb.String(), nil
}

// eupsListSetup asks the package manager for the currently set up packages.
func (c *Configurator) eupsListSetup(ctx context.Context) ([]Package, error) {
	args, err := shellquote.Split(c.conf.EupsCmd)
	if err != nil || len(args) == 0 {
		return nil, config.Errorf("invalid package manager command %q", c.conf.EupsCmd)
	}
	args = append(args, "list", "--setup")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("listing setup packages: %w: %s", err, stderr.String())
	}
	return parsePackageList(&stdout)
}

// parsePackageList parses "name version [tags...]" lines.
func parsePackageList(r io.Reader) ([]Package, error) {
	var pkgs []Package
	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 2 {
			continue
		}
		pkgs = append(pkgs, Package{Name: fields[0], Version: fields[1]})
	}
	return pkgs, s.Err()
}

// CreateConfiguration writes a new orchestration config from the template
// at input into the configs directory under the local scratch directory.
func (c *Configurator) CreateConfiguration(ctx context.Context, input string) (string, error) {
	resolved, err := config.ResolvePath(input)
	if err != nil {
		return "", err
	}
	c.verbose("creating configuration", "template", resolved)

	setups, err := c.SetupPackages(ctx)
	if err != nil {
		return "", err
	}
	params := c.params.Builder().Override("CTRL_EXECUTE_SETUP_PACKAGES", setups).Build()

	configDir := filepath.Join(params.Lookup("LOCAL_SCRATCH"), "configs")
	if err := fsutil.EnsureDir(c.fs, configDir); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	c.outputFile = filepath.Join(configDir, c.runID+".config")
	c.verbose("writing new configuration", "path", c.outputFile)

	if err := tplwriter.Rewrite(c.fs, resolved, c.outputFile, params.Substitutions()); err != nil {
		return "", err
	}
	return c.outputFile, nil
}

// Launch runs the orchestrator on the generated config and returns its exit code.
func (c *Configurator) Launch(ctx context.Context) (int, error) {
	if c.outputFile == "" {
		return 0, fmt.Errorf("no configuration has been created")
	}
	fmt.Fprintf(c.Out, "runid for this run is %s\n", c.runID)
	cmd := c.conf.OrcaCmd + " " + shellquote.Join(c.outputFile, c.runID)
	c.verbose("launching", "cmd", cmd)
	return c.Run(ctx, cmd, c.opts.Verbose)
}

func (c *Configurator) verbose(msg string, args ...interface{}) {
	if c.opts.Verbose {
		c.Log.Info(msg, args...)
		return
	}
	c.Log.Debug(msg, args...)
}

// Parameter returns the value of key, taking the command line override when
// one exists. The boolean is false when key is unset.
func (c *Configurator) Parameter(key string) (string, bool) {
	return c.params.Get(key)
}

// RunID returns the run id.
func (c *Configurator) RunID() string { return c.runID }

// IsVerbose returns true when the verbose flag was given.
func (c *Configurator) IsVerbose() bool { return c.opts.Verbose }

// Platform returns the platform name.
func (c *Configurator) Platform() string { return c.opts.Platform }
