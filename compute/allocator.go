package compute

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/logger"
	"github.com/lsst/ctrl-execute/util"
	"github.com/lsst/ctrl-execute/util/fsutil"
	"github.com/lsst/ctrl-execute/util/seqfile"
	"github.com/lsst/ctrl-execute/util/tplwriter"
	"github.com/spf13/afero"
)

// Options are the node allocation request values given on the command line.
// Zero values mean "not given".
type Options struct {
	NodeCount int
	Slots     int
	WallClock string
	NodeSet   string
	Queue     string
	Email     bool
	OutputLog string
	ErrorLog  string
	// glide-in inactivity shutdown time in seconds
	GlideinShutdown *int
	Reservation     string
	// file holding the block substituted for $DYNAMIC_SLOTS_BLOCK
	DynamicSlots string
	Verbose      bool
}

// State tracks how far an Allocator has progressed.
type State int

// Allocator states, in order.
const (
	Constructed State = iota
	ConfigLoaded
	FilesRendered
	Submitted
	Reported
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case ConfigLoaded:
		return "config loaded"
	case FilesRendered:
		return "files rendered"
	case Submitted:
		return "submitted"
	case Reported:
		return "reported"
	}
	return "unknown"
}

// Allocator consolidates platform configuration with command line overrides
// and writes the files needed to allocate nodes through a batch scheduler.
type Allocator struct {
	// Out receives the node set summary.
	Out io.Writer
	// Run runs external commands.
	Run Runner
	// Now returns the time used for unique identifiers.
	Now func() time.Time
	// LoginName returns the local user name used for unique identifiers.
	LoginName func() (string, error)

	Log *logger.Logger

	fs       afero.Fs
	platform string
	opts     Options
	conf     config.Config
	params   Params
	state    State

	id               string
	configDir        string
	submitFile       string
	condorConfigFile string
	allocationFile   string
}

// NewAllocator returns an Allocator for the given platform. It loads the
// identity file named in conf, resolves the remote user name and home
// directory, and records the command line overrides.
func NewAllocator(fs afero.Fs, platform string, opts Options, execConf config.ExecConfig, conf config.Config) (*Allocator, error) {
	info, err := config.LoadCondorInfoConfig(fs, conf.CondorInfoFile)
	if err != nil {
		return nil, err
	}
	user, err := info.Identity(platform)
	if err != nil {
		return nil, err
	}

	b := NewParamsBuilder().
		Default("USER_NAME", user.Name).
		Default("USER_HOME", user.Home).
		Override("NODE_COUNT", opts.NodeCount).
		Override("SLOTS", opts.Slots).
		Override("CPUS", opts.Slots).
		Override("WALL_CLOCK", opts.WallClock)
	if opts.Queue != "" {
		b.Override("QUEUE", opts.Queue)
	}
	if !opts.Email {
		b.Override("EMAIL_NOTIFICATION", "#")
	}

	b.Default("LOCAL_SCRATCH", util.SubstituteVar(execConf.Platform.LocalScratch, "USER_NAME", user.Name))
	b.Default("SCHEDULER", execConf.Platform.Scheduler)

	return &Allocator{
		Out:       os.Stdout,
		Run:       RunCommand,
		Now:       time.Now,
		LoginName: util.CurrentUserName,
		Log:       logger.NewLogger("allocator", conf.Logger),
		fs:        fs,
		platform:  platform,
		opts:      opts,
		conf:      conf,
		params:    b.Build(),
		state:     Constructed,
	}, nil
}

// LoadAllocationConfig loads the scheduler allocation config named by name
// and resolves every value needed to render the submit files. suffix is the
// file extension of the submit file, e.g. "pbs".
func (a *Allocator) LoadAllocationConfig(name, suffix string) (config.AllocationConfig, error) {
	ac, err := config.LoadAllocationConfig(a.fs, name)
	if err != nil {
		return ac, err
	}
	p := ac.Platform

	b := a.params.Builder().
		Default("QUEUE", p.Queue).
		Default("EMAIL_NOTIFICATION", p.Email).
		Default("HOST_NAME", p.LoginHostName).
		Default("UTILITY_PATH", p.UtilityPath)

	if a.opts.GlideinShutdown != nil {
		b.Default("GLIDEIN_SHUTDOWN", *a.opts.GlideinShutdown)
	} else {
		b.Default("GLIDEIN_SHUTDOWN", p.GlideinShutdown)
	}

	nodeSet := a.opts.NodeSet
	if nodeSet == "" {
		nodeSet, err = a.createNodeSetName()
		if err != nil {
			return ac, err
		}
	}
	b.Default("NODE_SET", nodeSet)

	outputLog := a.opts.OutputLog
	if outputLog == "" {
		outputLog = nodeSet + ".out"
	}
	errorLog := a.opts.ErrorLog
	if errorLog == "" {
		errorLog = nodeSet + ".err"
	}
	b.Default("OUTPUT_LOG", outputLog)
	b.Default("ERROR_LOG", errorLog)

	b.Override("TOTAL_CORE_COUNT", a.opts.NodeCount*p.TotalCoresPerNode)

	login, err := a.LoginName()
	if err != nil {
		return ac, err
	}
	a.id = util.TimestampID(login, a.Now())

	// The generated paths must stay valid after plugins change directory.
	scratch, err := filepath.Abs(a.LocalScratchDirectory())
	if err != nil {
		return ac, fmt.Errorf("resolving local scratch directory: %w", err)
	}
	a.configDir = filepath.Join(scratch, "configs")
	if err := fsutil.EnsureDir(a.fs, a.configDir); err != nil {
		return ac, fmt.Errorf("creating config directory: %w", err)
	}
	a.submitFile = filepath.Join(a.configDir, fmt.Sprintf("alloc_%s.%s", a.id, suffix))
	a.condorConfigFile = filepath.Join(a.configDir, fmt.Sprintf("condor_%s.config", a.id))
	a.allocationFile = filepath.Join(a.configDir, fmt.Sprintf("allocation_%s.sh", a.id))

	b.Default("GENERATED_CONFIG", filepath.Base(a.condorConfigFile))
	b.Default("CONFIGURATION_ID", a.id)

	a.params = b.Build()
	a.advance(ConfigLoaded)
	return ac, nil
}

// createNodeSetName creates the next node set name from the remote user
// name and either a stored sequence number or a unique id.
func (a *Allocator) createNodeSetName() (string, error) {
	if a.conf.NodeSetNaming == "xid" {
		return fmt.Sprintf("%s_%s", a.UserName(), util.GenID()), nil
	}

	name, err := config.ResolvePath(a.conf.NodeSetSeqFile)
	if err != nil {
		return "", err
	}
	if err := fsutil.EnsureDir(a.fs, filepath.Dir(name)); err != nil {
		return "", fmt.Errorf("creating sequence file directory: %w", err)
	}
	n, err := seqfile.New(a.fs, name).Next()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d", a.UserName(), n), nil
}

// Update replaces the parameters with the result of applying fn to a
// builder holding the current parameters.
func (a *Allocator) Update(fn func(b *ParamsBuilder)) {
	b := a.params.Builder()
	fn(b)
	a.params = b.Build()
}

// CreateSubmitFile writes the scheduler submit file from the template at input.
func (a *Allocator) CreateSubmitFile(input string) (string, error) {
	out, err := a.createFile(input, a.submitFile)
	if err != nil {
		return "", err
	}
	a.verbose("wrote new submit file", "path", out)
	return out, nil
}

// CreateCondorConfigFile writes the glide-in daemon config file from the
// template at input.
func (a *Allocator) CreateCondorConfigFile(input string) (string, error) {
	out, err := a.createFile(input, a.condorConfigFile)
	if err != nil {
		return "", err
	}
	a.verbose("wrote new condor_config file", "path", out)
	return out, nil
}

// CreateAllocationFile writes the allocation script from the template at
// input and makes it executable.
func (a *Allocator) CreateAllocationFile(input string) (string, error) {
	out, err := a.createFile(input, a.allocationFile)
	if err != nil {
		return "", err
	}
	if err := a.fs.Chmod(out, 0755); err != nil {
		return "", fmt.Errorf("making %s executable: %w", out, err)
	}
	a.verbose("wrote new allocation script", "path", out)
	return out, nil
}

func (a *Allocator) createFile(input, output string) (string, error) {
	if a.state < ConfigLoaded {
		return "", fmt.Errorf("allocation config must be loaded before writing %s", output)
	}
	resolved, err := config.ResolvePath(input)
	if err != nil {
		return "", err
	}
	a.verbose("creating file", "template", resolved)
	if err := tplwriter.Rewrite(a.fs, resolved, output, a.params.Substitutions()); err != nil {
		return "", err
	}
	return output, nil
}

// PrintNodeSetInfo writes the allocation summary to w.
func (a *Allocator) PrintNodeSetInfo(w io.Writer) error {
	nodes := a.Nodes()
	plural := ""
	if nodes > 1 {
		plural = "s"
	}
	_, err := fmt.Fprintf(w,
		"%d node%s will be allocated on %s with %d slots per node and maximum time limit of %s\n"+
			"Node set name:\n%s\n",
		nodes, plural, a.platform, a.Slots(), a.WallClock(), a.NodeSetName())
	return err
}

// RunChecked runs a command line, returning an ExternalCommandError naming
// cmd and host when it exits with a non-zero status.
func (a *Allocator) RunChecked(ctx context.Context, cmd, host, line string) error {
	a.verbose("running", "cmd", line)
	code, err := a.Run(ctx, line, a.opts.Verbose)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExternalCommandError{Cmd: cmd, Host: host, ExitCode: code}
	}
	return nil
}

func (a *Allocator) verbose(msg string, args ...interface{}) {
	if a.opts.Verbose {
		a.Log.Info(msg, args...)
		return
	}
	a.Log.Debug(msg, args...)
}

func (a *Allocator) advance(s State) {
	a.state = s
}

// Base returns a. Plugins embedding *Allocator get this method.
func (a *Allocator) Base() *Allocator {
	return a
}

// FS returns the filesystem files are written to.
func (a *Allocator) FS() afero.Fs { return a.fs }

// Platform returns the platform name.
func (a *Allocator) Platform() string { return a.platform }

// Options returns the command line options.
func (a *Allocator) Options() Options { return a.opts }

// Config returns the tool configuration.
func (a *Allocator) Config() config.Config { return a.conf }

// Params returns the resolved parameters.
func (a *Allocator) Params() Params { return a.params }

// State returns the current state.
func (a *Allocator) State() State { return a.state }

// IsVerbose returns true when the verbose flag was given.
func (a *Allocator) IsVerbose() bool { return a.opts.Verbose }

// ConfigurationID returns the unique identifier of the generated files.
func (a *Allocator) ConfigurationID() string { return a.id }

// Parameter returns the value of key, taking the command line override when
// one exists. The boolean is false when key is unset.
func (a *Allocator) Parameter(key string) (string, bool) {
	return a.params.Get(key)
}

func (a *Allocator) intParameter(key string) int {
	v, _ := strconv.Atoi(a.params.Lookup(key))
	return v
}

// Nodes returns NODE_COUNT.
func (a *Allocator) Nodes() int { return a.intParameter("NODE_COUNT") }

// Slots returns SLOTS.
func (a *Allocator) Slots() int { return a.intParameter("SLOTS") }

// WallClock returns WALL_CLOCK.
func (a *Allocator) WallClock() string { return a.params.Lookup("WALL_CLOCK") }

// UserName returns USER_NAME.
func (a *Allocator) UserName() string { return a.params.Lookup("USER_NAME") }

// UserHome returns USER_HOME.
func (a *Allocator) UserHome() string { return a.params.Lookup("USER_HOME") }

// HostName returns HOST_NAME.
func (a *Allocator) HostName() string { return a.params.Lookup("HOST_NAME") }

// UtilityPath returns UTILITY_PATH.
func (a *Allocator) UtilityPath() string { return a.params.Lookup("UTILITY_PATH") }

// ScratchDirectory returns SCRATCH_DIR.
func (a *Allocator) ScratchDirectory() string { return a.params.Lookup("SCRATCH_DIR") }

// LocalScratchDirectory returns LOCAL_SCRATCH.
func (a *Allocator) LocalScratchDirectory() string { return a.params.Lookup("LOCAL_SCRATCH") }

// NodeSetName returns NODE_SET.
func (a *Allocator) NodeSetName() string { return a.params.Lookup("NODE_SET") }

// Scheduler returns SCHEDULER.
func (a *Allocator) Scheduler() string { return a.params.Lookup("SCHEDULER") }
