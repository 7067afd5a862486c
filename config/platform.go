package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/lsst/ctrl-execute/util"
	"github.com/spf13/afero"
)

// ExecConfig describes the platform specific information required to fill
// out templates for running orchestration jobs, and selects the scheduler
// used for node allocation.
//
// It is read from <platform dir>/etc/config/execConfig.yaml.
type ExecConfig struct {
	Platform ExecPlatform `json:"platform"`
}

// ExecPlatform is the platform section of an ExecConfig.
type ExecPlatform struct {
	// remote root for working directories; may reference $USER_NAME
	DefaultRoot string `json:"defaultRoot"`
	// local scratch directory; may reference $USER_NAME
	LocalScratch string `json:"localScratch"`
	// number of ids to work on per job
	IDsPerJob int `json:"idsPerJob"`
	// remote directory where data that jobs will use is kept
	DataDirectory string `json:"dataDirectory"`
	// network domain name of remote system
	FileSystemDomain string `json:"fileSystemDomain"`
	// location of remote EUPS stack
	EupsPath string `json:"eupsPath"`
	// whether a node set name must be given
	NodeSetRequired bool `json:"nodeSetRequired"`
	// scheduler type: "pbs" or "slurm"
	Scheduler string `json:"scheduler"`
	// environment setup type: "getenv" or "setups"
	SetupUsing string `json:"setup_using"`
	// workflow manager
	Manager string `json:"manager"`
}

// DefaultExecConfig returns an ExecConfig holding the default values.
func DefaultExecConfig() ExecConfig {
	return ExecConfig{
		Platform: ExecPlatform{
			IDsPerJob: 1,
		},
	}
}

// Validate returns every problem found in the config.
func (c ExecConfig) Validate() error {
	var errs *multierror.Error
	if c.Platform.LocalScratch == "" {
		errs = multierror.Append(errs, fmt.Errorf("platform.localScratch is not set"))
	}
	if c.Platform.IDsPerJob < 1 {
		errs = multierror.Append(errs, fmt.Errorf("platform.idsPerJob must be at least 1, got %d", c.Platform.IDsPerJob))
	}
	switch c.Platform.SetupUsing {
	case "", "getenv", "setups":
	default:
		errs = multierror.Append(errs, fmt.Errorf(
			"invalid value for platform.setup_using = '%s'; should be 'getenv' or 'setups'",
			c.Platform.SetupUsing))
	}
	return errs.ErrorOrNil()
}

// AllocationConfig describes the platform specific information required to
// fill out a scheduler submit file.
//
// It is read from <platform dir>/etc/config/pbsConfig.yaml or slurmConfig.yaml.
type AllocationConfig struct {
	Platform AllocatedPlatform `json:"platform"`
}

// AllocatedPlatform is the platform section of an AllocationConfig.
type AllocatedPlatform struct {
	// the queue to submit to
	Queue string `json:"queue"`
	// line to add to the submit file to get email notification
	Email string `json:"email"`
	// directory on the remote system where the submit file is sent;
	// may reference $USER_HOME
	ScratchDirectory string `json:"scratchDirectory"`
	// the host to login and copy files to
	LoginHostName string `json:"loginHostName"`
	// the directory containing the scheduler commands
	UtilityPath string `json:"utilityPath"`
	// the TOTAL number of cores on each node
	TotalCoresPerNode int `json:"totalCoresPerNode"`
	// number of seconds of inactivity before glide-ins are cancelled
	GlideinShutdown int `json:"glideinShutdown"`
	// Slurm reservation to submit into
	Reservation string `json:"reservation"`
	// Slurm template block inserted at $DYNAMIC_SLOTS_BLOCK, relative to
	// the platform's etc/templates directory
	DynamicSlotsTemplate string `json:"dynamicSlotsTemplate"`
}

// DefaultAllocationConfig returns an AllocationConfig holding the default values.
func DefaultAllocationConfig() AllocationConfig {
	return AllocationConfig{
		Platform: AllocatedPlatform{
			TotalCoresPerNode: 1,
			GlideinShutdown:   3600,
		},
	}
}

// Validate returns every problem found in the config.
func (c AllocationConfig) Validate() error {
	var errs *multierror.Error
	if c.Platform.TotalCoresPerNode < 1 {
		errs = multierror.Append(errs, fmt.Errorf(
			"platform.totalCoresPerNode must be at least 1, got %d", c.Platform.TotalCoresPerNode))
	}
	if c.Platform.GlideinShutdown < 0 {
		errs = multierror.Append(errs, fmt.Errorf(
			"platform.glideinShutdown must not be negative, got %d", c.Platform.GlideinShutdown))
	}
	return errs.ErrorOrNil()
}

// CondorInfoConfig describes the per-platform remote login identities of a user.
//
//	platform:
//	  bigboxes:
//	    user:
//	      name: thx1138
//	      home: /home/thx1138
type CondorInfoConfig struct {
	Platform map[string]PlatformUser `json:"platform"`
	// file the config was loaded from
	Source string `json:"-"`
}

// PlatformUser holds the user information for one platform.
type PlatformUser struct {
	User UserInfo `json:"user"`
}

// UserInfo is a login name and home directory.
type UserInfo struct {
	Name string `json:"name"`
	Home string `json:"home"`
}

// Lookup returns the user information recorded for a platform.
func (c CondorInfoConfig) Lookup(platform string) (UserInfo, bool) {
	p, ok := c.Platform[platform]
	return p.User, ok
}

// Identity returns the login name and home directory to use on a platform.
// The "lsst" platform falls back to the effective user and $HOME for
// anything missing; every other platform must be fully described.
func (c CondorInfoConfig) Identity(platform string) (UserInfo, error) {
	u, _ := c.Lookup(platform)
	if platform == "lsst" {
		if u.Name == "" {
			name, err := util.CurrentUserName()
			if err != nil {
				return u, &ConfigurationError{Msg: "looking up user name", Err: err}
			}
			u.Name = name
		}
		if u.Home == "" {
			u.Home = os.Getenv("HOME")
		}
	}
	if u.Name == "" {
		return u, Errorf("%s does not specify user name for platform %s", c.Source, platform)
	}
	if u.Home == "" {
		return u, Errorf("%s does not specify user home for platform %s", c.Source, platform)
	}
	return u, nil
}

// LoadExecConfig loads an ExecConfig from the file called name, after
// resolving environment variables in name.
func LoadExecConfig(fs afero.Fs, name string) (ExecConfig, error) {
	conf := DefaultExecConfig()
	if err := load(fs, name, &conf); err != nil {
		return conf, err
	}
	if err := conf.Validate(); err != nil {
		return conf, &ConfigurationError{Msg: "invalid exec config " + name, Err: err}
	}
	return conf, nil
}

// LoadAllocationConfig loads an AllocationConfig from the file called name,
// after resolving environment variables in name.
func LoadAllocationConfig(fs afero.Fs, name string) (AllocationConfig, error) {
	conf := DefaultAllocationConfig()
	if err := load(fs, name, &conf); err != nil {
		return conf, err
	}
	if err := conf.Validate(); err != nil {
		return conf, &ConfigurationError{Msg: "invalid allocation config " + name, Err: err}
	}
	return conf, nil
}

// LoadCondorInfoConfig loads a CondorInfoConfig from the file called name,
// after resolving environment variables in name.
func LoadCondorInfoConfig(fs afero.Fs, name string) (CondorInfoConfig, error) {
	conf := CondorInfoConfig{Platform: map[string]PlatformUser{}, Source: name}
	err := load(fs, name, &conf)
	return conf, err
}

// ResolvePath resolves environment variables in name.
func ResolvePath(name string) (string, error) {
	resolved, err := util.ResolveEnv(name)
	if err != nil {
		return "", &ConfigurationError{Msg: "resolving " + name, Err: err}
	}
	return resolved, nil
}

func load(fs afero.Fs, name string, v interface{}) error {
	resolved, err := ResolvePath(name)
	if err != nil {
		return err
	}

	b, err := afero.ReadFile(fs, resolved)
	if os.IsNotExist(err) {
		return Errorf("%s was not found.", resolved)
	}
	if err != nil {
		return &ConfigurationError{Msg: "reading " + resolved, Err: err}
	}

	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return &ConfigurationError{Msg: "parsing " + resolved, Err: err}
	}
	return nil
}
