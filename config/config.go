// Package config contains the tool configuration and the platform
// configuration files read when allocating nodes and generating
// orchestration configs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/lsst/ctrl-execute/logger"
)

// Config describes configuration for the ctrl-execute tools.
type Config struct {
	Logger logger.Config
	// Per-user, per-platform login identity file.
	CondorInfoFile string
	// Sequence file used to generate node set names.
	NodeSetSeqFile string
	// How node set names are generated when none is given:
	// "sequence" ({user}_{n}) or "xid" ({user}_{unique id}).
	NodeSetNaming string
	// Commands used to reach remote login hosts. The gsi variants handle
	// both grid proxies and ssh keys.
	RemoteLoginCmd string
	RemoteCopyCmd  string
	// Login command used by qdelete and qstatus.
	QueueLoginCmd string
	// Orchestrator launched by run-orca.
	OrcaCmd string
	// Directory holding the orchestration config templates used by run-orca.
	TemplateDir string
	// Package manager queried for the currently set up packages.
	EupsCmd string
	// Explicit platform package directories, keyed by platform name.
	// Platforms not listed here are found through $CTRL_PLATFORM_<NAME>_DIR.
	PlatformDirs map[string]string
}

// ConfigurationError describes a missing or unusable configuration source.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Errorf returns a new ConfigurationError.
func Errorf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// PlatformDirNotFoundError is returned by PlatformDir when no package
// directory is known for a platform.
type PlatformDirNotFoundError struct {
	Platform string
}

func (e *PlatformDirNotFoundError) Error() string {
	return fmt.Sprintf("ctrl_platform_%s was not found. Is it setup?", e.Platform)
}

// PlatformEnvVar returns the environment variable naming the package
// directory of a platform, e.g. CTRL_PLATFORM_BIGBOXES_DIR.
func PlatformEnvVar(platform string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(platform))
	return "CTRL_PLATFORM_" + name + "_DIR"
}

// PlatformDir returns the package directory holding the configuration and
// templates of the given platform.
func (c Config) PlatformDir(platform string) (string, error) {
	if d, ok := c.PlatformDirs[platform]; ok && d != "" {
		return d, nil
	}
	if d := os.Getenv(PlatformEnvVar(platform)); d != "" {
		return d, nil
	}
	return "", &PlatformDirNotFoundError{Platform: platform}
}
