package config

import (
	"github.com/lsst/ctrl-execute/logger"
)

// DefaultConfigFile is read by the command line tools when present.
const DefaultConfigFile = "$HOME/.lsst/ctrl-execute.yaml"

// DefaultConfig returns configuration with simple defaults.
func DefaultConfig() Config {
	return Config{
		Logger:         logger.DefaultConfig(),
		CondorInfoFile: "$HOME/.lsst/condor-info.yaml",
		NodeSetSeqFile: "$HOME/.lsst/node-set.seq",
		NodeSetNaming:  "sequence",
		RemoteLoginCmd: "/usr/bin/gsissh",
		RemoteCopyCmd:  "/usr/bin/gsiscp",
		QueueLoginCmd:  "ssh",
		OrcaCmd:        "orca.py",
		TemplateDir:    "$CTRL_EXECUTE_DIR/etc/templates",
		EupsCmd:        "eups",
		PlatformDirs:   map[string]string{},
	}
}
