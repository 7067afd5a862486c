package util

import (
	"strings"

	"github.com/lsst/ctrl-execute/config"
	"github.com/spf13/pflag"
)

func normalize(name string) string {
	from := []string{"-", "_"}
	to := "."
	for _, sep := range from {
		name = strings.Replace(name, sep, to, -1)
	}
	return strings.ToLower(name)
}

// NormalizeFlags allows for flags to be case and separator insensitive.
// Use it by passing it to cobra.Command.SetGlobalNormalizationFunc
func NormalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	lookup := map[string]string{"help": "help", normalize(name): name}

	f.VisitAll(func(f *pflag.Flag) {
		lookup[normalize(f.Name)] = f.Name
	})

	return pflag.NormalizedName(lookup[normalize(name)])
}

// ConfigFlags returns a new flag set for configuring the ctrl-execute tools.
func ConfigFlags(flagConf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(configFile, "config", *configFile, "Config File")

	f.AddFlagSet(toolFlags(flagConf))
	f.AddFlagSet(loggerFlags(flagConf))

	return f
}

func toolFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.CondorInfoFile, "CondorInfoFile", flagConf.CondorInfoFile, "File describing the user on each platform")
	f.StringVar(&flagConf.NodeSetSeqFile, "NodeSetSeqFile", flagConf.NodeSetSeqFile, "Sequence file used for node set names")
	f.StringVar(&flagConf.NodeSetNaming, "NodeSetNaming", flagConf.NodeSetNaming, "Node set naming scheme. One of ['sequence', 'xid']")
	f.StringToStringVar(&flagConf.PlatformDirs, "PlatformDirs", flagConf.PlatformDirs, "Platform package directories, e.g. bigboxes=/opt/ctrl_platform_bigboxes")

	return f
}

func loggerFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Logger.Level, "Logger.Level", flagConf.Logger.Level, "Level of logging")
	f.StringVar(&flagConf.Logger.OutputFile, "Logger.OutputFile", flagConf.Logger.OutputFile, "File path to write logs to")
	f.StringVar(&flagConf.Logger.Formatter, "Logger.Formatter", flagConf.Logger.Formatter, "Logs formatter. One of ['text', 'json']")

	return f
}
