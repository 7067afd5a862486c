package util

import (
	"github.com/imdario/mergo"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/util/fsutil"
	"github.com/spf13/afero"
)

// MergeConfigFileWithFlags loads the tool config and overlays the values set
// by flags. When file is empty, the default config file is used if it
// exists. Flag values override values in the config file.
func MergeConfigFileWithFlags(file string, flagConf config.Config) (config.Config, error) {
	if file == "" {
		if p, err := config.ResolvePath(config.DefaultConfigFile); err == nil && fsutil.Exists(afero.NewOsFs(), p) {
			file = p
		}
	}

	// parse config file if it exists
	conf := config.DefaultConfig()
	err := config.ParseFile(file, &conf)
	if err != nil {
		return conf, err
	}

	// file vals <- cli val
	err = mergo.MergeWithOverwrite(&conf, flagConf)
	if err != nil {
		return conf, err
	}

	return conf, nil
}
