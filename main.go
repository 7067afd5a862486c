package main

import (
	"os"

	"github.com/lsst/ctrl-execute/cmd"
	"github.com/lsst/ctrl-execute/cmd/util"
	"github.com/lsst/ctrl-execute/logger"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		if err.Error() != "" {
			logger.PrintSimpleError(err)
		}
		os.Exit(util.ExitCode(err))
	}
}
