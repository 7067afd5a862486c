// Package cmd contains the ctrl-execute CLI commands.
package cmd

import (
	"github.com/lsst/ctrl-execute/cmd/allocate"
	"github.com/lsst/ctrl-execute/cmd/dag"
	"github.com/lsst/ctrl-execute/cmd/queue"
	"github.com/lsst/ctrl-execute/cmd/runorca"
	"github.com/lsst/ctrl-execute/cmd/version"
	"github.com/spf13/cobra"
)

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:           "ctrl-execute",
	Short:         "Allocate glide-in nodes and launch orchestration runs on LSST platforms.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.AddCommand(allocate.NewCommand())
	RootCmd.AddCommand(completionCmd)
	RootCmd.AddCommand(dag.NewCommand())
	RootCmd.AddCommand(queue.NewDeleteCommand())
	RootCmd.AddCommand(queue.NewStatusCommand())
	RootCmd.AddCommand(runorca.NewCommand())
	RootCmd.AddCommand(version.Cmd)
}
