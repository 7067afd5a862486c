// Package dag contains the dag-id-info command.
package dag

import (
	"fmt"
	"io"
	"os"

	"github.com/lsst/ctrl-execute/cmd/util"
	"github.com/lsst/ctrl-execute/dag"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes of dag-id-info.
const (
	exitNotFound = 2
	exitUsage    = 22
)

// NewCommand returns the dag-id-info command
func NewCommand() *cobra.Command {
	return newCommand(afero.NewOsFs())
}

func newCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "dag-id-info DAGNODE FILE",
		Short: "Print the ids handled by a DAG node.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return util.Exit(exitUsage, "usage: %s", cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(fs, cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

// Run prints the ids recorded for node in the DAG file. Nothing is printed
// when the node is not in the file.
func Run(fs afero.Fs, w io.Writer, node, filename string) error {
	ids, ok, err := dag.ExtractIDs(fs, node, filename)
	if os.IsNotExist(err) {
		return util.Exit(exitNotFound, "file %s not found", filename)
	}
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(w, ids)
	}
	return nil
}
