package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestSubcommands(t *testing.T) {
	expected := []string{"allocate", "completion", "dag-id-info", "qdelete", "qstatus", "run-orca", "version"}
	for _, name := range expected {
		c, _, err := RootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("expected subcommand %s, got %v %v", name, c, err)
		}
	}
}

func TestBashCompletion(t *testing.T) {
	out := &bytes.Buffer{}
	RootCmd.SetOut(out)
	RootCmd.SetArgs([]string{"completion", "bash"})
	defer RootCmd.SetOut(nil)
	if err := RootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ctrl-execute") {
		t.Error("expected the completion script to name the command")
	}
}
