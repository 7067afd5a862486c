package util

import (
	"testing"

	"github.com/lsst/ctrl-execute/config"
)

func TestMergeConfigFileWithFlags(t *testing.T) {
	flagConf := config.Config{}
	flagConf.NodeSetNaming = "xid"
	flagConf.Logger.Level = "debug"

	fileConf := config.DefaultConfig()
	fileConf.QueueLoginCmd = "/usr/local/bin/ssh"
	fileConf.NodeSetNaming = "sequence"
	tmp, cleanup := fileConf.ToYamlTempFile("testconfig.yaml")
	defer cleanup()

	result, err := MergeConfigFileWithFlags(tmp, flagConf)
	if err != nil {
		t.Fatal("unexpected error", err)
	}

	if result.NodeSetNaming != "xid" {
		t.Fatal("expected flag value to override file value")
	}
	if result.Logger.Level != "debug" {
		t.Fatal("unexpected logger level")
	}
	if result.QueueLoginCmd != "/usr/local/bin/ssh" {
		t.Fatal("expected file value to be kept")
	}
	if result.OrcaCmd != "orca.py" {
		t.Fatal("expected Config.OrcaCmd to equal default value from config.DefaultConfig()")
	}
}

func TestMergeConfigFileMissing(t *testing.T) {
	_, err := MergeConfigFileWithFlags("/no/such/ctrl-execute.yaml", config.Config{})
	if err == nil {
		t.Fatal("expected error")
	}
}
