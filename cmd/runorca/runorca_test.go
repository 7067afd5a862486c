package runorca

import (
	"context"
	"testing"

	"github.com/go-test/deep"
	"github.com/lsst/ctrl-execute/config"
	"github.com/lsst/ctrl-execute/orca"
)

func TestRunOrcaFlags(t *testing.T) {
	c, h := newCommandHooks()
	called := false
	h.RunOrca = func(ctx context.Context, conf config.Config, opts orca.Options) error {
		called = true
		expected := orca.Options{
			Platform:         "bigboxes",
			Command:          "processCcd.py",
			InputDataFile:    "ids.txt",
			EupsPath:         "/opt/eups",
			NodeSet:          "thx1138_1",
			IDsPerJob:        "3",
			DefaultRoot:      "/scratch/root",
			LocalScratch:     "/tmp/local",
			DataDirectory:    "/data",
			FileSystemDomain: "bighost.lsstcorp.org",
			UserName:         "thx1138",
			UserHome:         "/home/thx1138",
			RunID:            "run1",
			Setup: []orca.Package{
				{Name: "pipe_tasks", Version: "10.1"},
				{Name: "afw", Version: "LOCAL:/home/thx1138/afw"},
			},
			Verbose: true,
		}
		if diff := deep.Equal(opts, expected); diff != nil {
			t.Error(diff)
		}
		return nil
	}

	c.SetArgs([]string{
		"-p", "bigboxes", "-c", "processCcd.py", "-i", "ids.txt", "-e", "/opt/eups",
		"-N", "thx1138_1", "-n", "3", "-r", "/scratch/root", "-l", "/tmp/local",
		"-d", "/data", "-F", "bighost.lsstcorp.org", "-u", "thx1138", "-H", "/home/thx1138",
		"-R", "run1", "-s", "pipe_tasks=10.1", "-s", "afw=LOCAL:/home/thx1138/afw", "-v",
	})
	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("expected run-orca to be called")
	}
}

func TestRunOrcaRequiredFlags(t *testing.T) {
	c, h := newCommandHooks()
	h.RunOrca = func(ctx context.Context, conf config.Config, opts orca.Options) error {
		t.Fatal("run-orca should not be called")
		return nil
	}
	c.SilenceUsage = true
	c.SilenceErrors = true

	c.SetArgs([]string{"-p", "bigboxes", "-c", "cmd", "-i", "ids.txt"})
	if err := c.Execute(); err == nil {
		t.Fatal("expected error when --eups-path is missing")
	}
}

func TestParseSetups(t *testing.T) {
	pkgs, err := parseSetups([]string{"a=1", "b=LOCAL:/x=y"})
	if err != nil {
		t.Fatal(err)
	}
	expected := []orca.Package{{Name: "a", Version: "1"}, {Name: "b", Version: "LOCAL:/x=y"}}
	if diff := deep.Equal(pkgs, expected); diff != nil {
		t.Error(diff)
	}

	for _, bad := range []string{"a", "=1", "a="} {
		if _, err := parseSetups([]string{bad}); err == nil {
			t.Error("expected error for", bad)
		}
	}
}

func TestRunOrcaLongFlags(t *testing.T) {
	c, h := newCommandHooks()
	h.RunOrca = func(ctx context.Context, conf config.Config, opts orca.Options) error {
		if opts.InputDataFile != "ids.txt" || opts.RunID != "run2" {
			t.Fatal("unexpected options", opts)
		}
		if opts.Platform != "bigboxes" || opts.EupsPath != "/opt/eups" {
			t.Fatal("unexpected options", opts)
		}
		return nil
	}

	c.SetArgs([]string{
		"--platform", "bigboxes", "--command", "processCcd.py", "--id-file", "ids.txt",
		"--eups-path", "/opt/eups", "--run-id", "run2",
	})
	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}
}
