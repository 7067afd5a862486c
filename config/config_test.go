package config

import (
	"errors"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	yaml := `
NodeSetNaming: xid
QueueLoginCmd: /usr/bin/ssh
PlatformDirs:
  bigboxes: /opt/ctrl_platform_bigboxes
`
	conf := DefaultConfig()
	if err := Parse([]byte(yaml), &conf); err != nil {
		t.Fatal(err)
	}

	if conf.NodeSetNaming != "xid" {
		t.Fatal("unexpected node set naming")
	}
	if conf.QueueLoginCmd != "/usr/bin/ssh" {
		t.Fatal("unexpected queue login command")
	}
	// untouched fields keep their defaults
	if conf.RemoteLoginCmd != "/usr/bin/gsissh" {
		t.Fatal("unexpected remote login command")
	}
}

func TestPlatformDir(t *testing.T) {
	conf := DefaultConfig()
	conf.PlatformDirs["bigboxes"] = "/opt/bigboxes"

	d, err := conf.PlatformDir("bigboxes")
	if err != nil {
		t.Fatal(err)
	}
	if d != "/opt/bigboxes" {
		t.Fatal("unexpected platform dir", d)
	}

	t.Setenv("CTRL_PLATFORM_LSST_DIR", "/opt/lsst")
	d, err = conf.PlatformDir("lsst")
	if err != nil {
		t.Fatal(err)
	}
	if d != "/opt/lsst" {
		t.Fatal("unexpected platform dir", d)
	}

	_, err = conf.PlatformDir("nowhere")
	var nf *PlatformDirNotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("expected PlatformDirNotFoundError, got", err)
	}
	if nf.Error() != "ctrl_platform_nowhere was not found. Is it setup?" {
		t.Fatal("unexpected message", nf.Error())
	}
}

func TestPlatformEnvVar(t *testing.T) {
	if v := PlatformEnvVar("big-boxes"); v != "CTRL_PLATFORM_BIG_BOXES_DIR" {
		t.Fatal("unexpected env var", v)
	}
}

func TestToYamlRoundTrip(t *testing.T) {
	conf := DefaultConfig()
	conf.OrcaCmd = "/usr/local/bin/orca.py"

	p, cleanup := conf.ToYamlTempFile("ctrl-execute.yaml")
	defer cleanup()

	parsed := Config{}
	if err := ParseFile(p, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.OrcaCmd != "/usr/local/bin/orca.py" {
		t.Fatal("unexpected orca command", parsed.OrcaCmd)
	}
}
