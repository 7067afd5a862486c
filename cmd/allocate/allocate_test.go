package allocate

import (
	"context"
	"testing"

	"github.com/lsst/ctrl-execute/compute"
	"github.com/lsst/ctrl-execute/config"
)

func TestAllocateFlags(t *testing.T) {
	c, h := newCommandHooks()
	called := false
	h.Allocate = func(ctx context.Context, conf config.Config, platform string, opts compute.Options) error {
		called = true
		if platform != "bigboxes" {
			t.Fatal("unexpected platform", platform)
		}
		if opts.NodeCount != 64 || opts.Slots != 12 || opts.WallClock != "00:30:00" {
			t.Fatal("unexpected allocation request", opts)
		}
		if opts.NodeSet != "test_set" || opts.Queue != "normal" || !opts.Email {
			t.Fatal("unexpected allocation request", opts)
		}
		if opts.OutputLog != "outlog" || opts.ErrorLog != "errlog" {
			t.Fatal("unexpected log names", opts)
		}
		if opts.GlideinShutdown != nil {
			t.Fatal("glide-in shutdown should be unset")
		}
		if conf.NodeSetNaming != "xid" {
			t.Fatal("unexpected node set naming", conf.NodeSetNaming)
		}
		return nil
	}

	c.SetArgs([]string{"bigboxes", "-n", "64", "-s", "12", "-m", "00:30:00", "-N", "test_set",
		"-q", "normal", "-e", "-O", "outlog", "-E", "errlog", "--nodesetnaming", "xid"})
	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("expected allocate to be called")
	}
}

func TestAllocateCPUsAndShutdown(t *testing.T) {
	c, h := newCommandHooks()
	h.Allocate = func(ctx context.Context, conf config.Config, platform string, opts compute.Options) error {
		if opts.Slots != 8 {
			t.Fatal("expected --cpus to set slots", opts.Slots)
		}
		if opts.GlideinShutdown == nil || *opts.GlideinShutdown != 0 {
			t.Fatal("expected an explicit zero shutdown time")
		}
		if opts.Reservation != "res" || opts.DynamicSlots != "/tmp/slots" {
			t.Fatal("unexpected slurm options", opts)
		}
		return nil
	}

	c.SetArgs([]string{"lsst", "-n", "1", "--cpus", "8", "-m", "1:00:00", "-g", "0",
		"--reservation", "res", "--dynamic-slots", "/tmp/slots"})
	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestAllocateRequiredFlags(t *testing.T) {
	c, h := newCommandHooks()
	h.Allocate = func(ctx context.Context, conf config.Config, platform string, opts compute.Options) error {
		t.Fatal("allocate should not be called")
		return nil
	}
	c.SilenceUsage = true
	c.SilenceErrors = true

	c.SetArgs([]string{"lsst", "-n", "1", "-m", "1:00:00"})
	if err := c.Execute(); err == nil {
		t.Fatal("expected error when neither --slots nor --cpus is given")
	}

	c.SetArgs([]string{"lsst", "-s", "1", "-m", "1:00:00"})
	if err := c.Execute(); err == nil {
		t.Fatal("expected error when --node-count is missing")
	}
}

func TestAllocateUnknownPlatform(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Logger.Level = "error"
	err := Allocate(context.Background(), conf, "surely-not-a-platform", compute.Options{})
	if _, ok := err.(*config.PlatformDirNotFoundError); !ok {
		t.Fatal("expected PlatformDirNotFoundError, got", err)
	}
}
