package orca

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lsst/ctrl-execute/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() afero.Fs {
	return afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewOsFs()), afero.NewMemMapFs())
}

func testConf() config.Config {
	conf := config.DefaultConfig()
	conf.CondorInfoFile = "testdata/condor-info.yaml"
	conf.TemplateDir = "testdata/templates"
	return conf
}

func remoteOptions() Options {
	return Options{
		Platform:      "bigboxes",
		Command:       "echo hello",
		InputDataFile: "/tests/testfiles/inputfile",
		EupsPath:      "/tmp",
		NodeSet:       "test_set",
		IDsPerJob:     "16",
		Verbose:       true,
	}
}

func localOptions() Options {
	return Options{
		Platform:      "lsst",
		Command:       "echo hello",
		InputDataFile: "/tests/testfiles/inputfile",
		EupsPath:      "/tmp2",
		NodeSet:       "test_set2",
		IDsPerJob:     "12",
	}
}

func testConfigurator(t *testing.T, fs afero.Fs, opts Options) *Configurator {
	login := func() (string, error) { return "localuser", nil }
	now := func() time.Time { return time.Date(2012, 3, 4, 5, 6, 7, 0, time.UTC) }
	c, err := newConfigurator(fs, opts, testConf(), login, now)
	require.NoError(t, err)
	c.Log.Discard()
	c.Out = &bytes.Buffer{}
	c.ListPackages = func(ctx context.Context) ([]Package, error) {
		return []Package{
			{Name: "ctrl_orca", Version: "10.1"},
			{Name: "pipe_tasks", Version: "LOCAL:/home/u/pipe_tasks"},
		}, nil
	}
	return c
}

func TestRemoteConfigurator(t *testing.T) {
	c := testConfigurator(t, testFS(), remoteOptions())

	assert.True(t, c.IsVerbose())
	v, _ := c.Parameter("EUPS_PATH")
	assert.Equal(t, "/tmp", v)
	v, _ = c.Parameter("USER_NAME")
	assert.Equal(t, "thx1138", v)
	v, _ = c.Parameter("USER_HOME")
	assert.Equal(t, "/home/thx1138", v)
	v, _ = c.Parameter("COMMAND")
	assert.Equal(t, "echo hello ${id_option}", v)
	assert.Equal(t, "localuser_2012_0304_050607", c.RunID())
}

func TestLocalConfigurator(t *testing.T) {
	c := testConfigurator(t, testFS(), localOptions())

	assert.False(t, c.IsVerbose())
	v, _ := c.Parameter("EUPS_PATH")
	assert.Equal(t, "/tmp2", v)
	v, _ = c.Parameter("USER_NAME")
	assert.Equal(t, "c3po", v)
	v, _ = c.Parameter("USER_HOME")
	assert.Equal(t, "/lsst/home/c3po", v)
	v, _ = c.Parameter("NODE_SET")
	assert.Equal(t, "test_set2", v)
	_, ok := c.Parameter("KAZOO")
	assert.False(t, ok)
}

func TestIdentityOverrides(t *testing.T) {
	opts := remoteOptions()
	opts.Platform = "tinyboxes"
	_, err := newConfigurator(testFS(), opts, testConf(), nil, time.Now)
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce))

	opts.UserName = "r2d2"
	opts.UserHome = "/home/r2d2"
	opts.RunID = "myrun"
	c, err := newConfigurator(testFS(), opts, testConf(), nil, time.Now)
	require.NoError(t, err)
	v, _ := c.Parameter("USER_NAME")
	assert.Equal(t, "r2d2", v)
	assert.Equal(t, "myrun", c.RunID())
}

func TestGenericConfigFileName(t *testing.T) {
	c := testConfigurator(t, testFS(), remoteOptions())

	// nothing loaded yet
	name, err := c.GenericConfigFileName()
	require.NoError(t, err)
	assert.Equal(t, "testdata/templates/config_with_setups.py.template", name)

	require.NoError(t, c.Load("testdata/platform/etc/config/execConfig.yaml", "testdata/platform"))
	name, err = c.GenericConfigFileName()
	require.NoError(t, err)
	assert.Equal(t, "testdata/templates/config_with_getenv.py.template", name)

	opts := localOptions()
	opts.Setup = []Package{{Name: "fake_package", Version: "1.0"}}
	c = testConfigurator(t, testFS(), opts)
	require.NoError(t, c.Load("testdata/platform/etc/config/execConfig.yaml", "testdata/platform"))
	name, err = c.GenericConfigFileName()
	require.NoError(t, err)
	assert.Equal(t, "testdata/templates/config_with_setups.py.template", name)

	c.setupUsing = "magic"
	_, err = c.GenericConfigFileName()
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce))
}

func TestNodeSetRequired(t *testing.T) {
	fs := testFS()
	yaml := "platform:\n  localScratch: /scratch\n  nodeSetRequired: true\n"
	require.NoError(t, afero.WriteFile(fs, "/exec.yaml", []byte(yaml), 0644))

	opts := remoteOptions()
	opts.NodeSet = ""
	c := testConfigurator(t, fs, opts)

	err := c.Load("/exec.yaml", "/platform")
	var nr *NodeSetRequiredError
	require.True(t, errors.As(err, &nr))
}

func TestSetupPackages(t *testing.T) {
	opts := remoteOptions()
	opts.Setup = []Package{
		{Name: "ctrl_orca", Version: "11.0"},
		{Name: "fake_package", Version: "1.0"},
	}
	c := testConfigurator(t, testFS(), opts)

	s, err := c.SetupPackages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "setup -j ctrl_orca 11.0\\n\\\nsetup -j fake_package 1.0\\n\\\n", s)

	// locally set up packages are kept on the lsst platform
	c = testConfigurator(t, testFS(), localOptions())
	s, err = c.SetupPackages(context.Background())
	require.NoError(t, err)
	assert.Contains(t, s, "setup -j pipe_tasks LOCAL:/home/u/pipe_tasks")
}

func TestParsePackageList(t *testing.T) {
	out := "   afw                   12.1+3    \tcurrent setup\n\nbase   LOCAL:/home/u/base  setup\n"
	pkgs, err := parsePackageList(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []Package{
		{Name: "afw", Version: "12.1+3"},
		{Name: "base", Version: "LOCAL:/home/u/base"},
	}, pkgs)
}

func TestCreateConfigurationAndLaunch(t *testing.T) {
	fs := testFS()
	c := testConfigurator(t, fs, remoteOptions())
	var ran []string
	c.Run = func(ctx context.Context, cmd string, verbose bool) (int, error) {
		ran = append(ran, cmd)
		return 0, nil
	}

	_, err := c.Launch(context.Background())
	require.Error(t, err, "launching needs a configuration")

	require.NoError(t, c.Load("testdata/platform/etc/config/execConfig.yaml", "testdata/platform"))
	tpl, err := c.GenericConfigFileName()
	require.NoError(t, err)

	out, err := c.CreateConfiguration(context.Background(), tpl)
	require.NoError(t, err)
	assert.Equal(t, "/scratch/thx1138/configs/localuser_2012_0304_050607.config", out)

	b, err := afero.ReadFile(fs, out)
	require.NoError(t, err)
	expected := `root.workflow.platform.dir.defaultRoot = "/remote/thx1138/root"
root.workflow.platform.dir.localScratch = "/scratch/thx1138"
root.workflow.platform.dir.dataDirectory = "/data/sdss"
root.workflow.platform.deploy.eupsPath = "/tmp"
root.workflow.task.scriptTemplate = "echo hello ${id_option}"
root.workflow.task.idsPerJob = 16
root.workflow.task.inputDataFile = "/tests/testfiles/inputfile"
root.workflow.task.nodeSet = "test_set"
root.workflow.task.fileSystemDomain = "lsstcorp.org"
root.workflow.task.user = "thx1138"
`
	assert.Equal(t, expected, string(b))

	code, err := c.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"orca.py " + out + " localuser_2012_0304_050607"}, ran)
	assert.Equal(t, "runid for this run is localuser_2012_0304_050607\n", c.Out.(*bytes.Buffer).String())
}
