package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/lsst/ctrl-execute/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T) (*Command, *[]string) {
	conf := config.DefaultConfig()
	conf.CondorInfoFile = "testdata/condor-info.yaml"

	c, err := New(afero.NewOsFs(), "bigboxes", "testdata/platform", conf)
	require.NoError(t, err)

	var ran []string
	c.Run = func(ctx context.Context, cmd string, verbose bool) (int, error) {
		ran = append(ran, cmd)
		return 3, nil
	}
	return c, &ran
}

func TestDelete(t *testing.T) {
	c, ran := testCommand(t)

	code, err := c.Delete(context.Background(), "1234.bighost")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, []string{"ssh thx1138@bighost.lsstcorp.org /opt/torque/bin/qdel 1234.bighost"}, *ran)
}

func TestStatus(t *testing.T) {
	c, ran := testCommand(t)

	_, err := c.Status(context.Background())
	require.NoError(t, err)
	_, err = c.Status(context.Background(), "-f", "1234")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ssh thx1138@bighost.lsstcorp.org /opt/torque/bin/qstat -uthx1138",
		"ssh thx1138@bighost.lsstcorp.org /opt/torque/bin/qstat -f 1234",
	}, *ran)
}

func TestNewUnknownPlatform(t *testing.T) {
	conf := config.DefaultConfig()
	conf.CondorInfoFile = "testdata/condor-info.yaml"

	_, err := New(afero.NewOsFs(), "tinyboxes", "testdata/platform", conf)
	var ce *config.ConfigurationError
	require.True(t, errors.As(err, &ce))
}
