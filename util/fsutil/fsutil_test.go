package fsutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, EnsureDir(fs, "/scratch/user/configs"))
	assert.True(t, Exists(fs, "/scratch/user/configs"))

	// idempotent
	require.NoError(t, EnsureDir(fs, "/scratch/user/configs"))
}

func TestEnsureDirFileInTheWay(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scratch/configs", []byte("x"), 0644))

	assert.Error(t, EnsureDir(fs, "/scratch/configs"))
}
