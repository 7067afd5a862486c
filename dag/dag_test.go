package dag

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIDs(t *testing.T) {
	fs := afero.NewOsFs()
	tests := []struct {
		node     string
		expected string
		found    bool
	}{
		{"A1", "run=1033 filter=r camcol=2 field=229", true},
		{"A3", "run=1033 filter=i camcol=2 field=47", true},
		{"A17", "run=1033 filter=r camcol=2 field=229 run=1033 filter=i camcol=2 field=47", true},
		{"B1", "", false},
		{"A.", "", false},
	}

	for _, tt := range tests {
		ids, ok, err := ExtractIDs(fs, tt.node, "testdata/test.diamond.dag")
		require.NoError(t, err)
		assert.Equal(t, tt.found, ok, tt.node)
		assert.Equal(t, tt.expected, ids, tt.node)
	}
}

func TestExtractIDsMissingFile(t *testing.T) {
	_, _, err := ExtractIDs(afero.NewMemMapFs(), "A1", "/nope.dag")
	assert.True(t, os.IsNotExist(err))
}
