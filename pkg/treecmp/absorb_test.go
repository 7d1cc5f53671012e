package treecmp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLinesAbsorbsReadError(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	c, err := New(base, Options{})
	require.NoError(t, err)

	// Reading a directory as a file fails even for root.
	unreadable := filepath.Join(base, "dir-not-file")
	require.NoError(t, os.Mkdir(unreadable, 0o755))

	n, ok := c.fileLines(unreadable, true)

	assert.False(t, ok)
	assert.Zero(t, n)
	assert.Equal(t, 1, c.FileErrors())

	// Absorbed reads never populate the cache.
	_, hit := c.cache.Lookup(unreadable)
	assert.False(t, hit)
}

func TestLineCountBinaryIsOpaque(t *testing.T) {
	t.Parallel()

	assert.Zero(t, lineCount([]byte("a\nb\x00c\n")))
	assert.Equal(t, 2, lineCount([]byte("a\nb\n")))
}
