package debsrc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitlag/pkg/debsrc"
)

const fakeExtractor = `#!/bin/sh
mkdir -p "$4"
printf 'unpacked\n' > "$4/contents.txt"
`

// installFakeTool puts an executable dpkg-source stand-in at the front of
// PATH for the duration of the test.
func installFakeTool(t *testing.T, script string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dpkg-source")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeDSC(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("Format: 3.0 (quilt)\n"), 0o644))
	return path
}

func TestExtractUnpacksTree(t *testing.T) {
	installFakeTool(t, fakeExtractor)
	work := t.TempDir()
	dsc := writeDSC(t, work, "acl_2.2.52-3.dsc")

	tree, err := debsrc.Extract(context.Background(), dsc, work)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "acl_2.2.52-3"), tree)

	data, err := os.ReadFile(filepath.Join(tree, "contents.txt"))
	require.NoError(t, err)
	assert.Equal(t, "unpacked\n", string(data))
}

func TestExtractClearsStaleTree(t *testing.T) {
	installFakeTool(t, fakeExtractor)
	work := t.TempDir()
	dsc := writeDSC(t, work, "acl_2.2.52-3.dsc")

	stale := filepath.Join(work, "acl_2.2.52-3")
	require.NoError(t, os.MkdirAll(stale, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "stale.txt"), []byte("old\n"), 0o644))

	tree, err := debsrc.Extract(context.Background(), dsc, work)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(tree, "stale.txt"))
	assert.FileExists(t, filepath.Join(tree, "contents.txt"))
}

func TestExtractReportsToolFailure(t *testing.T) {
	installFakeTool(t, "#!/bin/sh\necho 'unpack exploded' >&2\nexit 2\n")
	work := t.TempDir()
	dsc := writeDSC(t, work, "acl_2.2.52-3.dsc")

	_, err := debsrc.Extract(context.Background(), dsc, work)
	require.ErrorContains(t, err, "unpack exploded")
}

func TestExtractMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := debsrc.Extract(context.Background(), "/tmp/x.dsc", t.TempDir())
	require.ErrorIs(t, err, debsrc.ErrExtractorMissing)
}
