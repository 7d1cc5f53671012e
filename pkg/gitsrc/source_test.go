package gitsrc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
)

// threeCommitHistory builds a repository whose a.txt grows by one line
// per commit and whose b.txt exists only in the second commit.
func threeCommitHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	err := gitsrc.BuildFixtureRepo(dir, []gitsrc.FixtureCommit{
		{
			Message: "first",
			Files: []gitsrc.FixtureFile{
				{Path: "a.txt", Content: "one\n"},
			},
		},
		{
			Message: "second",
			Files: []gitsrc.FixtureFile{
				{Path: "a.txt", Content: "one\ntwo\n"},
				{Path: "b.txt", Content: "extra\n"},
			},
		},
		{
			Message: "third",
			Files: []gitsrc.FixtureFile{
				{Path: "a.txt", Content: "one\ntwo\nthree\n"},
			},
			Remove: []string{"b.txt"},
		},
	})
	require.NoError(t, err)

	return dir
}

func openSource(t *testing.T, dir string, opts gitsrc.Options) *gitsrc.Source {
	t.Helper()

	src, err := gitsrc.Open(dir, opts)
	require.NoError(t, err)

	t.Cleanup(func() { _ = src.Close() })

	require.NoError(t, src.Load(context.Background()))

	return src
}

// recordingCache serves a canned history and records stores.
type recordingCache struct {
	hit    []gitsrc.Commit
	stored map[string][]gitsrc.Commit
}

func (c *recordingCache) Lookup(string) ([]gitsrc.Commit, bool) {
	if c.hit == nil {
		return nil, false
	}

	return c.hit, true
}

func (c *recordingCache) Store(repository string, commits []gitsrc.Commit) error {
	if c.stored == nil {
		c.stored = make(map[string][]gitsrc.Commit)
	}

	c.stored[repository] = commits

	return nil
}

func TestLoadOrdersHistoryOldestFirst(t *testing.T) {
	t.Parallel()

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{})

	require.Equal(t, 3, src.Count())

	commits := src.Commits()
	for i, c := range commits {
		assert.Equal(t, i, c.Sequence)
		assert.Len(t, c.RevisionID, 40)
	}

	assert.True(t, commits[0].Timestamp.Before(commits[1].Timestamp))
	assert.True(t, commits[1].Timestamp.Before(commits[2].Timestamp))

	head, err := src.Head()
	require.NoError(t, err)
	assert.Equal(t, commits[2], head)
}

func TestCommitSequenceBounds(t *testing.T) {
	t.Parallel()

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{})

	_, err := src.Commit(-1)
	assert.ErrorIs(t, err, gitsrc.ErrRevisionNotFound)

	_, err = src.Commit(src.Count())
	assert.ErrorIs(t, err, gitsrc.ErrRevisionNotFound)
}

func TestLoadServesCachedHistory(t *testing.T) {
	t.Parallel()

	canned := []gitsrc.Commit{
		{Sequence: 0, RevisionID: strings.Repeat("a", 40), Timestamp: time.Now().UTC()},
		{Sequence: 1, RevisionID: strings.Repeat("b", 40), Timestamp: time.Now().UTC()},
	}

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{Cache: &recordingCache{hit: canned}})

	require.Equal(t, 2, src.Count())

	got, err := src.Commit(1)
	require.NoError(t, err)
	assert.Equal(t, canned[1].RevisionID, got.RevisionID)
}

func TestLoadStoresWalkedHistory(t *testing.T) {
	t.Parallel()

	cache := &recordingCache{}
	src := openSource(t, threeCommitHistory(t), gitsrc.Options{Cache: cache})

	stored, ok := cache.stored[src.Name()]
	require.True(t, ok)
	assert.Len(t, stored, 3)
	assert.Equal(t, src.Commits(), stored)
}

func TestLoadCanceledContext(t *testing.T) {
	t.Parallel()

	src, err := gitsrc.Open(threeCommitHistory(t), gitsrc.Options{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = src.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = src.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckoutIsolated(t *testing.T) {
	t.Parallel()

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{})

	dir0, err := src.Checkout(0, true)
	require.NoError(t, err)
	assert.NotEqual(t, src.Workdir(), dir0)

	data, err := os.ReadFile(filepath.Join(dir0, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))

	// The working directory keeps the newest content.
	data, err = os.ReadFile(filepath.Join(src.Workdir(), "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))

	again, err := src.Checkout(0, true)
	require.NoError(t, err)
	assert.Equal(t, dir0, again)

	dir1, err := src.Checkout(1, true)
	require.NoError(t, err)
	assert.NotEqual(t, dir0, dir1)

	data, err = os.ReadFile(filepath.Join(dir1, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "extra\n", string(data))
}

func TestCheckoutInPlace(t *testing.T) {
	t.Parallel()

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{})

	dir, err := src.Checkout(0, false)
	require.NoError(t, err)
	assert.Equal(t, src.Workdir(), dir)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(data))

	_, statErr := os.Stat(filepath.Join(dir, "b.txt"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = src.Checkout(1, false)
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "extra\n", string(data))

	_, err = src.Checkout(2, false)
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))

	// b.txt is gone again at the newest commit.
	_, statErr = os.Stat(filepath.Join(dir, "b.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckoutUnknownSequence(t *testing.T) {
	t.Parallel()

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{})

	_, err := src.Checkout(99, true)
	assert.ErrorIs(t, err, gitsrc.ErrRevisionNotFound)
}

func TestCheckoutMissingObject(t *testing.T) {
	t.Parallel()

	bogus := []gitsrc.Commit{
		{Sequence: 0, RevisionID: strings.Repeat("ab", 20), Timestamp: time.Now().UTC()},
	}

	src := openSource(t, threeCommitHistory(t), gitsrc.Options{Cache: &recordingCache{hit: bogus}})

	_, err := src.Checkout(0, true)
	assert.ErrorIs(t, err, gitsrc.ErrCheckoutFailed)
}

func TestCloseRemovesOwnScratch(t *testing.T) {
	t.Parallel()

	src, err := gitsrc.Open(threeCommitHistory(t), gitsrc.Options{})
	require.NoError(t, err)
	require.NoError(t, src.Load(context.Background()))

	dir, err := src.Checkout(0, true)
	require.NoError(t, err)

	require.NoError(t, src.Close())

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProvidedScratchDirSurvivesClose(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	src := openSource(t, threeCommitHistory(t), gitsrc.Options{ScratchDir: scratch})

	dir, err := src.Checkout(0, true)
	require.NoError(t, err)
	assert.Equal(t, scratch, filepath.Dir(dir))

	require.NoError(t, src.Close())

	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr)
}

func TestCloneLocal(t *testing.T) {
	t.Parallel()

	origin := threeCommitHistory(t)
	target := filepath.Join(t.TempDir(), "clone")

	src, err := gitsrc.Clone(context.Background(), origin, target, gitsrc.Options{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = src.Close() })

	require.NoError(t, src.Load(context.Background()))
	assert.Equal(t, 3, src.Count())
	assert.Equal(t, origin, src.Name())

	data, err := os.ReadFile(filepath.Join(src.Workdir(), "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))
}

func TestOpenOrCloneReusesMirror(t *testing.T) {
	t.Parallel()

	origin := threeCommitHistory(t)
	dir := filepath.Join(t.TempDir(), "mirror")

	first, err := gitsrc.OpenOrClone(context.Background(), origin, dir, gitsrc.Options{})
	require.NoError(t, err)
	require.NoError(t, first.Load(context.Background()))

	count := first.Count()
	require.NoError(t, first.Close())

	second, err := gitsrc.OpenOrClone(context.Background(), origin, dir, gitsrc.Options{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Close() })

	require.NoError(t, second.Load(context.Background()))
	assert.Equal(t, count, second.Count())
	assert.Equal(t, origin, second.Name())
}

func TestOpenMissingRepository(t *testing.T) {
	t.Parallel()

	_, err := gitsrc.Open(t.TempDir(), gitsrc.Options{})
	require.Error(t, err)
}
