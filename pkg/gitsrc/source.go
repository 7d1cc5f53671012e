// Package gitsrc exposes a git repository as an ordered commit space.
// Every commit reachable from HEAD is assigned a dense sequence number,
// oldest first, and any sequence can be materialized as a file tree,
// either in the repository's own working directory or in an isolated
// scratch directory. Loaded histories can be served from a pluggable
// cache to avoid repeated walks over large repositories.
package gitsrc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// Directory permissions for scratch and cache directories.
const dirPerm = 0o750

// Commit is one entry of the ordered history.
type Commit struct {
	// Sequence is the position in the history, 0 for the oldest commit.
	Sequence int `json:"sequence" yaml:"sequence"`
	// RevisionID is the full commit hash in hex.
	RevisionID string `json:"revisionId" yaml:"revisionId"`
	// Timestamp is the committer time.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Options configures a Source.
type Options struct {
	// Cache resolves and stores commit histories. Defaults to NopCache.
	Cache HistoryCache

	// FirstParent restricts the history to first-parent ancestry.
	FirstParent bool

	// ScratchDir receives isolated checkouts. When empty, a temporary
	// directory is created on first use and removed by Close.
	ScratchDir string

	// Logger receives progress and warning records. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Source is an opened repository together with its loaded history.
type Source struct {
	repo    *git2go.Repository
	name    string
	workdir string
	opts    Options
	log     *slog.Logger

	commits []Commit

	scratch    string
	ownScratch bool
}

// Open opens the repository at path. The history cache is keyed by the
// absolute path.
func Open(path string, opts Options) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	repo, err := git2go.OpenRepository(abs)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return newSource(repo, abs, opts), nil
}

// Clone clones url into path and opens the result. Local paths work as
// url through the file transport.
func Clone(_ context.Context, url, path string, opts Options) (*Source, error) {
	repo, err := git2go.Clone(url, path, nil)
	if err != nil {
		return nil, fmt.Errorf("clone repository: %w", err)
	}

	return newSource(repo, url, opts), nil
}

// OpenOrClone reuses the repository at dir when one exists there and
// clones url into dir otherwise. The history cache is keyed by url in
// both cases, so repeated runs against the same mirror share entries.
func OpenOrClone(ctx context.Context, url, dir string, opts Options) (*Source, error) {
	_, statErr := os.Stat(filepath.Join(dir, ".git"))
	if statErr != nil {
		return Clone(ctx, url, dir, opts)
	}

	repo, err := git2go.OpenRepository(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return newSource(repo, url, opts), nil
}

func newSource(repo *git2go.Repository, name string, opts Options) *Source {
	if opts.Cache == nil {
		opts.Cache = NopCache{}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	src := &Source{
		repo:    repo,
		name:    name,
		opts:    opts,
		log:     log,
		scratch: opts.ScratchDir,
	}

	if wd := repo.Workdir(); wd != "" {
		src.workdir = filepath.Clean(wd)
	}

	return src
}

// Name returns the cache identity of the source, the absolute path for
// opened repositories or the url for cloned ones.
func (s *Source) Name() string { return s.name }

// Workdir returns the repository working directory, empty for bare
// repositories.
func (s *Source) Workdir() string { return s.workdir }

// Count returns the number of commits in the loaded history.
func (s *Source) Count() int { return len(s.commits) }

// Commits returns a copy of the loaded history, oldest first.
func (s *Source) Commits() []Commit { return slices.Clone(s.commits) }

// Commit returns the history entry at the given sequence.
func (s *Source) Commit(sequence int) (Commit, error) {
	if sequence < 0 || sequence >= len(s.commits) {
		return Commit{}, fmt.Errorf("%w: sequence %d of %d", ErrRevisionNotFound, sequence, len(s.commits))
	}

	return s.commits[sequence], nil
}

// Head returns the newest history entry.
func (s *Source) Head() (Commit, error) {
	if len(s.commits) == 0 {
		return Commit{}, fmt.Errorf("%w: history is empty", ErrRevisionNotFound)
	}

	return s.commits[len(s.commits)-1], nil
}

// Close releases libgit2 resources and removes any scratch directory the
// source created itself.
func (s *Source) Close() error {
	if s.repo != nil {
		s.repo.Free()
		s.repo = nil
	}

	if s.ownScratch && s.scratch != "" {
		err := os.RemoveAll(s.scratch)
		if err != nil {
			return fmt.Errorf("remove scratch dir: %w", err)
		}

		s.scratch = ""
	}

	return nil
}
