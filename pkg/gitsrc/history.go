package gitsrc

import (
	"context"
	"fmt"
	"slices"

	git2go "github.com/libgit2/git2go/v34"
)

// Load resolves the commit history, consulting the configured cache
// before walking the repository. After a successful load, sequence
// numbers are dense and start at zero for the oldest commit.
func (s *Source) Load(ctx context.Context) error {
	commits, ok := s.opts.Cache.Lookup(s.name)
	if ok {
		s.commits = commits
		s.log.Debug("history cache hit", "repository", s.name, "commits", len(commits))

		return nil
	}

	commits, err := s.walkHistory(ctx)
	if err != nil {
		return err
	}

	s.commits = commits

	storeErr := s.opts.Cache.Store(s.name, commits)
	if storeErr != nil {
		s.log.Warn("history cache store failed", "repository", s.name, "err", storeErr)
	}

	return nil
}

// walkHistory enumerates commits reachable from HEAD, newest first, then
// flips the order so sequence 0 is the oldest commit.
func (s *Source) walkHistory(ctx context.Context) ([]Commit, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}
	defer head.Free()

	walk, err := s.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revision walk: %w", err)
	}
	defer walk.Free()

	pushErr := walk.Push(head.Target())
	if pushErr != nil {
		return nil, fmt.Errorf("push head to revwalk: %w", pushErr)
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	if s.opts.FirstParent {
		walk.SimplifyFirstParent()
	}

	var commits []Commit

	walkErr := walk.Iterate(func(commit *git2go.Commit) bool {
		commits = append(commits, Commit{
			RevisionID: commit.Id().String(),
			Timestamp:  commit.Committer().When,
		})
		commit.Free()

		return ctx.Err() == nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk history: %w", walkErr)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(commits)

	for i := range commits {
		commits[i].Sequence = i
	}

	s.log.Debug("history walked", "repository", s.name, "commits", len(commits))

	return commits, nil
}
