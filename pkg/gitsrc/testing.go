package gitsrc

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// Fixture helpers for building throwaway repositories in tests. They
// live outside the _test files so dependent packages can reuse them.

// FixtureFile is one file written by a fixture commit.
type FixtureFile struct {
	Path    string
	Content string
}

// FixtureCommit is one commit of a fixture history, applied in order.
// Files are written before Remove entries are deleted.
type FixtureCommit struct {
	Message string
	Files   []FixtureFile
	Remove  []string
}

// fixtureEpoch anchors fixture commit times so walk order is stable.
var fixtureEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// BuildFixtureRepo initializes a repository at dir and applies the given
// commits as a linear history. Commit timestamps advance by one minute
// per commit.
func BuildFixtureRepo(dir string, commits []FixtureCommit) error {
	repo, err := git2go.InitRepository(dir, false)
	if err != nil {
		return fmt.Errorf("init fixture repository: %w", err)
	}
	defer repo.Free()

	when := fixtureEpoch

	for _, fc := range commits {
		for _, file := range fc.Files {
			path := filepath.Join(dir, file.Path)

			mkErr := os.MkdirAll(filepath.Dir(path), 0o755)
			if mkErr != nil {
				return fmt.Errorf("create fixture dir: %w", mkErr)
			}

			writeErr := os.WriteFile(path, []byte(file.Content), 0o644)
			if writeErr != nil {
				return fmt.Errorf("write fixture file: %w", writeErr)
			}
		}

		for _, name := range fc.Remove {
			rmErr := os.Remove(filepath.Join(dir, name))
			if rmErr != nil {
				return fmt.Errorf("remove fixture file: %w", rmErr)
			}
		}

		commitErr := commitAll(repo, fc.Message, when)
		if commitErr != nil {
			return commitErr
		}

		when = when.Add(time.Minute)
	}

	return nil
}

// commitAll stages the whole working directory, including deletions, and
// commits it on HEAD.
func commitAll(repo *git2go.Repository, message string, when time.Time) error {
	index, err := repo.Index()
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	if err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	err = index.UpdateAll([]string{"*"}, nil)
	if err != nil {
		return fmt.Errorf("stage deletions: %w", err)
	}

	err = index.Write()
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	treeID, err := index.WriteTree()
	if err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	tree, err := repo.LookupTree(treeID)
	if err != nil {
		return fmt.Errorf("lookup tree: %w", err)
	}
	defer tree.Free()

	sig := &git2go.Signature{
		Name:  "Fixture Author",
		Email: "fixture@example.com",
		When:  when,
	}

	var parents []*git2go.Commit

	head, err := repo.Head()
	if err == nil {
		parent, lookupErr := repo.LookupCommit(head.Target())

		head.Free()

		if lookupErr != nil {
			return fmt.Errorf("lookup parent: %w", lookupErr)
		}

		parents = append(parents, parent)
	}

	_, commitErr := repo.CreateCommit("HEAD", sig, sig, message, tree, parents...)

	for _, parent := range parents {
		parent.Free()
	}

	if commitErr != nil {
		return fmt.Errorf("create commit: %w", commitErr)
	}

	return nil
}
