package gitsrc

import (
	"fmt"
	"os"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"
)

// Checkout materializes the commit at the given sequence as a file tree
// and returns the directory holding it. With isolate false the
// repository's own working directory is moved to the commit. With
// isolate true the tree is written to a per-revision directory under the
// scratch area, leaving the working directory untouched; repeated calls
// for the same sequence reuse the directory.
func (s *Source) Checkout(sequence int, isolate bool) (string, error) {
	rec, err := s.Commit(sequence)
	if err != nil {
		return "", err
	}

	oid, err := git2go.NewOid(rec.RevisionID)
	if err != nil {
		return "", fmt.Errorf("%w: parse revision %q: %v", ErrCheckoutFailed, rec.RevisionID, err)
	}

	commit, err := s.repo.LookupCommit(oid)
	if err != nil {
		return "", fmt.Errorf("%w: lookup %s: %v", ErrCheckoutFailed, rec.RevisionID, err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("%w: read tree of %s: %v", ErrCheckoutFailed, rec.RevisionID, err)
	}
	defer tree.Free()

	if isolate {
		return s.materialize(rec, tree)
	}

	return s.checkoutWorkdir(oid, tree)
}

// checkoutWorkdir force-checks the tree out into the working directory
// and detaches HEAD at the commit, so later checkouts see a consistent
// baseline.
func (s *Source) checkoutWorkdir(oid *git2go.Oid, tree *git2go.Tree) (string, error) {
	if s.repo.IsBare() {
		return "", ErrBareRepository
	}

	opts := git2go.CheckoutOptions{Strategy: git2go.CheckoutForce}

	err := s.repo.CheckoutTree(tree, &opts)
	if err != nil {
		return "", fmt.Errorf("%w: checkout tree: %v", ErrCheckoutFailed, err)
	}

	detachErr := s.repo.SetHeadDetached(oid)
	if detachErr != nil {
		return "", fmt.Errorf("%w: detach head: %v", ErrCheckoutFailed, detachErr)
	}

	return s.workdir, nil
}

// materialize writes the tree under the scratch area without touching
// the repository state.
func (s *Source) materialize(rec Commit, tree *git2go.Tree) (string, error) {
	scratch, err := s.ensureScratch()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(scratch, rec.RevisionID)

	_, statErr := os.Stat(dir)
	if statErr == nil {
		return dir, nil
	}

	mkdirErr := os.MkdirAll(dir, dirPerm)
	if mkdirErr != nil {
		return "", fmt.Errorf("%w: create checkout dir: %v", ErrCheckoutFailed, mkdirErr)
	}

	opts := git2go.CheckoutOptions{
		Strategy:        git2go.CheckoutForce,
		TargetDirectory: dir,
	}

	checkoutErr := s.repo.CheckoutTree(tree, &opts)
	if checkoutErr != nil {
		return "", fmt.Errorf("%w: materialize %s: %v", ErrCheckoutFailed, rec.RevisionID, checkoutErr)
	}

	s.log.Debug("commit materialized", "sequence", rec.Sequence, "revision", rec.RevisionID, "dir", dir)

	return dir, nil
}

func (s *Source) ensureScratch() (string, error) {
	if s.scratch != "" {
		return s.scratch, nil
	}

	dir, err := os.MkdirTemp("", "gitlag-checkout-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	s.scratch = dir
	s.ownScratch = true

	return dir, nil
}
