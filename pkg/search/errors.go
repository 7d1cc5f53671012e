package search

import "errors"

// Sentinel errors for unrecoverable search conditions.
var (
	// ErrEmptyHistory reports a commit source with no commits to search.
	ErrEmptyHistory = errors.New("commit history is empty")

	// ErrUnreachableHistory reports a history in which not a single
	// commit could be checked out and evaluated.
	ErrUnreachableHistory = errors.New("no commit in the history could be evaluated")
)
