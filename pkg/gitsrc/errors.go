package gitsrc

import "errors"

// Sentinel errors reported by history and checkout operations.
var (
	// ErrRevisionNotFound reports a sequence number that does not exist in
	// the loaded history.
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrCheckoutFailed reports a revision that exists in the history but
	// could not be materialized as a file tree.
	ErrCheckoutFailed = errors.New("checkout failed")

	// ErrBareRepository reports an in-place checkout attempted on a
	// repository without a working directory.
	ErrBareRepository = errors.New("bare repository has no working directory")

	// ErrCacheInvalid reports a history cache payload that failed framing
	// or schema validation.
	ErrCacheInvalid = errors.New("invalid history cache payload")
)
