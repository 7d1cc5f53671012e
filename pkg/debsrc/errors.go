package debsrc

import "errors"

var (
	// ErrPackageNotFound reports a package name absent from a Sources index.
	ErrPackageNotFound = errors.New("package not found in sources index")
	// ErrVersionNotFound reports a package version unknown to the snapshot archive.
	ErrVersionNotFound = errors.New("package version not found in snapshot archive")
	// ErrExtractorMissing reports that the dpkg-source binary is not on PATH.
	ErrExtractorMissing = errors.New("dpkg-source not found")
)
