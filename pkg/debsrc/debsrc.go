// Package debsrc acquires Debian source packages so their unpacked trees can
// be measured against an upstream repository.
//
// The flow mirrors the Debian tooling it wraps: parse a Sources index into
// source records, resolve a record's component files to download URLs (a
// plain mirror pool or the snapshot.debian.org archive), fetch the
// components, and unpack them with dpkg-source.
package debsrc

import (
	"fmt"
	"strings"
)

const dirPerm = 0o750

// A FileEntry is one component file of a source package as listed in the
// Files field of a Sources paragraph.
type FileEntry struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	Name string `json:"name"`
}

// A SourceRecord is one source-package paragraph of a Sources index.
type SourceRecord struct {
	Package   string      `json:"package"`
	Version   string      `json:"version"`
	Directory string      `json:"directory"`
	Files     []FileEntry `json:"files"`
}

// DSC returns the record's .dsc component, if it lists one.
func (r SourceRecord) DSC() (FileEntry, bool) {
	for _, f := range r.Files {
		if strings.HasSuffix(f.Name, ".dsc") {
			return f, true
		}
	}
	return FileEntry{}, false
}

// FindPackage returns the record for the named source package.
func FindPackage(records []SourceRecord, name string) (SourceRecord, error) {
	for _, r := range records {
		if r.Package == name {
			return r, nil
		}
	}
	return SourceRecord{}, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}
