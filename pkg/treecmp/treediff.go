package treecmp

import (
	"fmt"
	"os"
	"path"
)

// delta classifies the entries of one directory level by name. An entry
// that is a file on one side and a directory on the other lands in the
// one-sided buckets of both sides, so every file still gets counted.
type delta struct {
	leftFiles   []string
	leftDirs    []string
	rightFiles  []string
	rightDirs   []string
	commonFiles []string
	commonDirs  []string
}

// keepFunc decides whether an entry takes part in the comparison. rel is
// the slash-separated path relative to the comparison root.
type keepFunc func(rel string, isDir bool) bool

// classify lists both directories and splits their entries into one-sided
// and common buckets. Name order follows the sorted directory listings.
func classify(leftDir, rightDir, rel string, keep keepFunc) (delta, error) {
	leftEntries, err := os.ReadDir(leftDir)
	if err != nil {
		return delta{}, fmt.Errorf("list left: %w", err)
	}

	rightEntries, err := os.ReadDir(rightDir)
	if err != nil {
		return delta{}, fmt.Errorf("list right: %w", err)
	}

	rightKind := make(map[string]bool, len(rightEntries))

	for _, entry := range rightEntries {
		if !usable(entry) || !keep(path.Join(rel, entry.Name()), entry.IsDir()) {
			continue
		}

		rightKind[entry.Name()] = entry.IsDir()
	}

	var d delta

	matched := make(map[string]bool, len(rightKind))

	for _, entry := range leftEntries {
		name := entry.Name()
		if !usable(entry) || !keep(path.Join(rel, name), entry.IsDir()) {
			continue
		}

		rightIsDir, onRight := rightKind[name]

		switch {
		case !onRight:
			d.appendLeft(name, entry.IsDir())
		case entry.IsDir() == rightIsDir:
			matched[name] = true
			if entry.IsDir() {
				d.commonDirs = append(d.commonDirs, name)
			} else {
				d.commonFiles = append(d.commonFiles, name)
			}
		default:
			// Kind mismatch: unique on both sides.
			matched[name] = true

			d.appendLeft(name, entry.IsDir())
			d.appendRight(name, rightIsDir)
		}
	}

	for _, entry := range rightEntries {
		name := entry.Name()
		if _, kept := rightKind[name]; !kept || matched[name] {
			continue
		}

		d.appendRight(name, entry.IsDir())
	}

	return d, nil
}

func (d *delta) appendLeft(name string, isDir bool) {
	if isDir {
		d.leftDirs = append(d.leftDirs, name)
	} else {
		d.leftFiles = append(d.leftFiles, name)
	}
}

func (d *delta) appendRight(name string, isDir bool) {
	if isDir {
		d.rightDirs = append(d.rightDirs, name)
	} else {
		d.rightFiles = append(d.rightFiles, name)
	}
}

// usable keeps directories and regular files; sockets, devices, and
// symlinks stay out of the comparison.
func usable(entry os.DirEntry) bool {
	return entry.IsDir() || entry.Type().IsRegular()
}
