// Package treecmp reduces two directory trees to a single record of
// file and line counters. One side, the base, is held fixed across many
// comparisons and its per-file line counts are memoized; the other side
// changes on every call. The walk is a pure recursive reduction: each
// subtree yields an immutable record summed into its parent, and the
// line-count cache is the only side channel.
package treecmp

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/linediff"
	"github.com/Sumatoshi-tech/gitlag/pkg/textutil"
)

// Options tunes a Comparator. The zero value compares everything with no
// diff time limit.
type Options struct {
	// DiffTimeout bounds a single file diff. Zero means no limit.
	DiffTimeout time.Duration
	// SkipPrefixes drops entries whose tree-relative path equals one of
	// the prefixes or lives under one of them. Matching is on whole path
	// components, so ".git" does not drop ".gitignore".
	SkipPrefixes []string
	// SkipVendored drops paths that look vendored (enry.IsVendor).
	SkipVendored bool
	// Logger receives warnings for absorbed per-file errors. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Comparator compares one fixed base tree against a series of right-hand
// trees. It is not safe for concurrent use; a comparison run owns it.
type Comparator struct {
	base    string
	cache   *MetricsCache
	counter linediff.Counter
	opts    Options
	log     *slog.Logger

	fileErrors int
}

// New returns a Comparator with base as the fixed left tree.
func New(base string, opts Options) (*Comparator, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Comparator{
		base:    abs,
		cache:   NewMetricsCache(),
		counter: linediff.Counter{Timeout: opts.DiffTimeout},
		opts:    opts,
		log:     log,
	}, nil
}

// Compare walks the base tree and rightDir and returns the full counter
// record, derived fields included.
func (c *Comparator) Compare(rightDir string) (lagmetrics.Comparison, error) {
	right, err := filepath.Abs(rightDir)
	if err != nil {
		return lagmetrics.Comparison{}, fmt.Errorf("resolve right: %w", err)
	}

	m, err := c.compareDirs(c.base, right, "")
	if err != nil {
		return lagmetrics.Comparison{}, err
	}

	return m.Derived(), nil
}

// Cache exposes the base-side line count cache.
func (c *Comparator) Cache() *MetricsCache {
	return c.cache
}

// FileErrors returns how many unreadable files have been skipped so far.
func (c *Comparator) FileErrors() int {
	return c.fileErrors
}

// Compare runs a one-off comparison of two trees with default options.
func Compare(leftDir, rightDir string) (lagmetrics.Comparison, error) {
	c, err := New(leftDir, Options{})
	if err != nil {
		return lagmetrics.Comparison{}, err
	}

	return c.Compare(rightDir)
}

func (c *Comparator) compareDirs(left, right, rel string) (lagmetrics.Comparison, error) {
	d, err := classify(left, right, rel, c.keep)
	if err != nil {
		return lagmetrics.Comparison{}, fmt.Errorf("classify %s: %w", path.Join(rel, "."), err)
	}

	var m lagmetrics.Comparison

	for _, name := range d.leftFiles {
		lines, ok := c.fileLines(filepath.Join(left, name), true)
		if !ok {
			continue
		}

		m.LeftOnlyFiles++
		m.LeftOnlyLines += lines
	}

	for _, name := range d.leftDirs {
		files, lines, err := c.countTree(filepath.Join(left, name), path.Join(rel, name), true)
		if err != nil {
			return lagmetrics.Comparison{}, err
		}

		m.LeftOnlyFiles += files
		m.LeftOnlyLines += lines
	}

	for _, name := range d.rightFiles {
		lines, ok := c.fileLines(filepath.Join(right, name), false)
		if !ok {
			continue
		}

		m.RightOnlyFiles++
		m.RightOnlyLines += lines
	}

	for _, name := range d.rightDirs {
		files, lines, err := c.countTree(filepath.Join(right, name), path.Join(rel, name), false)
		if err != nil {
			return lagmetrics.Comparison{}, err
		}

		m.RightOnlyFiles += files
		m.RightOnlyLines += lines
	}

	for _, name := range d.commonFiles {
		m = m.Add(c.compareFile(filepath.Join(left, name), filepath.Join(right, name)))
	}

	for _, name := range d.commonDirs {
		child, err := c.compareDirs(filepath.Join(left, name), filepath.Join(right, name), path.Join(rel, name))
		if err != nil {
			return lagmetrics.Comparison{}, err
		}

		m = m.Add(child)
	}

	return m, nil
}

// compareFile buckets one common file pair. Unreadable files are absorbed:
// logged, excluded from every counter, and the walk continues.
func (c *Comparator) compareFile(leftPath, rightPath string) lagmetrics.Comparison {
	leftData, err := os.ReadFile(leftPath)
	if err != nil {
		c.absorb(leftPath, err)

		return lagmetrics.Comparison{}
	}

	rightData, err := os.ReadFile(rightPath)
	if err != nil {
		c.absorb(rightPath, err)

		return lagmetrics.Comparison{}
	}

	if bytes.Equal(leftData, rightData) {
		lines, hit := c.cache.Lookup(leftPath)
		if !hit {
			lines = lineCount(leftData)
			c.cache.Store(leftPath, lines)
		}

		return lagmetrics.Comparison{CommonIdenticalFiles: 1, CommonIdenticalLines: lines}
	}

	m := lagmetrics.Comparison{CommonDifferentFiles: 1}

	// Binary pairs count as one opaque differing unit, no line totals.
	if !textutil.IsBinary(leftData) && !textutil.IsBinary(rightData) {
		m.AddedLines, m.RemovedLines, m.EqualLines = c.counter.Counts(leftData, rightData)
	}

	return m
}

// countTree counts every file underneath dir for one side of the
// comparison. cached marks the base side.
func (c *Comparator) countTree(dir, rel string, cached bool) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("list %s: %w", rel, err)
	}

	var files, lines int

	for _, entry := range entries {
		name := entry.Name()
		if !usable(entry) || !c.keep(path.Join(rel, name), entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			subFiles, subLines, err := c.countTree(filepath.Join(dir, name), path.Join(rel, name), cached)
			if err != nil {
				return 0, 0, err
			}

			files += subFiles
			lines += subLines

			continue
		}

		n, ok := c.fileLines(filepath.Join(dir, name), cached)
		if !ok {
			continue
		}

		files++
		lines += n
	}

	return files, lines, nil
}

// fileLines returns the line count of one file, memoized when the file
// belongs to the base side. ok is false when the file could not be read.
func (c *Comparator) fileLines(filePath string, cached bool) (int, bool) {
	if cached {
		if n, hit := c.cache.Lookup(filePath); hit {
			return n, true
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		c.absorb(filePath, err)

		return 0, false
	}

	n := lineCount(data)
	if cached {
		c.cache.Store(filePath, n)
	}

	return n, true
}

func (c *Comparator) keep(rel string, isDir bool) bool {
	for _, prefix := range c.opts.SkipPrefixes {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return false
		}
	}

	if c.opts.SkipVendored {
		probe := rel
		if isDir {
			probe += "/"
		}

		if enry.IsVendor(probe) {
			return false
		}
	}

	return true
}

func (c *Comparator) absorb(filePath string, err error) {
	c.fileErrors++
	c.log.Warn("file skipped", "path", filePath, "err", err)
}

// lineCount treats binary content as an opaque unit with zero lines.
func lineCount(data []byte) int {
	if textutil.IsBinary(data) {
		return 0
	}

	return textutil.CountLines(data)
}
