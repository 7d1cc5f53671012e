package treecmp

import "maps"

// MetricsCache memoizes per-file line counts for the fixed side of a
// comparison. Entries are keyed by absolute path and never invalidated:
// the cache lives exactly as long as one base directory is being compared
// against a series of moving targets, and base files do not change within
// that span.
type MetricsCache struct {
	lines map[string]int
}

// NewMetricsCache returns an empty cache.
func NewMetricsCache() *MetricsCache {
	return &MetricsCache{lines: make(map[string]int)}
}

// Lookup returns the memoized line count for path.
func (c *MetricsCache) Lookup(path string) (int, bool) {
	n, ok := c.lines[path]

	return n, ok
}

// Store memoizes the line count for path.
func (c *MetricsCache) Store(path string, lines int) {
	c.lines[path] = lines
}

// Len returns the number of memoized paths.
func (c *MetricsCache) Len() int {
	return len(c.lines)
}

// Snapshot returns a copy of the cache contents.
func (c *MetricsCache) Snapshot() map[string]int {
	out := make(map[string]int, len(c.lines))
	maps.Copy(out, c.lines)

	return out
}
