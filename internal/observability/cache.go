package observability

import (
	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
)

// InstrumentedCache wraps a HistoryCache and counts lookup hits and
// misses. Store calls pass through uncounted.
type InstrumentedCache struct {
	next    gitsrc.HistoryCache
	metrics *Metrics
}

// InstrumentCache wraps the given cache with hit and miss counters.
func (m *Metrics) InstrumentCache(next gitsrc.HistoryCache) *InstrumentedCache {
	return &InstrumentedCache{next: next, metrics: m}
}

// Lookup implements HistoryCache.
func (c *InstrumentedCache) Lookup(repository string) ([]gitsrc.Commit, bool) {
	commits, ok := c.next.Lookup(repository)
	c.metrics.recordCacheLookup(ok)

	return commits, ok
}

// Store implements HistoryCache.
func (c *InstrumentedCache) Store(repository string, commits []gitsrc.Commit) error {
	return c.next.Store(repository, commits)
}
