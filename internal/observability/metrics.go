package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCheckoutsTotal    = "gitlag.checkouts.total"
	metricCheckoutSeconds   = "gitlag.checkout.duration.seconds"
	metricComparisonsTotal  = "gitlag.comparisons.total"
	metricComparisonSeconds = "gitlag.comparison.duration.seconds"
	metricSearchesTotal     = "gitlag.searches.total"
	metricSearchSeconds     = "gitlag.search.duration.seconds"
	metricCommitsSampled    = "gitlag.commits.sampled.total"
	metricFileErrorsTotal   = "gitlag.file_compare_errors.total"
	metricCacheHitsTotal    = "gitlag.history_cache.hits.total"
	metricCacheMissesTotal  = "gitlag.history_cache.misses.total"

	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s: checkouts of small
// repositories finish in fractions of a second, full searches over deep
// histories run for minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// Metrics holds the OTel instruments for search, checkout, comparison,
// and cache activity. It implements the search Recorder interface.
type Metrics struct {
	checkouts         metric.Int64Counter
	checkoutSeconds   metric.Float64Histogram
	comparisons       metric.Int64Counter
	comparisonSeconds metric.Float64Histogram
	searches          metric.Int64Counter
	searchSeconds     metric.Float64Histogram
	commitsSampled    metric.Int64Counter
	fileErrors        metric.Int64Counter
	cacheHits         metric.Int64Counter
	cacheMisses       metric.Int64Counter
}

// NewMetrics creates the gitlag instruments from the given meter.
func NewMetrics(mt metric.Meter) (*Metrics, error) {
	b := newMetricBuilder(mt)

	m := &Metrics{
		checkouts:         b.counter(metricCheckoutsTotal, "Total number of revision checkouts", "{checkout}"),
		checkoutSeconds:   b.histogram(metricCheckoutSeconds, "Checkout duration in seconds", "s", durationBucketBoundaries...),
		comparisons:       b.counter(metricComparisonsTotal, "Total number of tree comparisons", "{comparison}"),
		comparisonSeconds: b.histogram(metricComparisonSeconds, "Tree comparison duration in seconds", "s", durationBucketBoundaries...),
		searches:          b.counter(metricSearchesTotal, "Total number of completed searches", "{search}"),
		searchSeconds:     b.histogram(metricSearchSeconds, "Search duration in seconds", "s", durationBucketBoundaries...),
		commitsSampled:    b.counter(metricCommitsSampled, "Total number of commits evaluated by searches", "{commit}"),
		fileErrors:        b.counter(metricFileErrorsTotal, "Total number of unreadable files skipped during comparisons", "{file}"),
		cacheHits:         b.counter(metricCacheHitsTotal, "Total number of history cache hits", "{lookup}"),
		cacheMisses:       b.counter(metricCacheMissesTotal, "Total number of history cache misses", "{lookup}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return m, nil
}

// RecordCheckout observes one checkout attempt. The Recorder interface
// carries no context, so instrument calls use the background context.
func (m *Metrics) RecordCheckout(duration time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	ctx := context.Background()
	m.checkouts.Add(ctx, 1, attrs)
	m.checkoutSeconds.Record(ctx, duration.Seconds(), attrs)
}

// RecordComparison observes one tree comparison.
func (m *Metrics) RecordComparison(duration time.Duration) {
	ctx := context.Background()
	m.comparisons.Add(ctx, 1)
	m.comparisonSeconds.Record(ctx, duration.Seconds())
}

// RecordSearch observes a completed search and the number of commits it
// evaluated.
func (m *Metrics) RecordSearch(duration time.Duration, evaluated int) {
	ctx := context.Background()
	m.searches.Add(ctx, 1)
	m.searchSeconds.Record(ctx, duration.Seconds())
	m.commitsSampled.Add(ctx, int64(evaluated))
}

// AddFileCompareErrors accumulates unreadable-file skips reported by a
// comparator after a run.
func (m *Metrics) AddFileCompareErrors(count int) {
	if count <= 0 {
		return
	}

	m.fileErrors.Add(context.Background(), int64(count))
}

func (m *Metrics) recordCacheLookup(hit bool) {
	if hit {
		m.cacheHits.Add(context.Background(), 1)

		return
	}

	m.cacheMisses.Add(context.Background(), 1)
}
