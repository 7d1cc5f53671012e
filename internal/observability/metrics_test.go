package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/gitlag/internal/observability"
)

func setupTestMeter(t *testing.T) (*observability.Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return metrics, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	found := findMetric(rm, name)
	require.NotNil(t, found, "%s metric not found", name)

	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum data type for %s", name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestMetricsRecordCheckout(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.RecordCheckout(50*time.Millisecond, nil)
	metrics.RecordCheckout(10*time.Millisecond, context.DeadlineExceeded)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(2), counterValue(t, rm, "gitlag.checkouts.total"))

	duration := findMetric(rm, "gitlag.checkout.duration.seconds")
	require.NotNil(t, duration, "checkout duration metric not found")

	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram data type")
	// One data point per status attribute value.
	assert.Len(t, hist.DataPoints, 2)
}

func TestMetricsRecordComparison(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.RecordComparison(100 * time.Millisecond)
	metrics.RecordComparison(200 * time.Millisecond)
	metrics.RecordComparison(300 * time.Millisecond)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(3), counterValue(t, rm, "gitlag.comparisons.total"))

	duration := findMetric(rm, "gitlag.comparison.duration.seconds")
	require.NotNil(t, duration, "comparison duration metric not found")
}

func TestMetricsRecordSearch(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.RecordSearch(2*time.Second, 17)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(1), counterValue(t, rm, "gitlag.searches.total"))
	assert.Equal(t, int64(17), counterValue(t, rm, "gitlag.commits.sampled.total"))
}

func TestMetricsFileCompareErrors(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.AddFileCompareErrors(3)
	metrics.AddFileCompareErrors(0)
	metrics.AddFileCompareErrors(-1)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(3), counterValue(t, rm, "gitlag.file_compare_errors.total"))
}

func TestMetricsHistogramBuckets(t *testing.T) {
	t.Parallel()

	metrics, reader := setupTestMeter(t)

	metrics.RecordComparison(time.Second)

	rm := collectMetrics(t, reader)

	duration := findMetric(rm, "gitlag.comparison.duration.seconds")
	require.NotNil(t, duration)

	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram data type")
	require.NotEmpty(t, hist.DataPoints)

	expectedBounds := []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}
	assert.Equal(t, expectedBounds, hist.DataPoints[0].Bounds)
}
