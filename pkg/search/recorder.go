package search

import "time"

// Recorder receives timings from a search run. Implementations must be
// safe for reuse across runs.
type Recorder interface {
	// RecordCheckout observes one checkout attempt.
	RecordCheckout(duration time.Duration, err error)

	// RecordComparison observes one tree comparison.
	RecordComparison(duration time.Duration)

	// RecordSearch observes a completed search.
	RecordSearch(duration time.Duration, evaluated int)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

// RecordCheckout implements Recorder.
func (NopRecorder) RecordCheckout(time.Duration, error) {}

// RecordComparison implements Recorder.
func (NopRecorder) RecordComparison(time.Duration) {}

// RecordSearch implements Recorder.
func (NopRecorder) RecordSearch(time.Duration, int) {}
