// Package search locates the commit whose checkout is most similar to a
// fixed target directory without evaluating every commit. It samples the
// commit space with an iterative range-narrowing strategy: evaluate a
// stride of commits, keep a band of the best-scoring ones, shrink the
// window to that band, and reduce the stride until it reaches one. The
// result is a high-probability near-optimum, exact when the metric is
// unimodal over the commit sequence, not a guaranteed global optimum.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/mathutil"
	"github.com/Sumatoshi-tech/gitlag/pkg/treecmp"
)

// Defaults for the narrowing strategy.
const (
	DefaultRatio     = 10
	DefaultBandwidth = 3
)

// Source is the commit space a search runs over. *gitsrc.Source
// implements it.
type Source interface {
	// Count returns the number of commits, sequence 0 being the oldest.
	Count() int

	// Commit returns the history entry at the given sequence.
	Commit(sequence int) (gitsrc.Commit, error)

	// Checkout materializes the commit at the given sequence and returns
	// the directory holding its tree.
	Checkout(sequence int, isolate bool) (string, error)
}

// Options configures a search run.
type Options struct {
	// Field is the comparison counter the search extremizes.
	Field lagmetrics.Field

	// Extremizer selects minimization or maximization of Field.
	Extremizer lagmetrics.Extremizer

	// Ratio divides the window into sampling strides. Must be at least
	// 2; 0 selects DefaultRatio.
	Ratio int

	// Bandwidth is the number of best commits, minus one, that bound the
	// narrowed window. Must be at least 1; 0 selects DefaultBandwidth.
	Bandwidth int

	// Isolate makes candidate checkouts use isolated directories instead
	// of the source's working directory.
	Isolate bool

	// Compare is passed through to the tree comparator.
	Compare treecmp.Options

	// Logger receives progress records. Defaults to slog.Default().
	Logger *slog.Logger

	// Recorder receives timings. Defaults to NopRecorder.
	Recorder Recorder
}

func (o Options) normalize() (Options, error) {
	if o.Ratio == 0 {
		o.Ratio = DefaultRatio
	}

	if o.Bandwidth == 0 {
		o.Bandwidth = DefaultBandwidth
	}

	if o.Ratio < 2 {
		return o, fmt.Errorf("ratio %d: must be at least 2", o.Ratio)
	}

	if o.Bandwidth < 1 {
		return o, fmt.Errorf("bandwidth %d: must be at least 1", o.Bandwidth)
	}

	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	if o.Recorder == nil {
		o.Recorder = NopRecorder{}
	}

	return o, nil
}

// Sample is one successful commit evaluation, in evaluation order.
type Sample struct {
	Sequence   int                   `json:"sequence" yaml:"sequence"`
	RevisionID string                `json:"revisionId" yaml:"revisionId"`
	Timestamp  time.Time             `json:"timestamp" yaml:"timestamp"`
	Value      int                   `json:"value" yaml:"value"`
	Metrics    lagmetrics.Comparison `json:"metrics" yaml:"metrics"`
	Elapsed    time.Duration         `json:"elapsed" yaml:"elapsed"`
}

// Skip is one commit whose checkout failed and was excluded from the
// search.
type Skip struct {
	Sequence int    `json:"sequence" yaml:"sequence"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Result identifies the extremal commit found by FindClosest.
type Result struct {
	Sequence    int                   `json:"sequence" yaml:"sequence"`
	RevisionID  string                `json:"revisionId" yaml:"revisionId"`
	Timestamp   time.Time             `json:"timestamp" yaml:"timestamp"`
	MetricValue int                   `json:"metricValue" yaml:"metricValue"`
	Metrics     lagmetrics.Comparison `json:"metrics" yaml:"metrics"`

	// FileErrors counts unreadable files the comparator skipped.
	FileErrors int `json:"fileErrors,omitempty" yaml:"fileErrors,omitempty"`

	// Samples and Skips record the run in evaluation order.
	Samples []Sample `json:"samples,omitempty" yaml:"samples,omitempty"`
	Skips   []Skip   `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// FindClosest searches the source for the commit whose checkout
// extremizes the configured field against targetDir. The target side is
// held fixed, so its line counts are cached across evaluations. The
// .git directory is always excluded, since in-place checkouts carry
// repository plumbing alongside the tree.
func FindClosest(ctx context.Context, source Source, targetDir string, opts Options) (Result, error) {
	opts, err := opts.normalize()
	if err != nil {
		return Result{}, err
	}

	if source.Count() == 0 {
		return Result{}, ErrEmptyHistory
	}

	comparator, err := treecmp.New(targetDir, compareOptions(opts))
	if err != nil {
		return Result{}, fmt.Errorf("prepare comparator: %w", err)
	}

	r := &run{
		source:     source,
		comparator: comparator,
		opts:       opts,
		log:        opts.Logger,
		rec:        opts.Recorder,
		memo:       make(map[int]lagmetrics.Comparison),
		failed:     make(map[int]string),
	}

	start := time.Now()

	result, err := r.search(ctx)
	if err != nil {
		return Result{}, err
	}

	r.rec.RecordSearch(time.Since(start), len(r.samples))

	return result, nil
}

// run holds the state of one search: the memoized evaluations, the
// skipped sequences, and the ordered sample trace. It never outlives the
// FindClosest call that created it.
type run struct {
	source     Source
	comparator *treecmp.Comparator
	opts       Options
	log        *slog.Logger
	rec        Recorder

	memo    map[int]lagmetrics.Comparison
	failed  map[int]string
	samples []Sample
	skips   []Skip
}

func (r *run) search(ctx context.Context) (Result, error) {
	n := r.source.Count()

	low, high := 0, n-1
	step := mathutil.CeilDiv(n, r.opts.Ratio)

	for {
		passErr := r.samplePass(ctx, low, high, step)
		if passErr != nil {
			return Result{}, passErr
		}

		if len(r.memo) == 0 {
			return Result{}, ErrUnreachableHistory
		}

		band := r.selectBand()
		low, high = r.extendBand(band)

		r.log.Debug("window narrowed", "low", low, "high", high, "step", step)

		if step == 1 {
			break
		}

		step = nextStep(step, high-low+1, r.opts.Ratio)
	}

	return r.finalResult()
}

// samplePass evaluates the stride low, low+step, ... up to high, plus
// high itself unconditionally.
func (r *run) samplePass(ctx context.Context, low, high, step int) error {
	for seq := low; seq <= high; seq += step {
		err := r.evaluate(ctx, seq)
		if err != nil {
			return err
		}
	}

	return r.evaluate(ctx, high)
}

// evaluate checks out and compares one commit, memoizing the metrics.
// Already-memoized and already-failed sequences are left alone. A failed
// checkout records a skip; any other failure aborts the search.
func (r *run) evaluate(ctx context.Context, sequence int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, ok := r.memo[sequence]; ok {
		return nil
	}

	if _, ok := r.failed[sequence]; ok {
		return nil
	}

	start := time.Now()

	dir, err := r.source.Checkout(sequence, r.opts.Isolate)
	r.rec.RecordCheckout(time.Since(start), err)

	if err != nil {
		if errors.Is(err, gitsrc.ErrCheckoutFailed) {
			r.failed[sequence] = err.Error()
			r.skips = append(r.skips, Skip{Sequence: sequence, Reason: err.Error()})
			r.log.Warn("checkout failed, sample skipped", "sequence", sequence, "err", err)

			return nil
		}

		return err
	}

	compareStart := time.Now()

	metrics, err := r.comparator.Compare(dir)
	r.rec.RecordComparison(time.Since(compareStart))

	if err != nil {
		return fmt.Errorf("compare sequence %d: %w", sequence, err)
	}

	rec, err := r.source.Commit(sequence)
	if err != nil {
		return err
	}

	value := r.opts.Field.From(metrics)

	r.memo[sequence] = metrics
	r.samples = append(r.samples, Sample{
		Sequence:   sequence,
		RevisionID: rec.RevisionID,
		Timestamp:  rec.Timestamp,
		Value:      value,
		Metrics:    metrics,
		Elapsed:    time.Since(start),
	})

	r.log.Debug("commit evaluated", "sequence", sequence, "value", value)

	return nil
}

// selectBand returns the sequences of the bandwidth+1 best memoized
// commits, sorted ascending. Value ties prefer the lower sequence.
func (r *run) selectBand() []int {
	seqs := make([]int, 0, len(r.memo))
	for seq := range r.memo {
		seqs = append(seqs, seq)
	}

	slices.SortFunc(seqs, func(a, b int) int {
		av, bv := r.opts.Field.From(r.memo[a]), r.opts.Field.From(r.memo[b])
		if av != bv {
			if r.opts.Extremizer.Better(av, bv) {
				return -1
			}

			return 1
		}

		return a - b
	})

	size := min(r.opts.Bandwidth+1, len(seqs))

	band := seqs[:size]
	slices.Sort(band)

	return band
}

// extendBand widens the band by one commit on each side unless it
// already touches the lowest or highest memoized sequence. The extension
// hedges against the true extremum lying just outside the sampled band.
func (r *run) extendBand(band []int) (int, int) {
	low, high := band[0], band[len(band)-1]

	minMemo, maxMemo := low, high
	for seq := range r.memo {
		minMemo = min(minMemo, seq)
		maxMemo = max(maxMemo, seq)
	}

	if low > minMemo {
		low--
	}

	if high < maxMemo {
		high++
	}

	return low, high
}

// compareOptions clones the caller's comparator options with the .git
// directory excluded.
func compareOptions(opts Options) treecmp.Options {
	c := opts.Compare
	c.SkipPrefixes = append(slices.Clone(c.SkipPrefixes), ".git")

	return c
}

// nextStep halves the stride while the halved value still oversamples
// the narrowed window, otherwise snaps to the window's own ratio stride.
// The stride is non-increasing and reaches exactly 1.
func nextStep(step, window, ratio int) int {
	candidate := mathutil.CeilDiv(window, ratio)

	halved := step / 2
	if halved >= candidate && halved >= 1 {
		return halved
	}

	return candidate
}

func (r *run) finalResult() (Result, error) {
	best := -1

	var bestValue int

	for seq, metrics := range r.memo {
		value := r.opts.Field.From(metrics)

		switch {
		case best == -1:
			best, bestValue = seq, value
		case r.opts.Extremizer.Better(value, bestValue):
			best, bestValue = seq, value
		case value == bestValue && seq < best:
			best = seq
		}
	}

	rec, err := r.source.Commit(best)
	if err != nil {
		return Result{}, err
	}

	r.log.Info("closest commit found",
		"sequence", best,
		"revision", rec.RevisionID,
		"metric", r.opts.Field.String(),
		"value", bestValue,
		"evaluated", len(r.samples),
		"skipped", len(r.skips))

	return Result{
		Sequence:    best,
		RevisionID:  rec.RevisionID,
		Timestamp:   rec.Timestamp,
		MetricValue: bestValue,
		Metrics:     r.memo[best],
		FileErrors:  r.comparator.FileErrors(),
		Samples:     r.samples,
		Skips:       r.skips,
	}, nil
}
