package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/treecmp"
)

// Lag describes how far a target directory has drifted from the
// source's head, measured through the closest matching commit.
type Lag struct {
	Closest Result        `json:"closest" yaml:"closest"`
	Head    gitsrc.Commit `json:"head" yaml:"head"`

	// CommitsBehind is the sequence distance from the closest commit to
	// head.
	CommitsBehind int `json:"commitsBehind" yaml:"commitsBehind"`

	// HeadDrift compares the closest commit's tree against the head tree.
	HeadDrift lagmetrics.Comparison `json:"headDrift" yaml:"headDrift"`
}

// MeasureLag finds the commit closest to targetDir, then reports the
// drift from the source's head: the commit distance plus a second tree
// comparison between the chosen checkout and the head checkout.
func MeasureLag(ctx context.Context, source Source, targetDir string, opts Options) (Lag, error) {
	closest, err := FindClosest(ctx, source, targetDir, opts)
	if err != nil {
		return Lag{}, err
	}

	headSeq := source.Count() - 1

	head, err := source.Commit(headSeq)
	if err != nil {
		return Lag{}, err
	}

	// The chosen tree must stay on disk while head is checked out, so it
	// always gets an isolated directory.
	chosenDir, err := source.Checkout(closest.Sequence, true)
	if err != nil {
		return Lag{}, fmt.Errorf("checkout closest commit: %w", err)
	}

	headDir, err := source.Checkout(headSeq, false)
	if errors.Is(err, gitsrc.ErrBareRepository) {
		headDir, err = source.Checkout(headSeq, true)
	}

	if err != nil {
		return Lag{}, fmt.Errorf("checkout head: %w", err)
	}

	driftComparator, err := treecmp.New(chosenDir, compareOptions(opts))
	if err != nil {
		return Lag{}, fmt.Errorf("prepare drift comparator: %w", err)
	}

	drift, err := driftComparator.Compare(headDir)
	if err != nil {
		return Lag{}, fmt.Errorf("compare against head: %w", err)
	}

	return Lag{
		Closest:       closest,
		Head:          head,
		CommitsBehind: headSeq - closest.Sequence,
		HeadDrift:     drift,
	}, nil
}
