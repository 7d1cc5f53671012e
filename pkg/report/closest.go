package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// A ClosestReport is the record of one closest-commit search.
type ClosestReport struct {
	// Repository names the searched upstream.
	Repository string `json:"repository" yaml:"repository"`
	// Target is the directory the search matched against.
	Target string `json:"target" yaml:"target"`
	// Metric is the serialized spelling of the ranked counter.
	Metric string `json:"metric" yaml:"metric"`
	// Objective is "minimize" or "maximize".
	Objective string `json:"objective" yaml:"objective"`
	// MeasuredAt is when the search finished.
	MeasuredAt time.Time `json:"measuredAt" yaml:"measuredAt"`

	Result search.Result `json:"result" yaml:"result"`
}

// ResultTable renders the human summary of a search: a colored headline,
// the summary table, and the counter record of the winning commit.
func ResultTable(w io.Writer, r ClosestReport) error {
	headline := color.New(color.FgYellow, color.Bold)
	text := fmt.Sprintf("closest commit found after %s",
		english.Plural(len(r.Result.Samples), "sample", ""))

	if _, err := headline.Fprintln(w, text); err != nil {
		return fmt.Errorf("write result headline: %w", err)
	}

	summary := table.NewWriter()
	summary.SetStyle(table.StyleRounded)
	summary.AppendRows([]table.Row{
		{"Repository", r.Repository},
		{"Target", r.Target},
		{"Metric", fmt.Sprintf("%s (%s)", r.Metric, r.Objective)},
		{"Closest commit", describeCommit(gitsrc.Commit{
			Sequence:   r.Result.Sequence,
			RevisionID: r.Result.RevisionID,
			Timestamp:  r.Result.Timestamp,
		})},
		{"Metric value", humanize.Comma(int64(r.Result.MetricValue))},
		{"Commits sampled", humanize.Comma(int64(len(r.Result.Samples)))},
		{"Checkouts skipped", humanize.Comma(int64(len(r.Result.Skips)))},
	})

	if _, err := fmt.Fprintln(w, summary.Render()); err != nil {
		return fmt.Errorf("write result summary: %w", err)
	}

	return MetricsTable(w, r.Result.Metrics)
}
