package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
)

const shortHashLen = 7

// Table renders the human summary of a lag measurement: a colored headline,
// the chosen and head commits, and the counter rows for the closest match
// and the drift against head.
func Table(w io.Writer, r LagReport) error {
	behind := r.Lag.CommitsBehind

	headline := color.New(color.FgYellow, color.Bold)
	text := fmt.Sprintf("target is %s behind the upstream head",
		english.Plural(behind, "commit", ""))

	if behind == 0 {
		headline = color.New(color.FgGreen, color.Bold)
		text = "target matches the upstream head commit"
	}

	if _, err := headline.Fprintln(w, text); err != nil {
		return fmt.Errorf("write report headline: %w", err)
	}

	summary := table.NewWriter()
	summary.SetStyle(table.StyleRounded)
	summary.AppendRows([]table.Row{
		{"Repository", r.Repository},
		{"Target", r.Target},
		{"Metric", fmt.Sprintf("%s (%s)", r.Metric, r.Objective)},
		{"Closest commit", describeCommit(gitsrc.Commit{
			Sequence:   r.Lag.Closest.Sequence,
			RevisionID: r.Lag.Closest.RevisionID,
			Timestamp:  r.Lag.Closest.Timestamp,
		})},
		{"Upstream head", describeCommit(r.Lag.Head)},
		{"Commits behind", humanize.Comma(int64(behind))},
		{"Metric value", humanize.Comma(int64(r.Lag.Closest.MetricValue))},
		{"Commits sampled", humanize.Comma(int64(len(r.Lag.Closest.Samples)))},
	})

	if _, err := fmt.Fprintln(w, summary.Render()); err != nil {
		return fmt.Errorf("write report summary: %w", err)
	}

	counters := table.NewWriter()
	counters.SetStyle(table.StyleRounded)
	counters.AppendHeader(table.Row{"Counter", "Closest Match", "Head Drift"})

	for _, f := range lagmetrics.Fields() {
		counters.AppendRow(table.Row{
			f.String(),
			humanize.Comma(int64(f.From(r.Lag.Closest.Metrics))),
			humanize.Comma(int64(f.From(r.Lag.HeadDrift))),
		})
	}

	if _, err := fmt.Fprintln(w, counters.Render()); err != nil {
		return fmt.Errorf("write report counters: %w", err)
	}

	return nil
}

// MetricsTable renders one comparison record, a row per counter.
func MetricsTable(w io.Writer, metrics lagmetrics.Comparison) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"Counter", "Value"})

	for _, f := range lagmetrics.Fields() {
		tbl.AppendRow(table.Row{f.String(), humanize.Comma(int64(f.From(metrics)))})
	}

	if _, err := fmt.Fprintln(w, tbl.Render()); err != nil {
		return fmt.Errorf("write metrics table: %w", err)
	}

	return nil
}

func describeCommit(c gitsrc.Commit) string {
	hash := c.RevisionID
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}

	if hash == "" {
		return fmt.Sprintf("#%d", c.Sequence)
	}

	if c.Timestamp.IsZero() {
		return fmt.Sprintf("#%d %s", c.Sequence, hash)
	}

	return fmt.Sprintf("#%d %s (%s)", c.Sequence, hash, humanize.Time(c.Timestamp))
}
