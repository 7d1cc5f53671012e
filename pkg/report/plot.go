package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

const (
	plotWidth  = "1200px"
	plotHeight = "600px"
)

// TracePlot writes an HTML line chart of the sampled counter over commit
// sequence, so the single-peak assumption behind the narrowing search can be
// checked by eye.
func TracePlot(w io.Writer, samples []search.Sample, field lagmetrics.Field) error {
	points := slices.Clone(samples)
	slices.SortFunc(points, func(a, b search.Sample) int { return a.Sequence - b.Sequence })

	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))

	for i, s := range points {
		labels[i] = strconv.Itoa(s.Sequence)
		data[i] = opts.LineData{Value: field.From(s.Metrics)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "gitlag search trace",
			Width:     plotWidth,
			Height:    plotHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Search trace",
			Subtitle: fmt.Sprintf("%s per sampled commit", field),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sequence"}),
		charts.WithYAxisOpts(opts.YAxis{Name: field.String()}),
	)
	line.SetXAxis(labels)
	line.AddSeries(field.String(), data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render trace plot: %w", err)
	}

	return nil
}
