package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/internal/config"
	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/report"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// searchFlags are the knobs shared by the searching subcommands. Flag
// defaults mirror the config defaults; a flag left untouched defers to
// the loaded configuration.
type searchFlags struct {
	metric      string
	objective   string
	ratio       int
	bandwidth   int
	firstParent bool
	csvPath     string
	plotPath    string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.metric, "metric", config.DefaultMetric, "comparison counter to rank commits by")
	cmd.Flags().StringVar(&f.objective, "objective", config.DefaultObjective, "maximize or minimize the counter")
	cmd.Flags().IntVar(&f.ratio, "ratio", config.DefaultRatio, "window-to-step ratio of the narrowing search")
	cmd.Flags().IntVar(&f.bandwidth, "bandwidth", config.DefaultBandwidth, "number of best commits kept per round")
	cmd.Flags().BoolVar(&f.firstParent, "first-parent", false, "walk only first-parent history")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "write the sample dataset to this CSV file")
	cmd.Flags().StringVar(&f.plotPath, "plot", "", "write the search trace chart to this HTML file")
}

// searchOptions resolves flags against the loaded config and builds the
// search options. Values from explicitly set flags win over the config.
func (f *searchFlags) searchOptions(cmd *cobra.Command, app *App) (search.Options, error) {
	cfg := app.Config

	metricName := cfg.Search.Metric
	if cmd.Flags().Changed("metric") {
		metricName = f.metric
	}

	field, err := lagmetrics.ParseField(metricName)
	if err != nil {
		return search.Options{}, usageError{err: err}
	}

	objectiveName := cfg.Search.Objective
	if cmd.Flags().Changed("objective") {
		objectiveName = f.objective
	}

	ext, err := lagmetrics.ParseExtremizer(objectiveName)
	if err != nil {
		return search.Options{}, usageError{err: err}
	}

	ratio := cfg.Search.Ratio
	if cmd.Flags().Changed("ratio") {
		ratio = f.ratio
	}

	if ratio < 2 {
		return search.Options{}, usagef("ratio %d: must be at least 2", ratio)
	}

	bandwidth := cfg.Search.Bandwidth
	if cmd.Flags().Changed("bandwidth") {
		bandwidth = f.bandwidth
	}

	if bandwidth < 1 {
		return search.Options{}, usagef("bandwidth %d: must be at least 1", bandwidth)
	}

	return search.Options{
		Field:      field,
		Extremizer: ext,
		Ratio:      ratio,
		Bandwidth:  bandwidth,
		Compare:    app.compareOptions(),
		Logger:     app.Log,
		Recorder:   app.Telemetry.Metrics,
	}, nil
}

// firstParentEnabled folds the flag with the config default.
func (f *searchFlags) firstParentEnabled(cfg *config.Config) bool {
	return f.firstParent || cfg.Checkout.FirstParent
}

// writeArtifacts dumps the optional CSV and plot files of a search run.
func (f *searchFlags) writeArtifacts(samples []search.Sample, field lagmetrics.Field, log *slog.Logger) error {
	if f.csvPath != "" {
		err := writeFileWith(f.csvPath, func(w io.Writer) error {
			return report.WriteCSV(w, samples)
		})
		if err != nil {
			return err
		}

		log.Info("sample dataset written", "path", f.csvPath)
	}

	if f.plotPath != "" {
		err := writeFileWith(f.plotPath, func(w io.Writer) error {
			return report.TracePlot(w, samples, field)
		})
		if err != nil {
			return err
		}

		log.Info("trace chart written", "path", f.plotPath)
	}

	return nil
}
