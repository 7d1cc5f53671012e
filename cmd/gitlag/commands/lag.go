package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/pkg/report"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// LagCommand holds the flags of the lag subcommand.
type LagCommand struct {
	app    *App
	flags  searchFlags
	repo   string
	dir    string
	format string
}

// NewLagCommand creates the full lag measurement command.
func NewLagCommand(app *App) *cobra.Command {
	lc := &LagCommand{app: app}

	cmd := &cobra.Command{
		Use:   "lag --repo URL|PATH --dir TARGET",
		Short: "Measure how far a directory lags behind a repository head",
		Long: `Lag finds the commit closest to the target directory, then reports
the distance from that commit to the repository head: how many commits
behind, and how much the trees have drifted.`,
		Args: exactArgs(0),
		RunE: lc.run,
	}

	cmd.Flags().StringVar(&lc.repo, "repo", "", "upstream repository URL or path")
	cmd.Flags().StringVar(&lc.dir, "dir", "", "target directory to measure")
	cmd.Flags().StringVar(&lc.format, "format", formatTable, "output format: table, yaml, json")
	lc.flags.register(cmd)

	return cmd
}

func (lc *LagCommand) run(cmd *cobra.Command, _ []string) error {
	if lc.repo == "" {
		return usagef("--repo is required")
	}

	if lc.dir == "" {
		return usagef("--dir is required")
	}

	return lc.measure(cmd, lc.repo, lc.dir)
}

// measure runs the full lag flow against an already resolved target
// directory. The deb subcommand reuses it after unpacking its package.
func (lc *LagCommand) measure(cmd *cobra.Command, repository, targetDir string) error {
	opts, err := lc.flags.searchOptions(cmd, lc.app)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	src, cleanup, err := lc.app.openSource(ctx, repository, lc.flags.firstParentEnabled(lc.app.Config))
	if err != nil {
		return err
	}
	defer cleanup()

	lag, err := search.MeasureLag(ctx, src, targetDir, opts)
	if err != nil {
		return err
	}

	lc.app.Telemetry.Metrics.AddFileCompareErrors(lag.Closest.FileErrors)

	rep := report.LagReport{
		Repository: repository,
		Target:     targetDir,
		Metric:     opts.Field.String(),
		Objective:  opts.Extremizer.String(),
		MeasuredAt: time.Now().UTC(),
		Lag:        lag,
	}

	out := cmd.OutOrStdout()

	err = writeRecord(out, lc.format, rep, func() error {
		return report.Table(out, rep)
	})
	if err != nil {
		return err
	}

	return lc.flags.writeArtifacts(lag.Closest.Samples, opts.Field, lc.app.Log)
}
