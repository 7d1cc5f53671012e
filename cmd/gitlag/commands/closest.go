package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/pkg/report"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// ClosestCommand holds the flags of the closest subcommand.
type ClosestCommand struct {
	app    *App
	flags  searchFlags
	repo   string
	dir    string
	format string
}

// NewClosestCommand creates the closest-commit search command.
func NewClosestCommand(app *App) *cobra.Command {
	cc := &ClosestCommand{app: app}

	cmd := &cobra.Command{
		Use:   "closest --repo URL|PATH --dir TARGET",
		Short: "Find the commit whose tree is closest to a directory",
		Long: `Closest searches the repository history for the commit whose checked
out tree best matches the target directory, sampling the commit space
instead of evaluating every revision.`,
		Args: exactArgs(0),
		RunE: cc.run,
	}

	cmd.Flags().StringVar(&cc.repo, "repo", "", "upstream repository URL or path")
	cmd.Flags().StringVar(&cc.dir, "dir", "", "target directory to match")
	cmd.Flags().StringVar(&cc.format, "format", formatTable, "output format: table, yaml, json")
	cc.flags.register(cmd)

	return cmd
}

func (cc *ClosestCommand) run(cmd *cobra.Command, _ []string) error {
	if cc.repo == "" {
		return usagef("--repo is required")
	}

	if cc.dir == "" {
		return usagef("--dir is required")
	}

	opts, err := cc.flags.searchOptions(cmd, cc.app)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	src, cleanup, err := cc.app.openSource(ctx, cc.repo, cc.flags.firstParentEnabled(cc.app.Config))
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := search.FindClosest(ctx, src, cc.dir, opts)
	if err != nil {
		return err
	}

	cc.app.Telemetry.Metrics.AddFileCompareErrors(result.FileErrors)

	rep := report.ClosestReport{
		Repository: cc.repo,
		Target:     cc.dir,
		Metric:     opts.Field.String(),
		Objective:  opts.Extremizer.String(),
		MeasuredAt: time.Now().UTC(),
		Result:     result,
	}

	out := cmd.OutOrStdout()

	err = writeRecord(out, cc.format, rep, func() error {
		return report.ResultTable(out, rep)
	})
	if err != nil {
		return err
	}

	return cc.flags.writeArtifacts(result.Samples, opts.Field, cc.app.Log)
}
