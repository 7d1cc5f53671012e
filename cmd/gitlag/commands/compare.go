package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/pkg/report"
	"github.com/Sumatoshi-tech/gitlag/pkg/treecmp"
)

// CompareCommand holds the flags of the compare subcommand.
type CompareCommand struct {
	app    *App
	format string
}

// NewCompareCommand creates the one-shot tree comparison command.
func NewCompareCommand(app *App) *cobra.Command {
	cc := &CompareCommand{app: app}

	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Compare two directory trees",
		Long: `Compare walks two directory trees and reports how many files and
lines are unique to each side, identical on both, or changed between
them.`,
		Args: exactArgs(2),
		RunE: cc.run,
	}

	cmd.Flags().StringVar(&cc.format, "format", formatTable, "output format: table, yaml, json")

	return cmd
}

func (cc *CompareCommand) run(cmd *cobra.Command, args []string) error {
	comparator, err := treecmp.New(args[0], cc.app.compareOptions())
	if err != nil {
		return err
	}

	start := time.Now()

	metrics, err := comparator.Compare(args[1])
	cc.app.Telemetry.Metrics.RecordComparison(time.Since(start))

	if err != nil {
		return err
	}

	cc.app.Telemetry.Metrics.AddFileCompareErrors(comparator.FileErrors())

	out := cmd.OutOrStdout()

	return writeRecord(out, cc.format, metrics, func() error {
		return report.MetricsTable(out, metrics)
	})
}
