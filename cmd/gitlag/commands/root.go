// Package commands implements the CLI command handlers for gitlag.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/internal/config"
	"github.com/Sumatoshi-tech/gitlag/internal/observability"
	"github.com/Sumatoshi-tech/gitlag/pkg/version"
)

// Exit codes reported by the binary.
const (
	ExitOK          = 0
	ExitOperational = 1
	ExitUsage       = 2
)

// usageError marks configuration and argument mistakes so main can map
// them to ExitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an Execute error to the binary exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}

	return ExitOperational
}

// exactArgs is cobra.ExactArgs with the error classified as a usage
// mistake.
func exactArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("accepts %d arg(s), received %d", n, len(args))
		}

		return nil
	}
}

// App carries the state shared by the subcommands: the loaded
// configuration, the logger, and the metrics pipeline.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	Telemetry *observability.Telemetry

	cfgFile string
	verbose bool
	quiet   bool
	noColor bool

	metricsServer *observability.Server
}

// NewRootCommand builds the gitlag root command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "gitlag",
		Short: "Measure how far a source tree lags behind a git history",
		Long: `gitlag locates the commit of an upstream git history whose tree is
closest to a target directory, then reports how far that commit sits
behind the upstream head.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  app.initialize,
		PersistentPostRunE: app.shutdown,
	}

	root.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is .gitlag.yaml)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&app.quiet, "quiet", "q", false, "errors only")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.AddCommand(
		NewCompareCommand(app),
		NewClosestCommand(app),
		NewLagCommand(app),
		NewDebCommand(app),
		NewCacheCommand(app),
		NewVersionCommand(),
	)

	return root
}

func (a *App) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return usageError{err: err}
	}

	a.Config = cfg

	if a.noColor {
		color.NoColor = true
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return usageError{err: err}
	}

	switch {
	case a.verbose:
		level = slog.LevelDebug
	case a.quiet:
		level = slog.LevelError
	}

	a.Log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.Log)

	tel, err := observability.Setup(cfg.Observability.Enabled, version.Version)
	if err != nil {
		return fmt.Errorf("set up metrics: %w", err)
	}

	a.Telemetry = tel

	if cfg.Observability.Enabled {
		a.metricsServer = observability.StartServer(cfg.Observability.PrometheusAddr, tel.Handler, a.Log)
	}

	return nil
}

func (a *App) shutdown(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.Log.Warn("metrics endpoint shutdown failed", "err", err)
		}
	}

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(ctx); err != nil {
			return fmt.Errorf("flush telemetry: %w", err)
		}
	}

	return nil
}
