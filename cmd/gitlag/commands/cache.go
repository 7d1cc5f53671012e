package commands

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
)

// NewCacheCommand creates the history cache maintenance command.
func NewCacheCommand(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the history cache",
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory (default is ~/.gitlag/history)")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Validate every persisted history entry",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheVerify(cmd, app, dir)
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted history entries",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd, app, dir)
		},
	}

	cmd.AddCommand(verify, clear)

	return cmd
}

func openCache(app *App, dir string) (*gitsrc.FileCache, error) {
	if dir == "" {
		dir = app.Config.Cache.Directory
	}

	cache, err := gitsrc.NewFileCache(dir, app.Log)
	if err != nil {
		return nil, fmt.Errorf("open history cache: %w", err)
	}

	return cache, nil
}

func runCacheVerify(cmd *cobra.Command, app *App, dir string) error {
	cache, err := openCache(app, dir)
	if err != nil {
		return err
	}

	entries, err := cache.Verify()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		_, err = fmt.Fprintf(out, "history cache at %s is empty\n", cache.Dir())

		return err
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"Entry", "Repository", "Commits", "Status"})

	invalid := 0

	for _, entry := range entries {
		status := "ok"

		switch {
		case entry.Err != nil:
			status = entry.Err.Error()
			invalid++
		case !entry.Complete:
			status = "incomplete"
			invalid++
		}

		tbl.AppendRow(table.Row{
			filepath.Base(entry.Path),
			entry.Repository,
			humanize.Comma(int64(entry.Commits)),
			status,
		})
	}

	if _, err := fmt.Fprintln(out, tbl.Render()); err != nil {
		return fmt.Errorf("write cache table: %w", err)
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d cache entries are invalid", invalid, len(entries))
	}

	_, err = color.New(color.FgGreen, color.Bold).Fprintf(out, "%s verified\n",
		english.Plural(len(entries), "entry", "entries"))

	return err
}

func runCacheClear(cmd *cobra.Command, app *App, dir string) error {
	cache, err := openCache(app, dir)
	if err != nil {
		return err
	}

	if err := cache.Clear(); err != nil {
		return err
	}

	_, err = color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(),
		"history cache at %s cleared\n", cache.Dir())

	return err
}
