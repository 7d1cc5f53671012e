package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitlag/pkg/debsrc"
)

// DebCommand holds the flags of the deb subcommand.
type DebCommand struct {
	lag LagCommand

	pkg          string
	sources      string
	mirror       string
	snapshotBase string
	workDir      string
}

// NewDebCommand creates the Debian source package measurement command.
func NewDebCommand(app *App) *cobra.Command {
	dc := &DebCommand{lag: LagCommand{app: app}}

	cmd := &cobra.Command{
		Use:   "deb --package NAME --sources FILE|URL --repo URL",
		Short: "Measure how far a Debian source package lags behind upstream",
		Long: `Deb resolves a package in a Debian Sources index, downloads its
components from a mirror pool or the snapshot archive, unpacks the
source tree with dpkg-source, and measures its lag against the upstream
repository.`,
		Args: exactArgs(0),
		RunE: dc.run,
	}

	cmd.Flags().StringVar(&dc.pkg, "package", "", "Debian source package name")
	cmd.Flags().StringVar(&dc.sources, "sources", "", "Sources index file or URL, gzipped or plain")
	cmd.Flags().StringVar(&dc.lag.repo, "repo", "", "upstream repository URL or path")
	cmd.Flags().StringVar(&dc.mirror, "mirror", "", "mirror base URL for pool downloads (default is the snapshot archive)")
	cmd.Flags().StringVar(&dc.snapshotBase, "snapshot", "", "snapshot archive base URL")
	cmd.Flags().StringVar(&dc.workDir, "workdir", "", "directory for downloads and the unpacked tree (default is a temporary directory)")
	cmd.Flags().StringVar(&dc.lag.format, "format", formatTable, "output format: table, yaml, json")
	dc.lag.flags.register(cmd)

	return cmd
}

func (dc *DebCommand) run(cmd *cobra.Command, _ []string) error {
	if dc.pkg == "" {
		return usagef("--package is required")
	}

	if dc.sources == "" {
		return usagef("--sources is required")
	}

	if dc.lag.repo == "" {
		return usagef("--repo is required")
	}

	app := dc.lag.app

	workDir := dc.workDir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "gitlag-deb-")
		if err != nil {
			return fmt.Errorf("create work dir: %w", err)
		}

		defer func() { _ = os.RemoveAll(tmp) }()

		workDir = tmp
	}

	var snapshot *debsrc.SnapshotClient
	if dc.snapshotBase != "" {
		snapshot = debsrc.NewSnapshotClient(dc.snapshotBase, nil, app.Log)
	}

	tree, err := debsrc.Acquire(cmd.Context(), debsrc.AcquireOptions{
		Package:  dc.pkg,
		Sources:  dc.sources,
		Mirror:   dc.mirror,
		Snapshot: snapshot,
		WorkDir:  workDir,
		Logger:   app.Log,
	})
	if err != nil {
		return err
	}

	return dc.lag.measure(cmd, dc.lag.repo, tree)
}
