package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/gitlag/pkg/gitsrc"
	"github.com/Sumatoshi-tech/gitlag/pkg/treecmp"
)

const mirrorDigestLen = 12

// repoDigest names the mirror directory for a repository URL or path.
func repoDigest(repository string) string {
	sum := sha256.Sum256([]byte(repository))

	return hex.EncodeToString(sum[:])[:mirrorDigestLen]
}

// openSource clones or reuses a mirror of the repository under the
// scratch root and loads its history. Checkouts run inside the mirror,
// never inside a user checkout. The returned cleanup closes the source
// and removes scratch roots the call created itself.
func (a *App) openSource(ctx context.Context, repository string, firstParent bool) (*gitsrc.Source, func(), error) {
	cache, err := a.historyCache()
	if err != nil {
		return nil, nil, err
	}

	root := a.Config.Checkout.ScratchDir
	ownRoot := false

	if root == "" {
		tmp, tmpErr := os.MkdirTemp("", "gitlag-")
		if tmpErr != nil {
			return nil, nil, fmt.Errorf("create scratch root: %w", tmpErr)
		}

		root, ownRoot = tmp, true
	}

	mirror := filepath.Join(root, "mirror-"+repoDigest(repository))

	a.Log.Info("preparing upstream mirror", "repository", repository, "mirror", mirror)

	src, err := gitsrc.OpenOrClone(ctx, repository, mirror, gitsrc.Options{
		Cache:       cache,
		FirstParent: firstParent,
		Logger:      a.Log,
	})
	if err != nil {
		if ownRoot {
			_ = os.RemoveAll(root)
		}

		return nil, nil, err
	}

	cleanup := func() {
		if closeErr := src.Close(); closeErr != nil {
			a.Log.Warn("source close failed", "err", closeErr)
		}

		if ownRoot {
			_ = os.RemoveAll(root)
		}
	}

	if loadErr := src.Load(ctx); loadErr != nil {
		cleanup()

		return nil, nil, fmt.Errorf("load history: %w", loadErr)
	}

	return src, cleanup, nil
}

func (a *App) historyCache() (gitsrc.HistoryCache, error) {
	if !a.Config.Cache.Enabled {
		return gitsrc.NopCache{}, nil
	}

	cache, err := gitsrc.NewFileCache(a.Config.Cache.Directory, a.Log)
	if err != nil {
		return nil, fmt.Errorf("open history cache: %w", err)
	}

	return a.Telemetry.Metrics.InstrumentCache(cache), nil
}

// compareOptions maps the compare config section onto comparator options.
func (a *App) compareOptions() treecmp.Options {
	cfg := a.Config.Compare

	return treecmp.Options{
		DiffTimeout:  cfg.DiffTimeout,
		SkipPrefixes: cfg.SkipPrefixes,
		SkipVendored: cfg.SkipVendored,
		Logger:       a.Log,
	}
}
