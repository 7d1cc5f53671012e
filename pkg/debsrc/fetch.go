package debsrc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetch downloads every component into destDir and returns the local path of
// the .dsc file. Components already present are kept; archive contents are
// immutable, so a matching name is a finished download.
func Fetch(ctx context.Context, client *http.Client, files []RemoteFile, destDir string, logger *slog.Logger) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	dsc := ""
	for _, f := range files {
		path := filepath.Join(destDir, f.Name)
		if strings.HasSuffix(f.Name, ".dsc") {
			dsc = path
		}
		if _, err := os.Stat(path); err == nil {
			logger.Debug("component already present", "name", f.Name)
			continue
		}
		if err := download(ctx, client, f.URL, path); err != nil {
			return "", err
		}
		logger.Debug("component downloaded", "name", f.Name, "url", f.URL)
	}
	if dsc == "" {
		return "", fmt.Errorf("no .dsc component among %d resolved files", len(files))
	}
	return dsc, nil
}

func download(ctx context.Context, client *http.Client, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}
	// Write through a temp name so an interrupted download never passes for
	// a finished component.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create download temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
