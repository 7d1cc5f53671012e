package debsrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// AcquireOptions configures a package acquisition end to end.
type AcquireOptions struct {
	// Package is the Debian source package name.
	Package string
	// Sources locates the Sources index: a local path or an http(s) URL.
	Sources string
	// Mirror selects direct pool downloads; see ResolveOptions.
	Mirror string
	// Snapshot overrides the default snapshot client when Mirror is empty.
	Snapshot *SnapshotClient
	// HTTP performs index and component downloads; nil means
	// http.DefaultClient.
	HTTP *http.Client
	// WorkDir receives the downloaded components and the unpacked tree.
	WorkDir string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Acquire runs the whole flow: parse the index, find the package, resolve
// and fetch its components, unpack them. It returns the unpacked tree's
// path, ready to serve as a measurement target.
func Acquire(ctx context.Context, opts AcquireOptions) (string, error) {
	if opts.Package == "" {
		return "", errors.New("acquire needs a package name")
	}
	if opts.WorkDir == "" {
		return "", errors.New("acquire needs a working directory")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	client := opts.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	in, err := openSources(ctx, client, opts.Sources)
	if err != nil {
		return "", err
	}
	records, err := ParseSources(in)
	closeErr := in.Close()
	if err != nil {
		return "", fmt.Errorf("parse sources index: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close sources index: %w", closeErr)
	}
	record, err := FindPackage(records, opts.Package)
	if err != nil {
		return "", err
	}
	log.Info("package located", "package", record.Package, "version", record.Version)
	snapshot := opts.Snapshot
	if opts.Mirror == "" && snapshot == nil {
		snapshot = NewSnapshotClient("", client, log)
	}
	files, err := Resolve(ctx, record, ResolveOptions{Mirror: opts.Mirror, Snapshot: snapshot})
	if err != nil {
		return "", err
	}
	dsc, err := Fetch(ctx, client, files, opts.WorkDir, log)
	if err != nil {
		return "", err
	}
	tree, err := Extract(ctx, dsc, opts.WorkDir)
	if err != nil {
		return "", err
	}
	log.Info("package unpacked", "package", record.Package, "version", record.Version, "tree", tree)
	return tree, nil
}

func openSources(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if location == "" {
		return nil, errors.New("acquire needs a sources index location")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("build sources request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download sources index: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download sources index: unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open sources index: %w", err)
	}
	return f, nil
}
