package debsrc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultSnapshotBase is the public snapshot archive.
const DefaultSnapshotBase = "https://snapshot.debian.org"

// A RemoteFile is a component file resolved to a download URL.
type RemoteFile struct {
	Name      string
	Hash      string
	URL       string
	FirstSeen string
}

// SnapshotClient queries the snapshot.debian.org machine-readable API, which
// serves every package version ever published, including those long gone
// from the mirrors.
type SnapshotClient struct {
	base   string
	client *http.Client
	log    *slog.Logger
}

// NewSnapshotClient returns a client for the archive at base. An empty base
// selects DefaultSnapshotBase, a nil client http.DefaultClient.
func NewSnapshotClient(base string, client *http.Client, logger *slog.Logger) *SnapshotClient {
	if base == "" {
		base = DefaultSnapshotBase
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotClient{base: strings.TrimSuffix(base, "/"), client: client, log: logger}
}

type snapshotFileInfo struct {
	ArchiveName string `json:"archive_name"`
	FirstSeen   string `json:"first_seen"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
}

type srcFilesResponse struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Result  []struct {
		Hash string `json:"hash"`
	} `json:"result"`
	FileInfo map[string][]snapshotFileInfo `json:"fileinfo"`
}

// SourceFiles resolves every component of the package version to an archive
// download URL through the srcfiles endpoint with inline file info.
func (c *SnapshotClient) SourceFiles(ctx context.Context, pkg, version string) ([]RemoteFile, error) {
	endpoint := fmt.Sprintf("%s/mr/package/%s/%s/srcfiles?fileinfo=1",
		c.base, url.PathEscape(pkg), url.PathEscape(version))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query snapshot archive: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", ErrVersionNotFound, pkg, version)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query snapshot archive: unexpected status %s", resp.Status)
	}
	var decoded srcFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode snapshot response: %w", err)
	}
	if len(decoded.Result) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrVersionNotFound, pkg, version)
	}
	files := make([]RemoteFile, 0, len(decoded.Result))
	for _, r := range decoded.Result {
		infos := decoded.FileInfo[r.Hash]
		if len(infos) == 0 {
			return nil, fmt.Errorf("snapshot response lists no file info for hash %s", r.Hash)
		}
		// A hash can appear in several archives; the first sighting is the
		// canonical one.
		info := infos[0]
		files = append(files, RemoteFile{
			Name:      info.Name,
			Hash:      r.Hash,
			URL:       fmt.Sprintf("%s/archive/%s/%s%s/%s", c.base, info.ArchiveName, info.FirstSeen, info.Path, info.Name),
			FirstSeen: info.FirstSeen,
		})
		c.log.Debug("component resolved", "name", info.Name, "hash", r.Hash)
	}
	return files, nil
}
