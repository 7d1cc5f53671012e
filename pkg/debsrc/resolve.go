package debsrc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ResolveOptions selects where component files are downloaded from.
type ResolveOptions struct {
	// Mirror is a Debian archive base URL, for example
	// https://deb.debian.org/debian. When set, components resolve to plain
	// pool URLs under the record's Directory.
	Mirror string
	// Snapshot serves versions that are no longer on the mirror. Used when
	// Mirror is empty.
	Snapshot *SnapshotClient
}

// Resolve maps a source record's component files to download URLs.
func Resolve(ctx context.Context, record SourceRecord, opts ResolveOptions) ([]RemoteFile, error) {
	if opts.Mirror != "" {
		if record.Directory == "" {
			return nil, fmt.Errorf("record %s carries no pool directory", record.Package)
		}
		base := strings.TrimSuffix(opts.Mirror, "/")
		files := make([]RemoteFile, 0, len(record.Files))
		for _, f := range record.Files {
			files = append(files, RemoteFile{
				Name: f.Name,
				Hash: f.Hash,
				URL:  base + "/" + record.Directory + "/" + f.Name,
			})
		}
		return files, nil
	}
	if opts.Snapshot == nil {
		return nil, errors.New("resolve needs a mirror base or a snapshot client")
	}
	return opts.Snapshot.SourceFiles(ctx, record.Package, record.Version)
}
