package debsrc_test

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitlag/pkg/debsrc"
)

func TestAcquireMirrorFlow(t *testing.T) {
	installFakeTool(t, fakeExtractor)

	mux := http.NewServeMux()
	mux.HandleFunc("/Sources", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sourcesFixture)
	})
	mux.HandleFunc("/debian/pool/main/a/acl/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "component %s", path.Base(r.URL.Path))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	work := t.TempDir()
	tree, err := debsrc.Acquire(context.Background(), debsrc.AcquireOptions{
		Package: "acl",
		Sources: srv.URL + "/Sources",
		Mirror:  srv.URL + "/debian",
		HTTP:    srv.Client(),
		WorkDir: work,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(work, "acl_2.2.52-3"), tree)
	assert.FileExists(t, filepath.Join(work, "acl_2.2.52-3.dsc"))
	assert.FileExists(t, filepath.Join(work, "acl_2.2.52.orig.tar.gz"))
	assert.FileExists(t, filepath.Join(work, "acl_2.2.52-3.debian.tar.xz"))
	assert.FileExists(t, filepath.Join(tree, "contents.txt"))
}

func TestAcquireSnapshotFlow(t *testing.T) {
	installFakeTool(t, fakeExtractor)

	mux := http.NewServeMux()
	mux.HandleFunc("/mr/package/acl/2.2.52-3/srcfiles", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, aclSrcFilesResponse)
	})
	mux.HandleFunc("/archive/debian/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "archived %s", path.Base(r.URL.Path))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	// A gzipped index on disk exercises the sniffing path end to end.
	sourcesPath := filepath.Join(t.TempDir(), "Sources.gz")
	f, err := os.Create(sourcesPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sourcesFixture))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	work := t.TempDir()
	tree, err := debsrc.Acquire(context.Background(), debsrc.AcquireOptions{
		Package:  "acl",
		Sources:  sourcesPath,
		Snapshot: debsrc.NewSnapshotClient(srv.URL, srv.Client(), quietLogger()),
		HTTP:     srv.Client(),
		WorkDir:  work,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(work, "acl_2.2.52-3"), tree)
	data, err := os.ReadFile(filepath.Join(work, "acl_2.2.52-3.dsc"))
	require.NoError(t, err)
	assert.Equal(t, "archived acl_2.2.52-3.dsc", string(data))
}

func TestAcquireUnknownPackage(t *testing.T) {
	t.Parallel()

	sourcesPath := filepath.Join(t.TempDir(), "Sources")
	require.NoError(t, os.WriteFile(sourcesPath, []byte(sourcesFixture), 0o644))

	_, err := debsrc.Acquire(context.Background(), debsrc.AcquireOptions{
		Package: "zsh",
		Sources: sourcesPath,
		Mirror:  "https://deb.debian.org/debian",
		WorkDir: t.TempDir(),
		Logger:  quietLogger(),
	})
	require.ErrorIs(t, err, debsrc.ErrPackageNotFound)
}

func TestAcquireValidation(t *testing.T) {
	t.Parallel()

	_, err := debsrc.Acquire(context.Background(), debsrc.AcquireOptions{})
	require.ErrorContains(t, err, "package name")

	_, err = debsrc.Acquire(context.Background(), debsrc.AcquireOptions{Package: "acl"})
	require.ErrorContains(t, err, "working directory")

	_, err = debsrc.Acquire(context.Background(), debsrc.AcquireOptions{Package: "acl", WorkDir: t.TempDir()})
	require.ErrorContains(t, err, "sources index location")
}

func TestAcquireBadSourcesURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := debsrc.Acquire(context.Background(), debsrc.AcquireOptions{
		Package: "acl",
		Sources: srv.URL + "/Sources",
		Mirror:  "https://deb.debian.org/debian",
		HTTP:    srv.Client(),
		WorkDir: t.TempDir(),
		Logger:  quietLogger(),
	})
	require.ErrorContains(t, err, "unexpected status")
}
