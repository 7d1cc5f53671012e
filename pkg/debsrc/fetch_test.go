package debsrc_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitlag/pkg/debsrc"
)

func TestFetchDownloadsComponents(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/pool/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, "content of %s", path.Base(r.URL.Path))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	files := []debsrc.RemoteFile{
		{Name: "acl_2.2.52-3.dsc", URL: srv.URL + "/pool/acl_2.2.52-3.dsc"},
		{Name: "acl_2.2.52.orig.tar.gz", URL: srv.URL + "/pool/acl_2.2.52.orig.tar.gz"},
	}
	dir := t.TempDir()

	dsc, err := debsrc.Fetch(context.Background(), srv.Client(), files, dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acl_2.2.52-3.dsc"), dsc)

	data, err := os.ReadFile(dsc)
	require.NoError(t, err)
	assert.Equal(t, "content of acl_2.2.52-3.dsc", string(data))
	assert.FileExists(t, filepath.Join(dir, "acl_2.2.52.orig.tar.gz"))
	assert.EqualValues(t, 2, hits.Load())

	// Present components are not downloaded again.
	_, err = debsrc.Fetch(context.Background(), srv.Client(), files, dir, quietLogger())
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestFetchMissingDSC(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "payload")
	}))
	t.Cleanup(srv.Close)

	files := []debsrc.RemoteFile{{Name: "acl_2.2.52.orig.tar.gz", URL: srv.URL + "/x"}}
	_, err := debsrc.Fetch(context.Background(), srv.Client(), files, t.TempDir(), quietLogger())
	require.ErrorContains(t, err, "no .dsc component")
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone fishing", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	files := []debsrc.RemoteFile{{Name: "a.dsc", URL: srv.URL + "/a.dsc"}}
	_, err := debsrc.Fetch(context.Background(), srv.Client(), files, t.TempDir(), quietLogger())
	require.ErrorContains(t, err, "unexpected status")
}

func TestFetchLeavesNoPartialFiles(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	files := []debsrc.RemoteFile{{Name: "a.dsc", URL: srv.URL + "/a.dsc"}}
	_, err := debsrc.Fetch(context.Background(), srv.Client(), files, dir, quietLogger())
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
