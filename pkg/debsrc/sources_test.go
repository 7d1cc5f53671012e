package debsrc_test

import (
	"bytes"
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitlag/pkg/debsrc"
)

const sourcesFixture = `Package: acl
Binary: acl, libacl1-dev, libacl1
Version: 2.2.52-3
Maintainer: Guillem Jover <guillem@debian.org>
Build-Depends: debhelper (>= 9), autotools-dev, libattr1-dev (>= 1:2.4.46-8), gettext
Architecture: any
Standards-Version: 3.9.8
Format: 3.0 (quilt)
Files:
 a61415312426e9c2212bd7dc7929abda 2229 acl_2.2.52-3.dsc
 179074bb0580c06c4b4137be4c5a3bb7 134597 acl_2.2.52.orig.tar.gz
 756c5fc23fc14ecf8f147112e25c0866 18652 acl_2.2.52-3.debian.tar.xz
Checksums-Sha256:
 e31d9b81d224e1cdd40bdd9e84f4b725 2229 acl_2.2.52-3.dsc
Directory: pool/main/a/acl
Priority: optional
Section: utils

Package: attr
Version: 1:2.4.47-2
Description: utilities for manipulating filesystem extended attributes
 A set of tools for manipulating extended attributes on filesystem
 objects, in particular getfattr(1) and setfattr(1).
Directory: pool/main/a/attr
Files:
 9e5d45bdcb84c5f0b9ab6fbd15017e73 2230 attr_2.4.47-2.dsc
 06f45bd2a3c5dc9b8ba8ae2dc2d921b4 343692 attr_2.4.47.orig.tar.gz
`

func TestParseSourcesTwoParagraphs(t *testing.T) {
	t.Parallel()

	records, err := debsrc.ParseSources(strings.NewReader(sourcesFixture))
	require.NoError(t, err)
	require.Len(t, records, 2)

	acl := records[0]
	assert.Equal(t, "acl", acl.Package)
	assert.Equal(t, "2.2.52-3", acl.Version)
	assert.Equal(t, "pool/main/a/acl", acl.Directory)
	require.Len(t, acl.Files, 3)
	assert.Equal(t, debsrc.FileEntry{
		Hash: "a61415312426e9c2212bd7dc7929abda",
		Size: 2229,
		Name: "acl_2.2.52-3.dsc",
	}, acl.Files[0])
	assert.Equal(t, "acl_2.2.52.orig.tar.gz", acl.Files[1].Name)
	assert.Equal(t, int64(134597), acl.Files[1].Size)

	attr := records[1]
	assert.Equal(t, "attr", attr.Package)
	assert.Equal(t, "1:2.4.47-2", attr.Version)
	assert.Equal(t, "pool/main/a/attr", attr.Directory)
	assert.Len(t, attr.Files, 2)
}

func TestParseSourcesGzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sourcesFixture))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	records, err := debsrc.ParseSources(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "acl", records[0].Package)
	assert.Equal(t, "attr", records[1].Package)
}

func TestParseSourcesEmpty(t *testing.T) {
	t.Parallel()

	records, err := debsrc.ParseSources(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseSourcesMalformedFileEntry(t *testing.T) {
	t.Parallel()

	index := "Package: broken\nFiles:\n notenoughfields\n"
	_, err := debsrc.ParseSources(strings.NewReader(index))
	require.ErrorContains(t, err, "malformed file entry")
}

func TestParseSourcesMalformedLine(t *testing.T) {
	t.Parallel()

	_, err := debsrc.ParseSources(strings.NewReader("Package broken\n"))
	require.ErrorContains(t, err, "malformed sources line")
}

func TestFindPackage(t *testing.T) {
	t.Parallel()

	records, err := debsrc.ParseSources(strings.NewReader(sourcesFixture))
	require.NoError(t, err)

	attr, err := debsrc.FindPackage(records, "attr")
	require.NoError(t, err)
	assert.Equal(t, "1:2.4.47-2", attr.Version)

	_, err = debsrc.FindPackage(records, "zsh")
	require.ErrorIs(t, err, debsrc.ErrPackageNotFound)
	assert.ErrorContains(t, err, "zsh")
}

func TestSourceRecordDSC(t *testing.T) {
	t.Parallel()

	records, err := debsrc.ParseSources(strings.NewReader(sourcesFixture))
	require.NoError(t, err)

	dsc, ok := records[0].DSC()
	require.True(t, ok)
	assert.Equal(t, "acl_2.2.52-3.dsc", dsc.Name)

	_, ok = debsrc.SourceRecord{Files: []debsrc.FileEntry{{Name: "x.tar.gz"}}}.DSC()
	assert.False(t, ok)
}
