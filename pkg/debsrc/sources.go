package debsrc

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// gzipMagic is the two-byte header of a gzip stream.
var gzipMagic = []byte{0x1f, 0x8b}

// ParseSources reads a Debian Sources index, plain or gzip-compressed, and
// returns one record per source-package paragraph. Fields other than
// Package, Version, Directory and Files are ignored.
func ParseSources(r io.Reader) ([]SourceRecord, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(gzipMagic)); bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return parseParagraphs(gz)
	}
	return parseParagraphs(br)
}

func parseParagraphs(r io.Reader) ([]SourceRecord, error) {
	var (
		records []SourceRecord
		current SourceRecord
		inFiles bool
	)
	flush := func() {
		if current.Package != "" {
			records = append(records, current)
		}
		current = SourceRecord{}
		inFiles = false
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case line[0] == ' ' || line[0] == '\t':
			if !inFiles {
				continue
			}
			entry, err := parseFileEntry(line)
			if err != nil {
				return nil, err
			}
			current.Files = append(current.Files, entry)
		default:
			inFiles = false
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("malformed sources line %q", line)
			}
			value = strings.TrimSpace(value)
			switch key {
			case "Package":
				current.Package = value
			case "Version":
				current.Version = value
			case "Directory":
				current.Directory = value
			case "Files":
				inFiles = true
				if value != "" {
					entry, err := parseFileEntry(value)
					if err != nil {
						return nil, err
					}
					current.Files = append(current.Files, entry)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sources index: %w", err)
	}
	flush()
	return records, nil
}

// parseFileEntry splits one "checksum size name" line of a Files field.
func parseFileEntry(line string) (FileEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return FileEntry{}, fmt.Errorf("malformed file entry %q", strings.TrimSpace(line))
	}
	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return FileEntry{}, fmt.Errorf("malformed file size in %q: %w", strings.TrimSpace(line), err)
	}
	return FileEntry{Hash: fields[0], Size: size, Name: fields[2]}, nil
}
