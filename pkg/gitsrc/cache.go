package gitsrc

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/gitlag/pkg/persist"
	"github.com/Sumatoshi-tech/gitlag/pkg/safeconv"
	"github.com/Sumatoshi-tech/gitlag/pkg/units"
)

// HistoryCache resolves previously loaded commit histories. Lookup
// returns false on any miss, including corrupt or incomplete entries.
// Store must only be called with the full history of the repository.
type HistoryCache interface {
	Lookup(repository string) ([]Commit, bool)
	Store(repository string, commits []Commit) error
}

// NopCache is a HistoryCache that never hits and never stores.
type NopCache struct{}

// Lookup implements HistoryCache. It always misses.
func (NopCache) Lookup(string) ([]Commit, bool) { return nil, false }

// Store implements HistoryCache. It discards the history.
func (NopCache) Store(string, []Commit) error { return nil }

// historyRecord is the persisted cache payload.
type historyRecord struct {
	Repository string   `json:"repository"`
	Complete   bool     `json:"complete"`
	Commits    []Commit `json:"commits"`
}

// cacheExtension is appended to the hashed repository name.
const cacheExtension = ".lag.lz4"

// sizeHeaderLen is the length of the uncompressed-size prefix framing
// each cache file.
const sizeHeaderLen = 8

// maxPayloadSize bounds the declared size of a decompressed payload.
const maxPayloadSize = 512 * units.MiB

// DefaultCacheDir returns the default history cache directory
// (~/.gitlag/history).
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".gitlag", "history")
}

// repoKey computes a short hash of the repository name for use as file name.
func repoKey(repository string) string {
	h := sha256.Sum256([]byte(repository))

	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars.
}

// FileCache stores one lz4-compressed JSON payload per repository under
// a directory, keyed by a short hash of the repository name.
type FileCache struct {
	dir   string
	codec persist.Codec
	log   *slog.Logger
}

// NewFileCache creates a FileCache rooted at dir, creating the directory
// when missing. An empty dir selects DefaultCacheDir.
func NewFileCache(dir string, logger *slog.Logger) (*FileCache, error) {
	if dir == "" {
		dir = DefaultCacheDir()
	}

	if logger == nil {
		logger = slog.Default()
	}

	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &FileCache{dir: dir, codec: &persist.JSONCodec{}, log: logger}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

// Path returns the cache file path for a repository.
func (c *FileCache) Path(repository string) string {
	return filepath.Join(c.dir, repoKey(repository)+cacheExtension)
}

// Lookup implements HistoryCache. Corrupt, incomplete, or mismatched
// entries count as misses and are reported at debug level only.
func (c *FileCache) Lookup(repository string) ([]Commit, bool) {
	path := c.Path(repository)

	record, err := readRecord(path, c.codec)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Debug("history cache miss", "path", path, "err", err)
		}

		return nil, false
	}

	if !record.Complete || record.Repository != repository {
		c.log.Debug("history cache miss", "path", path, "complete", record.Complete)

		return nil, false
	}

	return record.Commits, true
}

// Store implements HistoryCache. The payload is written atomically
// through a temporary file in the cache directory.
func (c *FileCache) Store(repository string, commits []Commit) error {
	record := historyRecord{
		Repository: repository,
		Complete:   true,
		Commits:    commits,
	}

	buf := new(bytes.Buffer)

	err := c.codec.Encode(buf, record)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	compressed, err := compressPayload(buf.Bytes())
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "history-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	_, writeErr := tmp.Write(compressed)

	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("write cache file: %w", writeErr)
	}

	if closeErr != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("close cache file: %w", closeErr)
	}

	renameErr := os.Rename(tmp.Name(), c.Path(repository))
	if renameErr != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("rename cache file: %w", renameErr)
	}

	return nil
}

// Clear removes every cache entry under the cache directory.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("list cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheExtension) {
			continue
		}

		removeErr := os.Remove(filepath.Join(c.dir, entry.Name()))
		if removeErr != nil {
			return fmt.Errorf("remove cache entry: %w", removeErr)
		}
	}

	return nil
}

// EntryInfo describes one inspected cache entry.
type EntryInfo struct {
	Path       string
	Repository string
	Complete   bool
	Commits    int
	Err        error
}

// Verify decodes and validates every entry under the cache directory.
func (c *FileCache) Verify() ([]EntryInfo, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	var infos []EntryInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), cacheExtension) {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())

		info := EntryInfo{Path: path}

		record, inspectErr := readRecord(path, c.codec)
		if inspectErr != nil {
			info.Err = inspectErr
		} else {
			info.Repository = record.Repository
			info.Complete = record.Complete
			info.Commits = len(record.Commits)
		}

		infos = append(infos, info)
	}

	return infos, nil
}

// readRecord reads, decompresses, schema-validates, and decodes one
// cache file.
func readRecord(path string, codec persist.Codec) (historyRecord, error) {
	var record historyRecord

	compressed, err := os.ReadFile(path)
	if err != nil {
		return record, err
	}

	raw, err := decompressPayload(compressed)
	if err != nil {
		return record, err
	}

	validateErr := validatePayload(raw)
	if validateErr != nil {
		return record, validateErr
	}

	decodeErr := codec.Decode(bytes.NewReader(raw), &record)
	if decodeErr != nil {
		return record, decodeErr
	}

	return record, nil
}

// compressPayload frames raw as an 8-byte little-endian uncompressed
// size followed by one lz4 block. Payloads the block codec cannot shrink
// are stored raw; the reader detects that case by the body length
// matching the declared size.
func compressPayload(raw []byte) ([]byte, error) {
	buf := make([]byte, sizeHeaderLen+lz4.CompressBlockBound(len(raw)))
	binary.LittleEndian.PutUint64(buf, safeconv.MustIntToUint64(len(raw)))

	written, err := lz4.CompressBlock(raw, buf[sizeHeaderLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("compress history: %w", err)
	}

	if written == 0 || written >= len(raw) {
		return append(buf[:sizeHeaderLen], raw...), nil
	}

	return buf[:sizeHeaderLen+written], nil
}

// decompressPayload reverses compressPayload, bounding the declared size.
func decompressPayload(data []byte) ([]byte, error) {
	if len(data) < sizeHeaderLen {
		return nil, fmt.Errorf("%w: payload shorter than size header", ErrCacheInvalid)
	}

	size := binary.LittleEndian.Uint64(data)
	if size > maxPayloadSize {
		return nil, fmt.Errorf("%w: declared size %d exceeds limit", ErrCacheInvalid, size)
	}

	body := data[sizeHeaderLen:]
	raw := make([]byte, safeconv.MustUint64ToInt(size))

	if len(body) == len(raw) {
		copy(raw, body)

		return raw, nil
	}

	_, err := lz4.UncompressBlock(body, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}

	return raw, nil
}
