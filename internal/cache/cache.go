package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bianoble/mcstarter/internal/fetch"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/jhunt/go-log"
)

// EnvDir overrides the default cache directory.
const EnvDir = "MCSTARTER_CACHE_DIR"

const tempPattern = ".tmp-*"

// Observer receives cache events. internal/metrics implements it.
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
	Fetched(name string, bytes int)
}

// Cache provides content-addressed artifact storage. Each blob lives at
// <dir>/<digest> and is written once, after its hash has been checked.
// Reads never re-verify.
type Cache struct {
	dir      string
	Fetcher  fetch.Fetcher
	Observer Observer
}

// New creates a Cache at the given directory.
// The directory is created if it does not exist.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// DefaultDir returns MCSTARTER_CACHE_DIR if set, otherwise
// <projectRoot>/.mcstarter/cache.
func DefaultDir(projectRoot string) string {
	if d := os.Getenv(EnvDir); d != "" {
		return d
	}
	return filepath.Join(projectRoot, ".mcstarter", "cache")
}

// HashMismatchError is returned when fetched bytes do not hash to the
// locked digest.
type HashMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("%s: hash mismatch: expected %s, got %s (upstream content changed; re-run 'mcstarter lock' if this is intended)",
		e.Name, e.Expected, e.Actual)
}

// EnsureResult describes the outcome of Ensure.
type EnsureResult struct {
	Path  string
	Hit   bool
	Bytes int // bytes fetched on a miss
}

// Ensure makes sure the blob for expected exists, fetching rawURL on a miss.
// Existing blobs are trusted without a network call. A mismatching download
// is never written.
func (c *Cache) Ensure(ctx context.Context, name, rawURL, expected string) (EnsureResult, error) {
	path := c.Path(expected)
	if c.Has(expected) {
		log.Debugf("cache hit for %s (%s)", name, expected)
		if c.Observer != nil {
			c.Observer.CacheHit(name)
		}
		return EnsureResult{Path: path, Hit: true}, nil
	}

	log.Debugf("cache miss for %s, fetching %s", name, rawURL)
	if c.Observer != nil {
		c.Observer.CacheMiss(name)
	}
	if c.Fetcher == nil {
		return EnsureResult{}, fmt.Errorf("%s: cache has no fetcher configured", name)
	}

	content, err := c.Fetcher.Fetch(ctx, name, rawURL)
	if err != nil {
		return EnsureResult{}, err
	}
	if c.Observer != nil {
		c.Observer.Fetched(name, len(content))
	}

	if actual := ComputeHash(content); actual != expected {
		return EnsureResult{}, &HashMismatchError{Name: name, Expected: expected, Actual: actual}
	}

	if err := c.write(expected, content); err != nil {
		return EnsureResult{}, err
	}
	log.Infof("cached %s (%d bytes)", name, len(content))
	return EnsureResult{Path: path, Bytes: len(content)}, nil
}

// Put stores content under digest after verifying that it hashes to it.
// No-op if already cached.
func (c *Cache) Put(digest string, content []byte) error {
	if actual := ComputeHash(content); actual != digest {
		return &HashMismatchError{Name: "cache put", Expected: digest, Actual: actual}
	}
	if c.Has(digest) {
		return nil
	}
	return c.write(digest, content)
}

// write places content at <dir>/<digest> through a uniquely named temp file,
// so concurrent writers of the same digest each rename a complete blob.
func (c *Cache) write(digest string, content []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.Path(digest)); err != nil {
		return fmt.Errorf("renaming cache temp file: %w", err)
	}

	success = true
	return nil
}

// Has checks if a digest exists in the cache without reading content.
func (c *Cache) Has(digest string) bool {
	info, err := os.Stat(c.Path(digest))
	return err == nil && info.Mode().IsRegular()
}

// Path returns the blob path for digest.
func (c *Cache) Path(digest string) string {
	return filepath.Join(c.dir, digest)
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Entry is a stored blob.
type Entry struct {
	Digest string
	Size   int64
}

// Entries lists the stored blobs sorted by digest. Temp files and foreign
// files are ignored.
func (c *Cache) Entries() ([]Entry, error) {
	dirents, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing cache %s: %w", c.dir, err)
	}

	var out []Entry
	for _, d := range dirents {
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || !lock.IsDigest(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("stat cache entry %s: %w", d.Name(), err)
		}
		out = append(out, Entry{Digest: d.Name(), Size: info.Size()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Digest < out[j].Digest })
	return out, nil
}

// Size returns the total size of the stored blobs in bytes.
func (c *Cache) Size() (int64, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total, nil
}

// ComputeHash computes the SHA-256 of content as lower-case hex.
func ComputeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
