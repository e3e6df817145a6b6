package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type countingFetcher struct {
	data  []byte
	err   error
	calls atomic.Int32
}

func (f *countingFetcher) Fetch(_ context.Context, _, _ string) ([]byte, error) {
	f.calls.Add(1)
	return f.data, f.err
}

type recordingObserver struct {
	mu     sync.Mutex
	hits   int
	misses int
	bytes  int
}

func (o *recordingObserver) CacheHit(string) {
	o.mu.Lock()
	o.hits++
	o.mu.Unlock()
}

func (o *recordingObserver) CacheMiss(string) {
	o.mu.Lock()
	o.misses++
	o.mu.Unlock()
}

func (o *recordingObserver) Fetched(_ string, n int) {
	o.mu.Lock()
	o.bytes += n
	o.mu.Unlock()
}

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestPutStoresBlob(t *testing.T) {
	c := newCache(t)

	content := []byte("hello world")
	hash := ComputeHash(content)

	if c.Has(hash) {
		t.Fatal("expected cache miss before Put")
	}
	if err := c.Put(hash, content); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !c.Has(hash) {
		t.Fatal("expected cache hit after Put")
	}

	if c.Path(hash) != filepath.Join(c.Dir(), hash) {
		t.Errorf("Path = %q, want flat layout", c.Path(hash))
	}
	got, err := os.ReadFile(c.Path(hash))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("got %q", string(got))
	}
}

func TestPutWrongHash(t *testing.T) {
	c := newCache(t)
	wrong := ComputeHash([]byte("other"))

	err := c.Put(wrong, []byte("content"))
	var mismatch *HashMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected HashMismatchError, got %v", err)
	}
	if c.Has(wrong) {
		t.Error("mismatching content must not be stored")
	}
}

func TestPutIdempotent(t *testing.T) {
	c := newCache(t)
	content := []byte("idempotent")
	hash := ComputeHash(content)

	for i := 0; i < 2; i++ {
		if err := c.Put(hash, content); err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
	}
}

func TestEnsureFetchesOnce(t *testing.T) {
	c := newCache(t)
	f := &countingFetcher{data: []byte("core jar")}
	obs := &recordingObserver{}
	c.Fetcher = f
	c.Observer = obs
	digest := ComputeHash(f.data)

	first, err := c.Ensure(context.Background(), "core", "https://x/core.jar", digest)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if first.Hit {
		t.Error("first Ensure should be a miss")
	}
	if first.Bytes != len(f.data) {
		t.Errorf("bytes = %d", first.Bytes)
	}

	second, err := c.Ensure(context.Background(), "core", "https://x/core.jar", digest)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if !second.Hit {
		t.Error("second Ensure should be a hit")
	}
	if f.calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls.Load())
	}
	if obs.hits != 1 || obs.misses != 1 || obs.bytes != len(f.data) {
		t.Errorf("observer = %+v", obs)
	}

	data, err := os.ReadFile(second.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "core jar" {
		t.Errorf("blob = %q", data)
	}
}

func TestEnsureTrustsExistingBlob(t *testing.T) {
	c := newCache(t)
	f := &countingFetcher{data: []byte("fresh")}
	c.Fetcher = f
	digest := ComputeHash([]byte("fresh"))

	// Blobs in the cache are trusted without re-hashing.
	if err := os.WriteFile(c.Path(digest), []byte("planted"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := c.Ensure(context.Background(), "core", "https://x", digest)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Hit || f.calls.Load() != 0 {
		t.Errorf("expected hit without fetch, got %+v calls=%d", res, f.calls.Load())
	}
}

func TestEnsureHashMismatchLeavesNoFile(t *testing.T) {
	c := newCache(t)
	c.Fetcher = &countingFetcher{data: []byte("tampered")}
	expected := ComputeHash([]byte("original"))

	_, err := c.Ensure(context.Background(), "economy", "https://x/eco.jar", expected)
	var mismatch *HashMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected HashMismatchError, got %v", err)
	}
	if mismatch.Name != "economy" || mismatch.Expected != expected || mismatch.Actual != ComputeHash([]byte("tampered")) {
		t.Errorf("mismatch = %+v", mismatch)
	}
	if _, err := os.Stat(c.Path(expected)); !os.IsNotExist(err) {
		t.Error("no blob should exist after a mismatch")
	}

	dirents, _ := os.ReadDir(c.Dir())
	if len(dirents) != 0 {
		t.Errorf("cache dir should be empty, has %d entries", len(dirents))
	}
}

func TestEnsureFetchError(t *testing.T) {
	c := newCache(t)
	c.Fetcher = &countingFetcher{err: errors.New("offline")}

	_, err := c.Ensure(context.Background(), "core", "https://x", ComputeHash([]byte("x")))
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestEnsureWithoutFetcher(t *testing.T) {
	c := newCache(t)
	if _, err := c.Ensure(context.Background(), "core", "https://x", ComputeHash([]byte("x"))); err == nil {
		t.Fatal("expected error without fetcher")
	}
}

func TestEnsureConcurrentSameDigest(t *testing.T) {
	c := newCache(t)
	f := &countingFetcher{data: []byte(strings.Repeat("plugin ", 4096))}
	c.Fetcher = f
	digest := ComputeHash(f.data)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Ensure(context.Background(), "plugin", "https://x", digest); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Ensure: %v", err)
	}

	data, err := os.ReadFile(c.Path(digest))
	if err != nil {
		t.Fatal(err)
	}
	if ComputeHash(data) != digest {
		t.Error("blob content does not match its digest")
	}
	entries, err := c.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestHas(t *testing.T) {
	c := newCache(t)
	content := []byte("exists")
	hash := ComputeHash(content)

	if c.Has(hash) {
		t.Fatal("expected Has=false before Put")
	}
	if err := c.Put(hash, content); err != nil {
		t.Fatal(err)
	}
	if !c.Has(hash) {
		t.Fatal("expected Has=true after Put")
	}
}

func TestEntriesAndSize(t *testing.T) {
	c := newCache(t)
	for _, s := range []string{"one", "three"} {
		if err := c.Put(ComputeHash([]byte(s)), []byte(s)); err != nil {
			t.Fatal(err)
		}
	}
	// Foreign files and temp files are ignored.
	if err := os.WriteFile(filepath.Join(c.Dir(), "README"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), ".tmp-123"), []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Digest > entries[1].Digest {
		t.Error("entries should be sorted")
	}

	size, err := c.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len("one")+len("three")) {
		t.Errorf("size = %d, want 8", size)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv(EnvDir, "")
	root := t.TempDir()
	if got := DefaultDir(root); got != filepath.Join(root, ".mcstarter", "cache") {
		t.Errorf("DefaultDir = %q", got)
	}

	t.Setenv(EnvDir, "/custom/cache")
	if got := DefaultDir(root); got != "/custom/cache" {
		t.Errorf("with %s: got %q", EnvDir, got)
	}
}

func TestComputeHash(t *testing.T) {
	got := ComputeHash([]byte("test"))
	want := "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	if got != want {
		t.Errorf("ComputeHash = %q, want %q", got, want)
	}
}
