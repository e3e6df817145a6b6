package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/metrics"
	"github.com/bianoble/mcstarter/internal/transform"
)

// mapFetcher serves artifact bytes from memory and counts fetches per URL.
type mapFetcher struct {
	mu      sync.Mutex
	content map[string][]byte
	calls   map[string]int
}

func newMapFetcher(content map[string]string) *mapFetcher {
	f := &mapFetcher{content: map[string][]byte{}, calls: map[string]int{}}
	for url, c := range content {
		f.content[url] = []byte(c)
	}
	return f
}

func (f *mapFetcher) Fetch(_ context.Context, artifact, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	c, ok := f.content[url]
	if !ok {
		return nil, fmt.Errorf("%s: no such url %s", artifact, url)
	}
	return c, nil
}

func (f *mapFetcher) set(url, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[url] = []byte(content)
}

func (f *mapFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// testProject is a project root with a cache, a target and a config
// with a core and two plugins whose bytes are served by fetcher.
type testProject struct {
	root    string
	target  string
	cache   *cache.Cache
	fetcher *mapFetcher
	cfg     *config.Config
	lf      *lock.Lockfile
}

func newTestProject(t *testing.T) *testProject {
	t.Helper()
	root := t.TempDir()

	fetcher := newMapFetcher(map[string]string{
		"mem://core":    "core bytes",
		"mem://economy": "economy bytes",
		"mem://chat":    "chat bytes",
	})
	c, err := cache.New(filepath.Join(root, ".mcstarter", "cache"))
	if err != nil {
		t.Fatal(err)
	}
	c.Fetcher = fetcher

	cfg := &config.Config{
		Core: config.Core{Name: "paper", Version: "1.20.4", URL: "mem://core"},
		Plugins: map[string]config.Plugin{
			"economy": {Version: "2.0", URL: "mem://economy"},
			"chat":    {URL: "mem://chat"},
		},
	}

	lf := lock.New()
	lf.Set("core", cache.ComputeHash([]byte("core bytes")))
	lf.Set("economy", cache.ComputeHash([]byte("economy bytes")))
	lf.Set("chat", cache.ComputeHash([]byte("chat bytes")))

	return &testProject{
		root:    root,
		target:  filepath.Join(root, "target"),
		cache:   c,
		fetcher: fetcher,
		cfg:     cfg,
		lf:      lf,
	}
}

func (p *testProject) builder(env map[string]string) *BuildEngine {
	return &BuildEngine{
		Cache:       p.cache,
		ProjectRoot: p.root,
		TargetDir:   p.target,
		Env:         transform.MapLookup(env),
		Metrics:     metrics.New(),
	}
}

func (p *testProject) coreFile() string {
	return "core-1.20.4-" + p.lf.Entries["core"] + ".jar"
}

func (p *testProject) economyFile() string {
	return "plugins/economy-2.0-" + p.lf.Entries["economy"] + ".jar"
}

func (p *testProject) chatFile() string {
	return "plugins/chat-" + p.lf.Entries["chat"] + ".jar"
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func actionPaths(actions []FileAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Path
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
