// Package fetch downloads artifact bytes from the locations a configuration
// resolves to. Fetchers are selected by URL scheme.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Fetcher retrieves the bytes at a URL. The artifact name is used only for
// error reporting.
type Fetcher interface {
	Fetch(ctx context.Context, artifact, rawURL string) ([]byte, error)
}

// FetchError represents a failed download of a specific artifact.
type FetchError struct {
	Err      error
	Artifact string
	URL      string
	Hint     string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: fetch %s failed: %s", e.Artifact, e.URL, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Registry maps URL schemes to Fetcher implementations. It is itself a
// Fetcher that dispatches on the scheme.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry creates a new empty fetcher registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Default returns a registry with the http, https, file and s3 fetchers.
// Relative file URLs are resolved against baseDir.
func Default(baseDir string) *Registry {
	r := NewRegistry()
	h := &HTTPFetcher{}
	r.Register("http", h)
	r.Register("https", h)
	r.Register("file", &FileFetcher{BaseDir: baseDir})
	r.Register("s3", &S3Fetcher{Config: S3ConfigFromEnv()})
	return r
}

// Register adds a fetcher for the given URL scheme.
func (r *Registry) Register(scheme string, f Fetcher) {
	r.fetchers[strings.ToLower(scheme)] = f
}

// Get returns the fetcher for the given URL scheme.
func (r *Registry) Get(scheme string) (Fetcher, error) {
	f, ok := r.fetchers[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("unsupported url scheme '%s' (supported: %s)", scheme, r.schemes())
	}
	return f, nil
}

// Fetch dispatches to the fetcher registered for rawURL's scheme.
func (r *Registry) Fetch(ctx context.Context, artifact, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}
	if u.Scheme == "" {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: fmt.Errorf("url has no scheme"), Hint: "use http://, https://, file:// or s3://"}
	}
	f, err := r.Get(u.Scheme)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}
	return f.Fetch(ctx, artifact, rawURL)
}

func (r *Registry) schemes() string {
	if len(r.fetchers) == 0 {
		return "none registered"
	}
	s := make([]string, 0, len(r.fetchers))
	for k := range r.fetchers {
		s = append(s, k)
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}
