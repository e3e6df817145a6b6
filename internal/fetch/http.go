package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads artifacts over HTTP(S).
type HTTPFetcher struct {
	Client    HTTPClient
	UserAgent string
	MaxSize   int64         // max artifact size in bytes (0 = no limit)
	Timeout   time.Duration // per-fetch timeout (0 = context only)
}

func (h *HTTPFetcher) Fetch(ctx context.Context, artifact, rawURL string) ([]byte, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	ua := h.UserAgent
	if ua == "" {
		ua = "mcstarter"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err, Hint: "check network connectivity and the URL"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Artifact: artifact,
			URL:      rawURL,
			Err:      fmt.Errorf("HTTP %d", resp.StatusCode),
			Hint:     "check the version and the source template",
		}
	}

	return readLimited(resp.Body, h.MaxSize, artifact, rawURL)
}

func readLimited(r io.Reader, max int64, artifact, rawURL string) ([]byte, error) {
	if max > 0 {
		r = io.LimitReader(r, max+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}
	if max > 0 && int64(len(content)) > max {
		return nil, &FetchError{
			Artifact: artifact,
			URL:      rawURL,
			Err:      fmt.Errorf("artifact exceeds max size %d bytes", max),
		}
	}
	return content, nil
}
