package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileFetcher reads artifacts from the local filesystem. Both
// file:///abs/path and file:relative/path are accepted; relative paths are
// resolved against BaseDir.
type FileFetcher struct {
	BaseDir string
	MaxSize int64
}

func (f *FileFetcher) Fetch(ctx context.Context, artifact, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}

	path, err := filePath(rawURL)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{Artifact: artifact, URL: rawURL, Err: err, Hint: "check that the file exists"}
	}
	defer fh.Close()

	return readLimited(fh, f.MaxSize, artifact, rawURL)
}

func filePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file url")
	}
	p := u.Path
	if u.Opaque != "" {
		p = u.Opaque
	}
	if u.Host != "" && u.Host != "localhost" {
		// file://dir/jar.jar is read as a relative path.
		p = filepath.Join(u.Host, p)
	}
	if p == "" {
		return "", fmt.Errorf("file url has no path")
	}
	return filepath.FromSlash(p), nil
}
