package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFetcherAbsolute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core.jar")
	require.NoError(t, os.WriteFile(path, []byte("local core"), 0o644))

	got, err := (&FileFetcher{}).Fetch(context.Background(), "core", "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "local core", string(got))
}

func TestFileFetcherRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "jars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jars", "eco.jar"), []byte("eco"), 0o644))

	f := &FileFetcher{BaseDir: dir}
	for _, u := range []string{"file:jars/eco.jar", "file://jars/eco.jar"} {
		got, err := f.Fetch(context.Background(), "eco", u)
		require.NoError(t, err, u)
		assert.Equal(t, "eco", string(got), u)
	}
}

func TestFileFetcherMissing(t *testing.T) {
	_, err := (&FileFetcher{BaseDir: t.TempDir()}).Fetch(context.Background(), "eco", "file:nope.jar")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileFetcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&FileFetcher{}).Fetch(ctx, "eco", "file:///tmp/x.jar")
	assert.ErrorIs(t, err, context.Canceled)
}
