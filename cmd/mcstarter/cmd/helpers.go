package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/fetch"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/target"
	"github.com/jhunt/go-ansi"
)

// resolveConfig reads, merges and validates the config file. Build-time
// commands substitute ${NAME} placeholders; lock, download and verify do not.
func resolveConfig(substitute bool) (*config.Result, error) {
	res, err := config.Resolve(config.ResolveOptions{Path: configPath, Substitute: substitute})
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return res, nil
}

// loadConfig returns the resolved configuration.
func loadConfig(substitute bool) (*config.Config, error) {
	res, err := resolveConfig(substitute)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// loadLockfile reads the lockfile if it exists. Returns an empty lockfile if missing.
func loadLockfile() (*lock.Lockfile, error) {
	lf, err := lock.Load(lockfilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return lock.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading lockfile %s: %w", lockfilePath, err)
	}
	return lf, nil
}

// saveLockfile writes the lockfile atomically.
func saveLockfile(lf *lock.Lockfile) error {
	return lock.Save(lockfilePath, lf)
}

// projectRoot returns the directory containing the config file.
func projectRoot() (string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return filepath.Dir(abs), nil
}

// targetDir returns the absolute build target: the first argument, then
// MCSTARTER_TARGET, then <project>/target.
func targetDir(args []string) (string, error) {
	dir := defaults.Target
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		root, err := projectRoot()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, target.DefaultDir)
	}
	return filepath.Abs(dir)
}

// newFetcher returns the fetchers for every supported URL scheme. Relative
// file:// URLs resolve against the project root.
func newFetcher() (fetch.Fetcher, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	return fetch.Default(root), nil
}

// newCache creates or opens the content-addressed cache, wired to the
// fetchers and to the run metrics.
func newCache() (*cache.Cache, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	dir := cacheDir
	if dir == "" {
		dir = cache.DefaultDir(root)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}

	c, err := cache.New(dir)
	if err != nil {
		return nil, err
	}
	c.Fetcher = fetch.Default(root)
	c.Observer = runMetrics
	return c, nil
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		ansi.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		ansi.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	ansi.Fprintf(os.Stderr, "@R{error:} "+format+"\n", args...)
}

func humanSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
