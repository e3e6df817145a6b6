// Package mcstarter provides the public Go library API for mcstarter.
//
// mcstarter builds a Minecraft-style server directory from a layered
// configuration and a lockfile of artifact digests. This package exposes a
// client for embedding those operations in other Go programs.
//
// # Basic Usage
//
//	client, err := mcstarter.New(mcstarter.Options{
//	    ProjectRoot: "/path/to/server",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record the digest of every artifact
//	lockResult, err := client.Lock(ctx)
//
//	// Stage the server into target/
//	buildResult, err := client.Build(ctx)
//
//	// Check for drift
//	checkResult, err := client.Check(ctx)
package mcstarter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/bianoble/mcstarter/internal/fetch"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/metrics"
	"github.com/bianoble/mcstarter/internal/target"
	"github.com/bianoble/mcstarter/internal/transform"
)

// Fetcher downloads artifact bytes.
type Fetcher = fetch.Fetcher

// Lookup resolves ${NAME} placeholders.
type Lookup = transform.Lookup

// Locker computes and saves a fresh lockfile.
type Locker interface {
	Lock(ctx context.Context) (*LockResult, error)
}

// Builder stages the server into the target directory.
type Builder interface {
	Build(ctx context.Context) (*BuildResult, error)
}

// Checker detects drift between the target and the lockfile.
type Checker interface {
	Check(ctx context.Context) (*CheckResult, error)
}

// Verifier checks whether upstream artifacts changed since the lockfile was written.
type Verifier interface {
	Verify(ctx context.Context, names []string) (*VerifyResult, error)
}

// Options configures an mcstarter client.
type Options struct {
	// ProjectRoot is the directory containing mcstarter.yml.
	// If empty, defaults to the directory containing ConfigPath.
	ProjectRoot string

	// ConfigPath is the path to the config file. Default: <root>/mcstarter.yml.
	ConfigPath string

	// LockfilePath is the path to the lockfile. Default: <root>/mcstarter.lock.
	LockfilePath string

	// CacheDir is the cache directory. If empty, uses cache.DefaultDir.
	CacheDir string

	// TargetDir is the build target. Default: <root>/target.
	TargetDir string

	// Fetcher overrides the default http/https/file/s3 fetchers.
	Fetcher Fetcher

	// Env resolves placeholders in build-time config and files. Nil means
	// the process environment followed by <root>/.env.
	Env Lookup

	// Jobs limits concurrent downloads. Zero means engine.DefaultJobs.
	Jobs int
}

// Client is the main entry point for the mcstarter library.
// It implements Locker, Builder, Checker and Verifier.
type Client struct {
	fetcher      Fetcher
	cache        *cache.Cache
	metrics      *metrics.Recorder
	env          Lookup
	jobs         int
	projectRoot  string
	configPath   string
	lockfilePath string
	targetDir    string
}

// New creates a new mcstarter Client.
func New(opts Options) (*Client, error) {
	root := opts.ProjectRoot
	if root == "" {
		if opts.ConfigPath == "" {
			root = "."
		} else {
			root = filepath.Dir(opts.ConfigPath)
		}
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(root, config.FileName)
	}
	if opts.LockfilePath == "" {
		opts.LockfilePath = filepath.Join(root, lock.FileName)
	}
	if opts.TargetDir == "" {
		opts.TargetDir = filepath.Join(root, target.DefaultDir)
	}
	targetDir, err := filepath.Abs(opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target: %w", err)
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir(root)
	}
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}
	c, err := cache.New(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}

	f := opts.Fetcher
	if f == nil {
		f = fetch.Default(root)
	}
	m := metrics.New()
	c.Fetcher = f
	c.Observer = m

	return &Client{
		fetcher:      f,
		cache:        c,
		metrics:      m,
		env:          opts.Env,
		jobs:         opts.Jobs,
		projectRoot:  root,
		configPath:   opts.ConfigPath,
		lockfilePath: opts.LockfilePath,
		targetDir:    targetDir,
	}, nil
}

// loadConfig resolves the configuration. Lock, download and verify see the
// raw configuration; build-time operations see it substituted.
func (c *Client) loadConfig(substitute bool) (*config.Config, error) {
	res, err := config.Resolve(config.ResolveOptions{
		Path:       c.configPath,
		Substitute: substitute,
		Env:        c.env,
	})
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// loadLockfile returns an empty lockfile when none exists yet.
func (c *Client) loadLockfile() (*lock.Lockfile, error) {
	lf, err := lock.Load(c.lockfilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return lock.New(), nil
	}
	return lf, err
}

func (c *Client) load(substitute bool) (*config.Config, *lock.Lockfile, error) {
	cfg, err := c.loadConfig(substitute)
	if err != nil {
		return nil, nil, err
	}
	lf, err := c.loadLockfile()
	if err != nil {
		return nil, nil, err
	}
	return cfg, lf, nil
}

// Lock downloads every artifact, records its digest and saves the lockfile.
func (c *Client) Lock(ctx context.Context) (*LockResult, error) {
	cfg, previous, err := c.load(false)
	if err != nil {
		return nil, err
	}

	eng := &engine.LockEngine{
		Fetcher: c.fetcher,
		Cache:   c.cache,
		Metrics: c.metrics,
		Jobs:    c.jobs,
	}
	result, err := eng.Lock(ctx, cfg, previous)
	if err != nil {
		return nil, err
	}
	if err := lock.Save(c.lockfilePath, result.Lockfile); err != nil {
		return nil, fmt.Errorf("saving lockfile: %w", err)
	}
	return result, nil
}

// Download fills the cache with every locked artifact.
func (c *Client) Download(ctx context.Context) (*DownloadResult, error) {
	cfg, lf, err := c.load(false)
	if err != nil {
		return nil, err
	}
	eng := &engine.DownloadEngine{Cache: c.cache, Jobs: c.jobs}
	return eng.Download(ctx, cfg, lf)
}

// Build stages the server into the target directory.
func (c *Client) Build(ctx context.Context) (*BuildResult, error) {
	cfg, lf, err := c.load(true)
	if err != nil {
		return nil, err
	}
	eng := &engine.BuildEngine{
		Cache:       c.cache,
		ProjectRoot: c.projectRoot,
		TargetDir:   c.targetDir,
		Env:         c.env,
		Metrics:     c.metrics,
	}
	return eng.Build(ctx, cfg, lf)
}

// Check reports drift between the target directory and the lockfile.
func (c *Client) Check(ctx context.Context) (*CheckResult, error) {
	cfg, lf, err := c.load(true)
	if err != nil {
		return nil, err
	}
	eng := &engine.CheckEngine{TargetDir: c.targetDir}
	return eng.Check(cfg, lf)
}

// Verify checks whether upstream artifacts changed since the lockfile was
// written. names restricts the check; empty means every artifact.
func (c *Client) Verify(ctx context.Context, names []string) (*VerifyResult, error) {
	cfg, lf, err := c.load(false)
	if err != nil {
		return nil, err
	}
	eng := &engine.VerifyEngine{Fetcher: c.fetcher, Jobs: c.jobs}
	return eng.Verify(ctx, cfg, lf, names)
}

// Status reports lock, cache and target state per artifact.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	cfg, lf, err := c.load(false)
	if err != nil {
		return nil, err
	}
	eng := &engine.StatusEngine{Cache: c.cache, TargetDir: c.targetDir}
	return eng.Status(cfg, lf)
}

// LaunchPlan returns the command that starts the built server. extra is
// split with shell quoting rules and placed before -jar.
func (c *Client) LaunchPlan(extra string) (*Launch, error) {
	cfg, lf, err := c.load(true)
	if err != nil {
		return nil, err
	}
	return engine.LaunchPlan(cfg, lf, c.targetDir, extra)
}

// WriteMetrics writes the counters collected by this client in the
// Prometheus textfile format.
func (c *Client) WriteMetrics(path string) error {
	return c.metrics.WriteFile(path)
}
