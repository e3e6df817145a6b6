package engine

import (
	"context"
	"fmt"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/fetch"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/metrics"
	"github.com/jhunt/go-log"
	"golang.org/x/sync/errgroup"
)

// DefaultJobs is the number of concurrent fetches used when Jobs is unset.
const DefaultJobs = 4

// LockEngine computes a fresh lockfile by downloading and hashing every
// artifact.
type LockEngine struct {
	Fetcher fetch.Fetcher
	// Cache, if set, receives every downloaded artifact so a following
	// build does not fetch it again.
	Cache   *cache.Cache
	Metrics *metrics.Recorder
	Jobs    int
}

// Lock downloads every artifact in cfg and returns a complete new lockfile.
// previous may be nil; it is only used to report what changed. The caller
// saves the result.
func (e *LockEngine) Lock(ctx context.Context, cfg *config.Config, previous *lock.Lockfile) (*LockResult, error) {
	if e.Fetcher == nil {
		return nil, fmt.Errorf("lock: no fetcher configured")
	}
	artifacts := cfg.Artifacts()
	digests := make([]string, len(artifacts))

	urls := make([]string, len(artifacts))
	for i, a := range artifacts {
		url, err := cfg.ResolveURL(a)
		if err != nil {
			return nil, err
		}
		urls[i] = url
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs(e.Jobs))
	for i, a := range artifacts {
		url := urls[i]
		g.Go(func() error {
			log.Debugf("locking %s from %s", a.LockName, url)
			content, err := e.Fetcher.Fetch(gctx, a.LockName, url)
			if err != nil {
				return err
			}
			e.Metrics.Fetched(a.LockName, len(content))

			digest := cache.ComputeHash(content)
			if e.Cache != nil {
				if err := e.Cache.Put(digest, content); err != nil {
					return fmt.Errorf("%s: caching: %w", a.LockName, err)
				}
			}
			digests[i] = digest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &LockResult{Lockfile: lock.New()}
	for i, a := range artifacts {
		result.Lockfile.Set(a.LockName, digests[i])

		before, _ := previous.Get(a.LockName)
		if before == digests[i] {
			result.Unchanged = append(result.Unchanged, a.LockName)
			continue
		}
		result.Changed = append(result.Changed, ArtifactDelta{
			Artifact: a.LockName,
			Before:   shortDigest(before),
			After:    shortDigest(digests[i]),
		})
	}
	log.Infof("locked %d artifacts (%d changed)", len(artifacts), len(result.Changed))
	return result, nil
}

func jobs(n int) int {
	if n <= 0 {
		return DefaultJobs
	}
	return n
}
