package engine

import (
	"context"
	"fmt"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"golang.org/x/sync/errgroup"
)

// DownloadEngine fills the cache with every locked artifact.
type DownloadEngine struct {
	Cache *cache.Cache
	Jobs  int
}

// Download ensures every artifact of cfg is cached under its locked digest.
// Artifacts are fetched concurrently; each one only touches its own blob.
func (e *DownloadEngine) Download(ctx context.Context, cfg *config.Config, lf *lock.Lockfile) (*DownloadResult, error) {
	if e.Cache == nil {
		return nil, fmt.Errorf("download: no cache configured")
	}
	artifacts := cfg.Artifacts()
	results := make([]cache.EnsureResult, len(artifacts))

	// Resolve everything up front so a missing entry fails before any fetch.
	urls := make([]string, len(artifacts))
	digests := make([]string, len(artifacts))
	for i, a := range artifacts {
		digest, err := lf.Get(a.LockName)
		if err != nil {
			return nil, err
		}
		url, err := cfg.ResolveURL(a)
		if err != nil {
			return nil, err
		}
		urls[i], digests[i] = url, digest
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs(e.Jobs))
	for i, a := range artifacts {
		g.Go(func() error {
			res, err := e.Cache.Ensure(gctx, a.LockName, urls[i], digests[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &DownloadResult{}
	for i, a := range artifacts {
		if results[i].Hit {
			result.Hits = append(result.Hits, a.LockName)
		} else {
			result.Fetched = append(result.Fetched, a.LockName)
			result.Bytes += int64(results[i].Bytes)
		}
	}
	return result, nil
}
