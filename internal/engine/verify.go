package engine

import (
	"context"
	"fmt"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/fetch"
	"github.com/bianoble/mcstarter/internal/lock"
	"golang.org/x/sync/errgroup"
)

// VerifyEngine checks whether upstream artifacts have changed since the
// lockfile was written.
type VerifyEngine struct {
	Fetcher fetch.Fetcher
	Jobs    int
}

// Verify re-downloads the artifacts and compares their digests with lf.
// Nothing is written. names restricts the check; empty means every artifact.
func (e *VerifyEngine) Verify(ctx context.Context, cfg *config.Config, lf *lock.Lockfile, names []string) (*VerifyResult, error) {
	if e.Fetcher == nil {
		return nil, fmt.Errorf("verify: no fetcher configured")
	}

	byName := make(map[string]config.Artifact)
	var selected []config.Artifact
	for _, a := range cfg.Artifacts() {
		byName[a.LockName] = a
	}
	if len(names) == 0 {
		selected = cfg.Artifacts()
	}
	result := &VerifyResult{}
	for _, name := range names {
		a, ok := byName[name]
		if !ok {
			result.Errors = append(result.Errors, ArtifactError{
				Artifact: name,
				Err:      fmt.Errorf("artifact '%s' not found in config", name),
			})
			continue
		}
		selected = append(selected, a)
	}

	type outcome struct {
		digest string
		err    error
	}
	outcomes := make([]outcome, len(selected))

	var g errgroup.Group
	g.SetLimit(jobs(e.Jobs))
	for i, a := range selected {
		g.Go(func() error {
			url, err := cfg.ResolveURL(a)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			content, err := e.Fetcher.Fetch(ctx, a.LockName, url)
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].digest = cache.ComputeHash(content)
			return nil
		})
	}
	_ = g.Wait()

	for i, a := range selected {
		o := outcomes[i]
		if o.err != nil {
			result.Errors = append(result.Errors, ArtifactError{Artifact: a.LockName, Err: o.err})
			continue
		}
		locked, _ := lf.Get(a.LockName)
		if locked == o.digest {
			result.UpToDate = append(result.UpToDate, a.LockName)
			continue
		}
		result.Changed = append(result.Changed, ArtifactDelta{
			Artifact: a.LockName,
			Before:   shortDigest(locked),
			After:    shortDigest(o.digest),
		})
	}
	return result, nil
}
