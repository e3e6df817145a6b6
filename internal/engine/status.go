package engine

import (
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/target"
)

// ArtifactStatus represents the state of a single artifact.
type ArtifactStatus struct {
	Name    string
	Version string
	Locator string // "url", "source <name>" or "unresolvable"
	URL     string
	Digest  string // empty when not locked
	Cached  bool
	Staged  bool
	// Path is the target-relative jar path; empty when not locked.
	Path string
}

// StatusResult holds the status of every artifact.
type StatusResult struct {
	Artifacts []ArtifactStatus
}

// StatusEngine reports per-artifact lock, cache and target state.
type StatusEngine struct {
	Cache     *cache.Cache
	TargetDir string
}

// Status reports the state of every artifact in cfg. Missing lock entries are
// reported, not returned as errors.
func (e *StatusEngine) Status(cfg *config.Config, lf *lock.Lockfile) (*StatusResult, error) {
	check := &CheckEngine{TargetDir: e.TargetDir}
	result := &StatusResult{}

	for _, a := range cfg.Artifacts() {
		loc := cfg.Locate(a)
		st := ArtifactStatus{
			Name:    a.LockName,
			Version: a.Version,
			Locator: loc.Kind.String(),
			URL:     loc.URL,
		}
		if loc.Kind == config.TemplatedFromSource {
			st.Locator += " " + loc.Source
		}

		if digest, err := lf.Get(a.LockName); err == nil {
			st.Digest = digest
			if e.Cache != nil {
				st.Cached = e.Cache.Has(digest)
			}
			if a.IsCore {
				st.Path = target.CoreFileName(cfg.Core, digest)
			} else {
				st.Path = filepath.ToSlash(target.PluginPath(target.PluginFileName(a.Name, a.Version, digest)))
			}
			st.Staged = check.Staged(filepath.FromSlash(st.Path))
		}
		result.Artifacts = append(result.Artifacts, st)
	}
	return result, nil
}
