package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bianoble/mcstarter/internal/assemble"
	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/metrics"
	"github.com/bianoble/mcstarter/internal/sandbox"
	"github.com/bianoble/mcstarter/internal/target"
	"github.com/bianoble/mcstarter/internal/transform"
	"github.com/jhunt/go-log"
)

const jarPerm os.FileMode = 0644

// BuildEngine stages a server into a target directory from a configuration
// and its lockfile.
type BuildEngine struct {
	Cache       *cache.Cache
	ProjectRoot string
	TargetDir   string
	// Env resolves ${NAME} placeholders in assembled files. Nil means the
	// process environment followed by <ProjectRoot>/.env.
	Env     transform.Lookup
	Metrics *metrics.Recorder
}

// Build ensures every artifact is cached, stages the core and plugin jars,
// prunes stale ones and assembles the project files into the target.
// Every phase derives its state from cfg and lf, so a failed build can
// simply be re-run. The lockfile is never modified.
func (e *BuildEngine) Build(ctx context.Context, cfg *config.Config, lf *lock.Lockfile) (*BuildResult, error) {
	start := time.Now()
	if e.Cache == nil {
		return nil, fmt.Errorf("build: no cache configured")
	}

	// Resolve every digest before touching anything.
	artifacts := cfg.Artifacts()
	digests := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		d, err := lf.Get(a.LockName)
		if err != nil {
			return nil, err
		}
		digests[a.LockName] = d
	}

	for _, a := range artifacts {
		url, err := cfg.ResolveURL(a)
		if err != nil {
			return nil, err
		}
		if _, err := e.Cache.Ensure(ctx, a.LockName, url, digests[a.LockName]); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(e.TargetDir, 0755); err != nil {
		return nil, fmt.Errorf("creating target directory %s: %w", e.TargetDir, err)
	}

	result := &BuildResult{}
	if err := e.stageCore(cfg, digests[config.CoreLockName], result); err != nil {
		return nil, err
	}
	if err := e.stagePlugins(cfg, digests, result); err != nil {
		return nil, err
	}
	if err := e.assembleFiles(cfg, result); err != nil {
		return nil, err
	}

	sortActions(result.Staged)
	sortActions(result.Unchanged)
	sortActions(result.Removed)

	e.Metrics.BuildFinished(time.Since(start))
	log.Infof("built %s: %d staged, %d unchanged, %d removed",
		e.TargetDir, len(result.Staged), len(result.Unchanged), len(result.Removed))
	return result, nil
}

func (e *BuildEngine) stageCore(cfg *config.Config, digest string, result *BuildResult) error {
	name := target.CoreFileName(cfg.Core, digest)
	if err := e.stageJar(name, digest, "core", result); err != nil {
		return err
	}

	inv, err := target.Inspect(e.TargetDir)
	if err != nil {
		return err
	}
	for _, f := range inv.CoreFiles {
		if f != name {
			if err := e.remove(f, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *BuildEngine) stagePlugins(cfg *config.Config, digests map[string]string, result *BuildResult) error {
	if err := sandbox.SafeMkdirAll(e.TargetDir, target.PluginsDir, 0755); err != nil {
		return fmt.Errorf("creating plugins directory: %w", err)
	}

	expected := make(map[string]bool, len(cfg.Plugins))
	for _, name := range cfg.PluginNames() {
		digest := digests[name]
		file := target.PluginFileName(name, cfg.Plugins[name].Version, digest)
		expected[file] = true
		if err := e.stageJar(target.PluginPath(file), digest, "plugin", result); err != nil {
			return err
		}
	}

	inv, err := target.Inspect(e.TargetDir)
	if err != nil {
		return err
	}
	for _, f := range inv.PluginFiles {
		if !expected[f] {
			if err := e.remove(target.PluginPath(f), result); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageJar copies the cached blob to rel unless a file already exists there.
// The digest in the file name makes an existing file the right one.
func (e *BuildEngine) stageJar(rel, digest, kind string, result *BuildResult) error {
	path, err := sandbox.ValidatePath(e.TargetDir, rel)
	if err != nil {
		return err
	}
	action := FileAction{Path: filepath.ToSlash(rel)}
	if _, err := os.Stat(path); err == nil {
		action.Action = "unchanged"
		result.Unchanged = append(result.Unchanged, action)
		return nil
	}

	if err := sandbox.SafeCopy(e.TargetDir, rel, e.Cache.Path(digest), jarPerm); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	log.Debugf("staged %s", rel)
	e.Metrics.Staged(kind)
	action.Action = "staged"
	result.Staged = append(result.Staged, action)
	return nil
}

func (e *BuildEngine) remove(rel string, result *BuildResult) error {
	if err := sandbox.SafeRemove(e.TargetDir, rel); err != nil {
		return fmt.Errorf("pruning %s: %w", rel, err)
	}
	log.Debugf("pruned %s", rel)
	e.Metrics.Pruned(1)
	result.Removed = append(result.Removed, FileAction{Path: filepath.ToSlash(rel), Action: "removed"})
	return nil
}

func (e *BuildEngine) assembleFiles(cfg *config.Config, result *BuildResult) error {
	lookup := e.Env
	if lookup == nil {
		var err error
		lookup, err = transform.ProjectLookup(filepath.Join(e.ProjectRoot, ".env"))
		if err != nil {
			return err
		}
	}

	scans, err := assemble.ScanProject(assemble.ProjectOptions{
		ProjectRoot: e.ProjectRoot,
		Includes:    config.IncludeDirs(e.ProjectRoot, cfg.Include),
		TargetDir:   e.TargetDir,
		CacheDir:    e.Cache.Dir(),
		Ignore:      cfg.Ignore,
	})
	if err != nil {
		return err
	}
	files, err := assemble.Plan(scans)
	if err != nil {
		return err
	}

	written, err := assemble.Write(e.TargetDir, files, transform.NewSubstitutor(lookup), func(f assemble.StagedFile) {
		e.Metrics.Staged(f.Kind.String())
	})
	if err != nil {
		return err
	}
	for _, p := range written.Written {
		result.Staged = append(result.Staged, FileAction{Path: p, Action: "staged"})
	}
	for _, p := range written.Unchanged {
		result.Unchanged = append(result.Unchanged, FileAction{Path: p, Action: "unchanged"})
	}
	return nil
}

func sortActions(actions []FileAction) {
	sort.Slice(actions, func(i, j int) bool { return actions[i].Path < actions[j].Path })
}
