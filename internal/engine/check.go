package engine

import (
	"os"
	"path/filepath"

	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/target"
)

// CheckEngine detects drift between a target directory and the jars a build
// would stage.
type CheckEngine struct {
	TargetDir string
}

// Check compares the staged core and plugin jars against cfg and lf without
// modifying anything.
func (e *CheckEngine) Check(cfg *config.Config, lf *lock.Lockfile) (*CheckResult, error) {
	result := &CheckResult{}

	coreDigest, err := lf.Get(config.CoreLockName)
	if err != nil {
		return nil, err
	}
	expectedCore := target.CoreFileName(cfg.Core, coreDigest)

	expectedPlugins := make(map[string]bool, len(cfg.Plugins))
	var pluginFiles []string
	for _, name := range cfg.PluginNames() {
		digest, err := lf.Get(name)
		if err != nil {
			return nil, err
		}
		file := target.PluginFileName(name, cfg.Plugins[name].Version, digest)
		expectedPlugins[file] = true
		pluginFiles = append(pluginFiles, file)
	}

	inv, err := target.Inspect(e.TargetDir)
	if err != nil {
		return nil, err
	}

	foundCore := false
	for _, f := range inv.CoreFiles {
		if f == expectedCore {
			foundCore = true
			continue
		}
		result.Unexpected = append(result.Unexpected, f)
	}
	if !foundCore {
		result.Missing = append(result.Missing, expectedCore)
		if len(inv.CoreFiles) > 0 {
			result.Drifted = append(result.Drifted, DriftEntry{
				Path:     "core",
				Expected: expectedCore,
				Actual:   inv.CoreFiles[0],
			})
		}
	}

	present := make(map[string]bool, len(inv.PluginFiles))
	for _, f := range inv.PluginFiles {
		present[f] = true
		if !expectedPlugins[f] {
			result.Unexpected = append(result.Unexpected, filepath.ToSlash(target.PluginPath(f)))
		}
	}
	for _, f := range pluginFiles {
		if !present[f] {
			result.Missing = append(result.Missing, filepath.ToSlash(target.PluginPath(f)))
		}
	}

	result.Clean = len(result.Missing) == 0 && len(result.Unexpected) == 0
	return result, nil
}

// Staged reports whether rel exists as a regular file in the target.
func (e *CheckEngine) Staged(rel string) bool {
	info, err := os.Stat(filepath.Join(e.TargetDir, rel))
	return err == nil && info.Mode().IsRegular()
}
