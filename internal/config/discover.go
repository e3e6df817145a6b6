package config

import (
	"path/filepath"
)

// FileName is the configuration file name of the project and of every include.
const FileName = "mcstarter.yml"

// LayerKind says where a configuration layer came from.
type LayerKind string

const (
	LayerInclude LayerKind = "include"
	LayerProject LayerKind = "project"
)

// LayerInfo describes a discovered config layer and its load status.
type LayerInfo struct {
	Err    error // non-nil if the file exists but failed to load
	Dir    string
	Path   string
	Kind   LayerKind
	Loaded bool
}

// IncludeDirs returns the absolute include directories in list order.
// Relative entries are resolved against projectRoot. Duplicates and the
// project root itself are dropped.
func IncludeDirs(projectRoot string, includes []string) []string {
	root := absOrClean(projectRoot)
	seen := map[string]bool{root: true}

	var dirs []string
	for _, inc := range includes {
		if inc == "" {
			continue
		}
		dir := inc
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		dir = absOrClean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// DiscoverLayers returns the config layers from lowest precedence to
// highest: every include in list order, then the project itself.
func DiscoverLayers(projectRoot, projectConfig string, includes []string) []LayerInfo {
	dirs := IncludeDirs(projectRoot, includes)
	layers := make([]LayerInfo, 0, len(dirs)+1)
	for _, dir := range dirs {
		layers = append(layers, LayerInfo{
			Dir:  dir,
			Path: filepath.Join(dir, FileName),
			Kind: LayerInclude,
		})
	}
	layers = append(layers, LayerInfo{
		Dir:  absOrClean(projectRoot),
		Path: projectConfig,
		Kind: LayerProject,
	})
	return layers
}

func absOrClean(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
