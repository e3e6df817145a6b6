package engine

import (
	"github.com/bianoble/mcstarter/internal/cache"
	"github.com/bianoble/mcstarter/internal/config"
)

// ConfigLayerStatus describes a config layer's load status for display.
type ConfigLayerStatus struct {
	Kind   string // "include", "project"
	Path   string
	Loaded bool
}

// InfoResult holds tool information for the info command.
type InfoResult struct {
	Version      string
	ConfigPath   string
	LockPath     string
	CacheDir     string
	ConfigChain  []ConfigLayerStatus
	CacheEntries int
	CacheSize    int64
	Artifacts    int
}

// Info gathers tool information. res and c may be nil when the
// configuration or cache could not be opened.
func Info(version string, res *config.Result, c *cache.Cache, configPath, lockPath string) (*InfoResult, error) {
	r := &InfoResult{
		Version:    version,
		ConfigPath: configPath,
		LockPath:   lockPath,
	}

	if res != nil {
		for _, l := range res.Layers {
			r.ConfigChain = append(r.ConfigChain, ConfigLayerStatus{
				Kind:   string(l.Kind),
				Path:   l.Path,
				Loaded: l.Loaded,
			})
		}
		r.Artifacts = len(res.Config.Artifacts())
	}

	if c != nil {
		r.CacheDir = c.Dir()
		entries, err := c.Entries()
		if err != nil {
			return nil, err
		}
		r.CacheEntries = len(entries)
		for _, e := range entries {
			r.CacheSize += e.Size
		}
	}

	return r, nil
}
