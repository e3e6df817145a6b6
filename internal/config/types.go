package config

import "sort"

// Config represents a resolved mcstarter.yml: the root configuration merged
// on top of every include's configuration.
type Config struct {
	Include       []string          `yaml:"include,omitempty"`
	Ignore        []string          `yaml:"ignore,omitempty"`
	Sources       map[string]string `yaml:"sources,omitempty"`
	DefaultSource string            `yaml:"default_source,omitempty"`
	Core          Core              `yaml:"core"`
	Plugins       map[string]Plugin `yaml:"plugins,omitempty"`
	Launch        Launch            `yaml:"launch,omitempty"`
}

// Core is the server runtime artifact.
type Core struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
	Source  string `yaml:"source,omitempty"`
	URL     string `yaml:"url,omitempty"`
}

// Plugin is an add-on artifact staged under plugins/.
type Plugin struct {
	Version string `yaml:"version,omitempty"`
	Source  string `yaml:"source,omitempty"`
	URL     string `yaml:"url,omitempty"`
}

// Launch holds the runtime command and the arguments placed before and
// after the main artifact argument.
type Launch struct {
	Command string   `yaml:"command,omitempty"`
	Pre     []string `yaml:"pre,omitempty"`
	Post    []string `yaml:"post,omitempty"`
}

// CoreLockName is the lock entry name of the core artifact.
const CoreLockName = "core"

// Artifact is a core or plugin entry together with its lock name.
type Artifact struct {
	// LockName is "core" for the core artifact and the plugin key otherwise.
	LockName string
	// Name is the value substituted for $NAME in source templates.
	Name    string
	Version string
	Source  string
	URL     string
	IsCore  bool
}

// Artifacts returns the core followed by every plugin sorted by key.
func (c *Config) Artifacts() []Artifact {
	out := make([]Artifact, 0, len(c.Plugins)+1)
	out = append(out, Artifact{
		LockName: CoreLockName,
		Name:     c.Core.Name,
		Version:  c.Core.Version,
		Source:   c.Core.Source,
		URL:      c.Core.URL,
		IsCore:   true,
	})
	for _, name := range c.PluginNames() {
		p := c.Plugins[name]
		out = append(out, Artifact{
			LockName: name,
			Name:     name,
			Version:  p.Version,
			Source:   p.Source,
			URL:      p.URL,
		})
	}
	return out
}

// PluginNames returns the plugin keys in sorted order.
func (c *Config) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for name := range c.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
