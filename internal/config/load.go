package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bianoble/mcstarter/internal/document"
	"github.com/bianoble/mcstarter/internal/transform"
	"gopkg.in/yaml.v3"
)

// ResolveOptions controls how a configuration is resolved.
type ResolveOptions struct {
	// Path is the root configuration file.
	Path string

	// Substitute expands ${NAME} placeholders in the merged configuration.
	// Build and launch substitute; lock and download do not, so secrets never
	// influence the lock computation.
	Substitute bool

	// Env resolves placeholders. Nil means the process environment followed
	// by the project's .env file.
	Env transform.Lookup
}

// Result is a resolved configuration and the layers it was built from.
type Result struct {
	Config *Config
	Layers []LayerInfo
	// Document is the merged tree before decoding into Config, after
	// substitution when it was requested.
	Document document.Document
}

// Load resolves the configuration at path without environment substitution.
func Load(path string) (*Config, error) {
	res, err := Resolve(ResolveOptions{Path: path})
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// Resolve reads the root configuration, merges every include's
// configuration in list order and then the root on top, optionally
// substitutes environment placeholders, and decodes and validates the result.
func Resolve(opts ResolveOptions) (*Result, error) {
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", opts.Path, err)
	}

	// Only the include list is needed before the layers are known.
	var head struct {
		Include []string `yaml:"include"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, &document.ParseError{Path: opts.Path, Err: err}
	}

	root := filepath.Dir(absOrClean(opts.Path))
	layers := DiscoverLayers(root, opts.Path, head.Include)

	var acc document.Document = map[string]any{}
	for i := range layers {
		l := &layers[i]

		raw := data
		if l.Kind == LayerInclude {
			raw, err = os.ReadFile(l.Path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				l.Err = err
				return nil, fmt.Errorf("reading include config %s: %w", l.Path, err)
			}
		}

		doc, empty, err := document.Decode(l.Path, raw)
		if err != nil {
			l.Err = err
			return nil, err
		}
		l.Loaded = true
		if empty {
			continue
		}

		merged, err := document.Merge(acc, doc)
		if err != nil {
			l.Err = err
			return nil, fmt.Errorf("merging config %s: %w", l.Path, err)
		}
		acc = merged
	}

	text, err := document.EncodeYAML(acc)
	if err != nil {
		return nil, err
	}

	if opts.Substitute {
		lookup := opts.Env
		if lookup == nil {
			lookup, err = transform.ProjectLookup(filepath.Join(root, ".env"))
			if err != nil {
				return nil, err
			}
		}
		text, err = transform.NewSubstitutor(lookup).Apply(text)
		if err != nil {
			return nil, fmt.Errorf("substituting config %s: %w", opts.Path, err)
		}
		acc, _, err = document.DecodeYAML(text)
		if err != nil {
			return nil, &document.ParseError{Path: opts.Path, Err: fmt.Errorf("after substitution: %w", err)}
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(text, &cfg); err != nil {
		return nil, &document.ParseError{Path: opts.Path, Err: err}
	}
	cfg.Include = head.Include

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs, MissingSources: missingSources(&cfg)}
	}

	return &Result{Config: &cfg, Layers: layers, Document: acc}, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
	// MissingSources holds the artifacts whose location could not be resolved.
	MissingSources []*MissingSourceError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.MissingSources))
	for i, m := range e.MissingSources {
		errs[i] = m
	}
	return errs
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Core.Name == "" && cfg.Core.URL == "" {
		errs = append(errs, "core: one of 'name' or 'url' is required")
	}

	for _, name := range sortedKeys(cfg.Sources) {
		if strings.TrimSpace(cfg.Sources[name]) == "" {
			errs = append(errs, fmt.Sprintf("source '%s': url template is empty", name))
		}
	}

	if cfg.DefaultSource != "" {
		if _, ok := cfg.Sources[cfg.DefaultSource]; !ok {
			errs = append(errs, fmt.Sprintf("default_source '%s' is not defined in sources", cfg.DefaultSource))
		}
	}

	for _, name := range cfg.PluginNames() {
		switch {
		case name == "":
			errs = append(errs, "plugin: empty plugin name")
		case name == CoreLockName:
			errs = append(errs, "plugin 'core': name is reserved for the core artifact")
		case strings.ContainsAny(name, `/\`):
			errs = append(errs, fmt.Sprintf("plugin '%s': name must not contain path separators", name))
		}
	}

	for _, m := range missingSources(cfg) {
		errs = append(errs, m.Error())
	}

	return errs
}

func missingSources(cfg *Config) []*MissingSourceError {
	var out []*MissingSourceError
	for _, a := range cfg.Artifacts() {
		if _, err := cfg.ResolveURL(a); err != nil {
			var m *MissingSourceError
			if errors.As(err, &m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
