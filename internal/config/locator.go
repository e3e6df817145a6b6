package config

import (
	"fmt"
	"strings"
)

// LocatorKind says how an artifact's download URL was determined.
type LocatorKind int

const (
	// Unresolvable means neither a url nor a usable source is configured.
	Unresolvable LocatorKind = iota
	// ExplicitURL means the artifact declares its own url.
	ExplicitURL
	// TemplatedFromSource means the url came from a source template.
	TemplatedFromSource
)

func (k LocatorKind) String() string {
	switch k {
	case ExplicitURL:
		return "url"
	case TemplatedFromSource:
		return "source"
	default:
		return "unresolvable"
	}
}

// Locator is the outcome of resolving where an artifact is downloaded from.
type Locator struct {
	Kind LocatorKind
	URL  string
	// Source is the source name used for TemplatedFromSource, or the name
	// that failed to resolve for Unresolvable.
	Source string
}

// MissingSourceError is returned when an artifact has no url and no
// resolvable source.
type MissingSourceError struct {
	Artifact string
	Source   string // empty when neither source nor default_source is set
}

func (e *MissingSourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: no url or source configured and no default_source set", e.Artifact)
	}
	return fmt.Sprintf("%s: source '%s' is not defined in sources", e.Artifact, e.Source)
}

// Locate resolves a's download location. url wins over source, and source
// wins over default_source.
func (c *Config) Locate(a Artifact) Locator {
	if a.URL != "" {
		return Locator{Kind: ExplicitURL, URL: a.URL}
	}
	name := a.Source
	if name == "" {
		name = c.DefaultSource
	}
	if name == "" {
		return Locator{Kind: Unresolvable}
	}
	tmpl, ok := c.Sources[name]
	if !ok || tmpl == "" {
		return Locator{Kind: Unresolvable, Source: name}
	}
	return Locator{Kind: TemplatedFromSource, Source: name, URL: ExpandTemplate(tmpl, a.Name, a.Version)}
}

// ResolveURL returns the download URL for a or a *MissingSourceError.
func (c *Config) ResolveURL(a Artifact) (string, error) {
	loc := c.Locate(a)
	if loc.Kind == Unresolvable {
		return "", &MissingSourceError{Artifact: a.LockName, Source: loc.Source}
	}
	return loc.URL, nil
}

// ExpandTemplate replaces $NAME and $VERSION in a source template.
func ExpandTemplate(tmpl, name, version string) string {
	return strings.NewReplacer("$NAME", name, "$VERSION", version).Replace(tmpl)
}
