// Package assemble mirrors project files into a build target. Every scanned
// root contributes files; structured documents with the same relative path
// are merged, everything else is taken from the last root that has it.
package assemble

import (
	"path"
	"strings"
)

// Kind classifies a project file.
type Kind int

const (
	// KindOpaque files are copied verbatim.
	KindOpaque Kind = iota
	// KindMergeable files are YAML or JSON documents merged across roots.
	KindMergeable
	// KindText files are copied with ${NAME} substitution.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMergeable:
		return "mergeable"
	case KindText:
		return "text"
	default:
		return "opaque"
	}
}

var extKinds = map[string]Kind{
	".yml":        KindMergeable,
	".yaml":       KindMergeable,
	".json":       KindMergeable,
	".properties": KindText,
	".conf":       KindText,
	".cfg":        KindText,
	".ini":        KindText,
	".toml":       KindText,
	".txt":        KindText,
}

// Classify returns the kind of the file at the slash-separated name.
func Classify(name string) Kind {
	if k, ok := extKinds[strings.ToLower(path.Ext(name))]; ok {
		return k
	}
	return KindOpaque
}
