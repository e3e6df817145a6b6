// Package transform expands ${NAME} environment placeholders in text
// destined for the build target.
package transform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/joho/godotenv"
)

// placeholder matches ${NAME} where NAME is upper-case letters, digits and
// underscores. $NAME without braces is left alone (source URL templates use it).
var placeholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// memoSize bounds the number of distinct variables a Substitutor remembers.
const memoSize = 512

// Lookup resolves an environment variable by name.
type Lookup func(name string) (string, bool)

// MissingEnvVarError is returned when a placeholder has no value.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return fmt.Sprintf("environment variable %s not found", e.Name)
}

// Substitute replaces every ${NAME} in content with its value from lookup.
// The bytes are matched as is, so text in any ASCII-compatible encoding
// (ISO-8859-1 .properties files, for one) is handled like UTF-8. It fails on
// the first placeholder with no value; substituted values are not scanned
// again.
func Substitute(content []byte, lookup Lookup) ([]byte, error) {
	var missing string
	out := placeholder.ReplaceAllFunc(content, func(match []byte) []byte {
		if missing != "" {
			return match
		}
		name := string(placeholder.FindSubmatch(match)[1])
		v, ok := lookup(name)
		if !ok {
			missing = name
			return match
		}
		return []byte(v)
	})
	if missing != "" {
		return nil, &MissingEnvVarError{Name: missing}
	}
	return out, nil
}

// Substitutor applies Substitute with a memoized lookup, so every file in a
// build sees one consistent value per variable.
type Substitutor struct {
	lookup Lookup
	memo   *lru.Cache[string, string]
}

// NewSubstitutor wraps lookup. A nil lookup reads the process environment.
func NewSubstitutor(lookup Lookup) *Substitutor {
	if lookup == nil {
		lookup = OSLookup
	}
	memo, err := lru.New[string, string](memoSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Substitutor{lookup: lookup, memo: memo}
}

// Lookup resolves name through the memo.
func (s *Substitutor) Lookup(name string) (string, bool) {
	if v, ok := s.memo.Get(name); ok {
		return v, true
	}
	v, ok := s.lookup(name)
	if ok {
		s.memo.Add(name, v)
	}
	return v, ok
}

// Apply substitutes placeholders in content through the memo.
func (s *Substitutor) Apply(content []byte) ([]byte, error) {
	return Substitute(content, s.Lookup)
}

// OSLookup reads the process environment.
func OSLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapLookup serves values from a fixed map.
func MapLookup(vars map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// Chain tries each lookup in order and returns the first hit.
func Chain(lookups ...Lookup) Lookup {
	return func(name string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(name); ok {
				return v, true
			}
		}
		return "", false
	}
}

// DotenvLookup reads a .env file. A missing file yields an empty lookup.
func DotenvLookup(path string) (Lookup, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return MapLookup(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return MapLookup(vars), nil
}

// ProjectLookup reads the process environment first, then dotenvPath.
func ProjectLookup(dotenvPath string) (Lookup, error) {
	dotenv, err := DotenvLookup(dotenvPath)
	if err != nil {
		return nil, err
	}
	return Chain(OSLookup, dotenv), nil
}
