// Package document holds the decoded form of structured configuration files
// and the single merge primitive used by both config resolution and the
// build planner.
package document

import (
	"errors"
	"fmt"
)

// Document is a decoded structured-config tree: map[string]any, []any,
// Scalar leaves (plus string and bool from JSON) and nil.
type Document = any

// ErrNotMergeable is returned when either top-level input of Merge is not a map.
var ErrNotMergeable = errors.New("not a mergeable document")

// Merge deep-merges b into a and returns the result. Neither input is mutated.
//
// Per key: map+map merges recursively, array+array concatenates a's elements
// followed by b's, anything else takes b's value. Keys only present in b are
// inserted as-is.
func Merge(a, b Document) (Document, error) {
	if !isMap(a) {
		return nil, fmt.Errorf("base document is %s: %w", kindOf(a), ErrNotMergeable)
	}
	if !isMap(b) {
		return nil, fmt.Errorf("overlay document is %s: %w", kindOf(b), ErrNotMergeable)
	}
	return mergeValue(a, b), nil
}

func mergeValue(av, bv any) any {
	switch b := bv.(type) {
	case map[string]any:
		if a, ok := av.(map[string]any); ok {
			return mergeMaps(a, b)
		}
	case []any:
		if a, ok := av.([]any); ok {
			out := make([]any, 0, len(a)+len(b))
			out = append(out, a...)
			return append(out, b...)
		}
	}
	return bv
}

func mergeMaps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		if av, ok := out[k]; ok {
			out[k] = mergeValue(av, bv)
			continue
		}
		out[k] = bv
	}
	return out
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func kindOf(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "a map"
	case []any:
		return "an array"
	case Scalar:
		return fmt.Sprintf("a scalar (%s)", s.Tag)
	default:
		return fmt.Sprintf("a scalar (%T)", v)
	}
}
