package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

const (
	tagNull  = "!!null"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagMerge = "!!merge"
)

// maxNodes bounds alias expansion while decoding YAML.
const maxNodes = 1 << 20

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// ParseError reports malformed structured text.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing document: %s", e.Err)
	}
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Scalar is a leaf that keeps its source text, tag and quoting. Encoding a
// decoded document writes 1.20 back as 1.20 and 0755 as 0755.
type Scalar struct {
	Tag   string
	Value string
	Style yaml.Style
}

func (s Scalar) node() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: s.Tag, Value: s.Value, Style: s.Style}
}

// MarshalYAML implements yaml.Marshaler.
func (s Scalar) MarshalYAML() (any, error) {
	return s.node(), nil
}

// Native returns the value s denotes. Numbers written in JSON number syntax
// come back as json.Number with their text intact; everything else decodes
// the way yaml.v3 decodes into an interface.
func (s Scalar) Native() any {
	if (s.Tag == tagInt || s.Tag == tagFloat) && jsonNumber.MatchString(s.Value) {
		return json.Number(s.Value)
	}
	var v any
	if err := s.node().Decode(&v); err != nil {
		return s.Value
	}
	return v
}

// Native converts doc into plain maps, slices and Go values, for JSON output
// and JSONPath queries.
func Native(doc Document) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = Native(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Native(e)
		}
		return out
	case Scalar:
		return v.Native()
	}
	return doc
}

// IsJSON reports whether path names a JSON document.
func IsJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Decode parses data as JSON or YAML depending on the extension of path.
// empty is true when the text holds no logical document.
func Decode(path string, data []byte) (doc Document, empty bool, err error) {
	if IsJSON(path) {
		doc, empty, err = DecodeJSON(data)
	} else {
		doc, empty, err = DecodeYAML(data)
	}
	if err != nil {
		return nil, false, &ParseError{Path: path, Err: err}
	}
	return doc, empty, nil
}

// Encode serializes doc as JSON or YAML depending on the extension of path.
func Encode(path string, doc Document) ([]byte, error) {
	if IsJSON(path) {
		return EncodeJSON(doc)
	}
	return EncodeYAML(doc)
}

// DecodeYAML decodes the first YAML document in data. Additional documents
// are ignored. Scalars decode to Scalar, nulls to nil.
func DecodeYAML(data []byte) (Document, bool, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true, nil
		}
		return nil, false, err
	}
	nd := &nodeDecoder{expanding: map[*yaml.Node]bool{}}
	doc, err := nd.value(&root)
	if err != nil {
		return nil, false, err
	}
	return doc, doc == nil, nil
}

type nodeDecoder struct {
	expanding map[*yaml.Node]bool
	count     int
}

func (d *nodeDecoder) value(n *yaml.Node) (any, error) {
	d.count++
	if d.count > maxNodes {
		return nil, errors.New("document is too large after alias expansion")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.value(n.Content[0])

	case yaml.AliasNode:
		if d.expanding[n.Alias] {
			return nil, fmt.Errorf("line %d: alias *%s refers to itself", n.Line, n.Value)
		}
		d.expanding[n.Alias] = true
		defer delete(d.expanding, n.Alias)
		return d.value(n.Alias)

	case yaml.ScalarNode:
		if n.ShortTag() == tagNull {
			return nil, nil
		}
		return Scalar{Tag: n.ShortTag(), Value: n.Value, Style: n.Style}, nil

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.value(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		return d.mapping(n)
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

// mapping decodes a mapping node. Keys set explicitly win over keys pulled
// in through <<, and earlier merge sources win over later ones.
func (d *nodeDecoder) mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.AliasNode {
			k = k.Alias
		}
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if k.ShortTag() == tagMerge {
			merges = append(merges, v)
			continue
		}
		if _, dup := out[k.Value]; dup {
			return nil, fmt.Errorf("line %d: mapping key %q already defined", k.Line, k.Value)
		}
		val, err := d.value(v)
		if err != nil {
			return nil, err
		}
		out[k.Value] = val
	}

	for _, m := range merges {
		target := m
		if target.Kind == yaml.AliasNode {
			target = target.Alias
		}
		sources := []*yaml.Node{m}
		if target.Kind == yaml.SequenceNode {
			sources = target.Content
		}
		for _, src := range sources {
			v, err := d.value(src)
			if err != nil {
				return nil, err
			}
			sm, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("line %d: merge key needs a mapping or a list of mappings", src.Line)
			}
			for k, e := range sm {
				if _, set := out[k]; !set {
					out[k] = e
				}
			}
		}
	}
	return out, nil
}

// EncodeYAML serializes doc with sorted keys and two-space indentation.
// A nil document encodes to no bytes.
func EncodeYAML(doc Document) ([]byte, error) {
	if doc == nil {
		return []byte{}, nil
	}
	root, err := toNode(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			val, err := toNode(v[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, val)
		}
		return n, nil

	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			val, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil

	case Scalar:
		return v.node(), nil

	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeJSON decodes a JSON document. Whitespace-only input is empty.
// Numbers decode to Scalar so their text survives re-encoding.
func DecodeJSON(data []byte) (Document, bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("unexpected data after offset %d", dec.InputOffset())
	}
	doc := fromJSON(v)
	return doc, doc == nil, nil
}

func fromJSON(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = fromJSON(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = fromJSON(e)
		}
		return v
	case json.Number:
		tag := tagInt
		if strings.ContainsAny(string(v), ".eE") {
			tag = tagFloat
		}
		return Scalar{Tag: tag, Value: string(v)}
	}
	return v
}

// EncodeJSON serializes doc with sorted keys and two-space indentation,
// followed by a newline. A nil document encodes to no bytes.
func EncodeJSON(doc Document) ([]byte, error) {
	if doc == nil {
		return []byte{}, nil
	}
	out := oj.JSON(Native(doc), &oj.Options{Indent: 2, Sort: true})
	return []byte(out + "\n"), nil
}

// Query evaluates a JSONPath expression against doc. Matches are plain Go
// values as returned by Native.
func Query(doc Document, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(Native(doc)), nil
}
