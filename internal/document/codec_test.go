package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAML(t *testing.T) {
	doc, empty, err := Decode("server.yml", []byte("settings:\n  pvp: true\n  motd: hi\n"))
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, map[string]any{"settings": map[string]any{"pvp": true, "motd": "hi"}}, Native(doc))
}

func TestDecodeYAMLEmpty(t *testing.T) {
	for _, in := range []string{"", "# only a comment\n", "---\n"} {
		doc, empty, err := Decode("empty.yml", []byte(in))
		require.NoError(t, err, "input %q", in)
		assert.True(t, empty, "input %q", in)
		assert.Nil(t, doc)
	}
}

func TestDecodeYAMLFirstDocumentOnly(t *testing.T) {
	doc, _, err := Decode("multi.yml", []byte("a: 1\n---\nb: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, Native(doc))
}

func TestDecodeMalformed(t *testing.T) {
	_, _, err := Decode("bad.yml", []byte("a: [1, 2\n"))
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad.yml", perr.Path)
	assert.Contains(t, err.Error(), "parsing bad.yml")

	_, _, err = Decode("bad.json", []byte(`{"a": `))
	require.True(t, errors.As(err, &perr))
}

func TestDecodeJSON(t *testing.T) {
	doc, empty, err := Decode("ops.json", []byte(`{"ops": ["alice"], "level": 4}`))
	require.NoError(t, err)
	assert.False(t, empty)
	m, ok := doc.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"alice"}, m["ops"])
	assert.Equal(t, Scalar{Tag: "!!int", Value: "4"}, m["level"])

	_, empty, err = Decode("blank.json", []byte("  \n"))
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestEncodeYAMLSorted(t *testing.T) {
	out, err := EncodeYAML(map[string]any{"b": 1, "a": map[string]any{"d": true, "c": []any{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, "a:\n  c:\n    - x\n  d: true\nb: 1\n", string(out))
}

func TestEncodeDeterministic(t *testing.T) {
	doc := map[string]any{"z": 1, "y": 2, "x": map[string]any{"q": 1, "p": 2}}
	first, err := Encode("a.json", doc)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Encode("a.json", doc)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeNil(t *testing.T) {
	out, err := Encode("empty.yml", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	out, err = Encode("empty.json", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSONRoundTripThroughMerge(t *testing.T) {
	a, _, err := Decode("a.json", []byte(`{"settings": {"pvp": true}}`))
	require.NoError(t, err)
	b, _, err := Decode("a.json", []byte(`{"settings": {"motd": "hi"}}`))
	require.NoError(t, err)
	merged, err := Merge(a, b)
	require.NoError(t, err)
	out, err := Encode("a.json", merged)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settings": {"motd": "hi", "pvp": true}}`, string(out))
}

func TestQuery(t *testing.T) {
	doc := map[string]any{"plugins": map[string]any{"economy": map[string]any{"version": "2.0"}}}
	got, err := Query(doc, "$.plugins.economy.version")
	require.NoError(t, err)
	assert.Equal(t, []any{"2.0"}, got)
}

func TestQueryKeepsNumberText(t *testing.T) {
	doc, _, err := DecodeYAML([]byte("core:\n  version: 1.20\n"))
	require.NoError(t, err)
	got, err := Query(doc, "$.core.version")
	require.NoError(t, err)
	require.Len(t, got, 1)
	out, err := EncodeJSON(got[0])
	require.NoError(t, err)
	assert.Equal(t, "1.20\n", string(out))
}

func TestYAMLRoundTripKeepsScalarText(t *testing.T) {
	in := "version: 1.20\nratio: 1.0\nmode: 0755\nexp: 1e3\nquoted: '1.20'\ntagged: !!str 42\nflag: yes\nname: paper\n"
	doc, _, err := DecodeYAML([]byte(in))
	require.NoError(t, err)
	out, err := EncodeYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "exp: 1e3\nflag: yes\nmode: 0755\nname: paper\nquoted: '1.20'\nratio: 1.0\ntagged: !!str 42\nversion: 1.20\n", string(out))
}

func TestYAMLRoundTripThroughMerge(t *testing.T) {
	a, _, err := DecodeYAML([]byte("settings:\n  version: 1.20\n  limits: [1.0]\n"))
	require.NoError(t, err)
	b, _, err := DecodeYAML([]byte("settings:\n  limits: [2.50]\n  mode: 0644\n"))
	require.NoError(t, err)
	merged, err := Merge(a, b)
	require.NoError(t, err)
	out, err := EncodeYAML(merged)
	require.NoError(t, err)
	assert.Equal(t, "settings:\n  limits:\n    - 1.0\n    - 2.50\n  mode: 0644\n  version: 1.20\n", string(out))
}

func TestJSONKeepsNumberText(t *testing.T) {
	doc, _, err := Decode("ops.json", []byte(`{"ratio": 1.0, "big": 12345678901234567890, "n": 3}`))
	require.NoError(t, err)
	out, err := Encode("ops.json", doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"big": 12345678901234567890`)
	assert.Contains(t, string(out), `"n": 3`)
	assert.Contains(t, string(out), `"ratio": 1.0`)
}

func TestDecodeYAMLAliasesAndMergeKeys(t *testing.T) {
	in := "base: &base\n  pvp: true\n  motd: hi\nworld:\n  <<: *base\n  motd: override\n"
	doc, _, err := DecodeYAML([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"base":  map[string]any{"pvp": true, "motd": "hi"},
		"world": map[string]any{"pvp": true, "motd": "override"},
	}, Native(doc))
}

func TestDecodeYAMLDuplicateKey(t *testing.T) {
	_, _, err := Decode("dup.yml", []byte("a: 1\na: 2\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "already defined")
}
