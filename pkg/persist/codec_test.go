package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord is a struct for round-trip codec testing.
type testRecord struct {
	Name   string         `json:"name" yaml:"name"`
	Count  int            `json:"count" yaml:"count"`
	Values map[string]int `json:"values" yaml:"values"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	original := testRecord{
		Name:   "test",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testRecord

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.Count, decoded.Count)
	assert.Equal(t, original.Values, decoded.Values)
}

func TestJSONCodec_Extension(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	assert.Equal(t, ".json", codec.Extension())
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	codec := &JSONCodec{Indent: ""}

	record := testRecord{Name: "compact", Count: 1}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, record))

	// Compact JSON has at most one trailing newline (from json.Encoder).
	output := buf.String()

	assert.LessOrEqual(t, strings.Count(output, "\n"), 1)
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	record := testRecord{Name: "pretty", Count: 1}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, record))

	// Pretty-printed JSON has indentation.
	output := buf.String()

	assert.Contains(t, output, defaultIndent)
}

func TestJSONCodec_DecodeError(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	var decoded testRecord

	err := codec.Decode(strings.NewReader("not valid json{{{"), &decoded)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")
}

func TestJSONCodec_EncodeError(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	// Channels cannot be JSON-encoded.
	var buf bytes.Buffer

	err := codec.Encode(&buf, make(chan int))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")
}

func TestYAMLCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewYAMLCodec()

	original := testRecord{
		Name:   "yaml-test",
		Count:  123,
		Values: map[string]int{"x": 10, "y": 20},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testRecord

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original.Name, decoded.Name)
	assert.Equal(t, original.Count, decoded.Count)
	assert.Equal(t, original.Values, decoded.Values)
}

func TestYAMLCodec_Extension(t *testing.T) {
	t.Parallel()

	codec := NewYAMLCodec()

	assert.Equal(t, ".yaml", codec.Extension())
}

func TestYAMLCodec_Output(t *testing.T) {
	t.Parallel()

	codec := NewYAMLCodec()

	record := testRecord{Name: "plain", Count: 7, Values: map[string]int{"k": 5}}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, record))

	output := buf.String()

	assert.Contains(t, output, "name: plain")
	assert.Contains(t, output, "count: 7")
	assert.Contains(t, output, "k: 5")
}

func TestYAMLCodec_DecodeError(t *testing.T) {
	t.Parallel()

	codec := NewYAMLCodec()

	var decoded testRecord

	err := codec.Decode(strings.NewReader(":\n  - not: [valid"), &decoded)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "yaml decode")
}
