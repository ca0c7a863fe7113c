// Package schema loads JSON Schema documents.
//
// Loading is pure deserialization. Whether the document is a usable schema is
// decided when the validation engine compiles it.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultSource names the bundled schema.
const DefaultSource = "bundled:citation.schema.json"

//go:embed citation.schema.json
var bundled []byte

// Schema is a parsed JSON Schema document. It is never mutated after Parse
// returns and may be shared between goroutines.
type Schema struct {
	Source string // path or logical name
	Doc    any    // decoded JSON, numbers as json.Number
	Raw    []byte
}

// SchemaParseError reports a schema document that is not valid JSON.
type SchemaParseError struct {
	Source string
	Err    error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("parsing schema %s: %v", e.Source, e.Err)
}

func (e *SchemaParseError) Unwrap() error {
	return e.Err
}

// Parse decodes data as a JSON document.
func Parse(source string, data []byte) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &SchemaParseError{Source: source, Err: err}
	}
	return &Schema{Source: source, Doc: doc, Raw: data}, nil
}

// LoadFile reads and parses the schema at path.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaParseError{Source: path, Err: err}
	}
	return Parse(path, data)
}

// Default returns the schema bundled with the binary.
func Default() (*Schema, error) {
	return Parse(DefaultSource, bundled)
}

// Draft returns the "$schema" URI declared by the document, if any.
func (s *Schema) Draft() string {
	m, ok := s.Doc.(map[string]any)
	if !ok {
		return ""
	}
	d, _ := m["$schema"].(string)
	return d
}

// Formats returns every "format" keyword value used in the document, in
// first-seen order of a depth-first walk.
func (s *Schema) Formats() []string {
	seen := make(map[string]bool)
	var out []string
	collectFormats(s.Doc, seen, &out)
	return out
}

func collectFormats(v any, seen map[string]bool, out *[]string) {
	switch node := v.(type) {
	case map[string]any:
		if f, ok := node["format"].(string); ok && !seen[f] {
			seen[f] = true
			*out = append(*out, f)
		}
		for _, k := range sortedKeys(node) {
			collectFormats(node[k], seen, out)
		}
	case []any:
		for _, item := range node {
			collectFormats(item, seen, out)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
