package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/yamlcheck/internal/document"
	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/pkg/types"
)

const validCitation = `
cff-version: 1.2.0
message: If you use this software, please cite it as below.
title: My Research Software
version: 1.0.4
date-released: 2021-07-18
doi: 10.5281/zenodo.1234567
license: MIT
repository-code: https://github.com/example/research-software
authors:
  - family-names: Doe
    given-names: Jane
    orcid: https://orcid.org/0000-0001-2345-6789
    email: jane@example.org
  - name: The Research Group
keywords:
  - research
`

func newEngine(t *testing.T, schemaJSON string) *Engine {
	t.Helper()
	s, err := schema.Parse("test-schema.json", []byte(schemaJSON))
	require.NoError(t, err)
	return New(s)
}

func load(t *testing.T, yamlText string) *document.Document {
	t.Helper()
	doc, err := document.Load("doc.yaml", []byte(yamlText))
	require.NoError(t, err)
	return doc
}

func TestValidate_Valid(t *testing.T) {
	e := newEngine(t, `{"type": "object", "properties": {"name": {"type": "string"}, "age": {"type": "integer"}}, "required": ["name"]}`)

	vs, err := e.Validate(load(t, "name: Alice\nage: 30\n"))
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestValidate_MissingRequired(t *testing.T) {
	e := newEngine(t, `{"type": "object", "required": ["title", "version"]}`)

	vs, err := e.Validate(load(t, "title: X\n"))
	require.NoError(t, err)
	require.Len(t, vs, 1)

	v := vs[0]
	assert.Equal(t, types.KindStructural, v.Kind)
	assert.Equal(t, "required", v.Keyword)
	assert.Equal(t, "#/required", v.SchemaPath)
	assert.Empty(t, v.Path)
	assert.Contains(t, v.Message, "version")
	assert.NotContains(t, v.Message, "title")
}

func TestValidate_OneViolationPerMissingProperty(t *testing.T) {
	e := newEngine(t, `{"type": "object", "required": ["title", "version", "authors"]}`)

	vs, err := e.Validate(load(t, "{}"))
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Contains(t, vs[0].Message, "authors")
	assert.Contains(t, vs[1].Message, "title")
	assert.Contains(t, vs[2].Message, "version")
}

func TestValidate_RootTypeMismatch(t *testing.T) {
	e := newEngine(t, `{"type": "object", "required": ["title"]}`)

	vs, err := e.Validate(load(t, "just text\n"))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, types.KindStructural, vs[0].Kind)
	assert.Equal(t, "type", vs[0].Keyword)
	assert.True(t, vs[0].HasValue)
	assert.Equal(t, "just text", vs[0].Value)
}

func TestValidate_EmptyDocumentAgainstObjectSchema(t *testing.T) {
	e := newEngine(t, `{"type": "object"}`)

	vs, err := e.Validate(load(t, ""))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "type", vs[0].Keyword)
}

func TestValidate_NestedPaths(t *testing.T) {
	e := newEngine(t, `{
		"type": "object",
		"properties": {
			"items": {"type": "array", "items": {"type": "integer"}},
			"user": {
				"type": "object",
				"properties": {"email": {"type": "string"}},
				"required": ["email"]
			}
		}
	}`)

	vs, err := e.Validate(load(t, "items: [1, 2, three, 4]\nuser:\n  email: 12345\n"))
	require.NoError(t, err)
	require.Len(t, vs, 2)

	assert.Equal(t, []string{"items", "2"}, vs[0].Path)
	assert.Equal(t, "/items/2", vs[0].Pointer())
	assert.Equal(t, "#/properties/items/items/type", vs[0].SchemaPath)
	assert.Contains(t, vs[0].Message, "integer")
	assert.Equal(t, "three", vs[0].Value)

	assert.Equal(t, []string{"user", "email"}, vs[1].Path)
	assert.Contains(t, vs[1].Message, "string")
}

func TestValidate_Format(t *testing.T) {
	e := newEngine(t, `{
		"type": "object",
		"properties": {
			"email": {"type": "string", "format": "email"},
			"site": {"type": "string", "format": "uri"}
		}
	}`)

	vs, err := e.Validate(load(t, "email: not-an-email\nsite: https://example.org\n"))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, types.KindFormat, vs[0].Kind)
	assert.Equal(t, "format", vs[0].Keyword)
	assert.Equal(t, []string{"email"}, vs[0].Path)
}

func TestValidate_UnknownFormatFailsClosed(t *testing.T) {
	e := newEngine(t, `{
		"type": "object",
		"properties": {
			"color": {"format": "color"}
		}
	}`)

	vs, err := e.Validate(load(t, "color: red\n"))
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, types.KindFormat, vs[0].Kind)
	assert.Contains(t, vs[0].Message, "unsupported format")

	// Non-string instances are not subject to format checks.
	vs, err = e.Validate(load(t, "color: 7\n"))
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestValidate_TimestampLexemeIsString(t *testing.T) {
	e := newEngine(t, `{
		"type": "object",
		"properties": {
			"date-released": {"type": "string", "format": "date"}
		}
	}`)

	vs, err := e.Validate(load(t, "date-released: 2021-07-18\n"))
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestValidate_NonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		doc      string
		pointers []string
	}{
		{"nan against minimum", `{"properties": {"x": {"type": "number", "minimum": 0}}}`, "x: .nan\n", []string{"/x"}},
		{"inf against maximum", `{"properties": {"x": {"maximum": 10}}}`, "x: .inf\n", []string{"/x"}},
		{"negative inf against exclusiveMinimum", `{"properties": {"x": {"exclusiveMinimum": 0}}}`, "x: -.inf\n", []string{"/x"}},
		{"negative inf against multipleOf", `{"properties": {"x": {"multipleOf": 2}}}`, "x: -.inf\n", []string{"/x"}},
		{"nan against string type", `{"properties": {"x": {"type": "string"}}}`, "x: .nan\n", []string{"/x"}},
		{"nested in array", `{"properties": {"xs": {"items": {"minimum": 0}}}}`, "xs: [1, .inf, 2]\n", []string{"/xs/1"}},
		{"duplicates check", `{"properties": {"xs": {"uniqueItems": true}}}`, "xs: [.nan, .nan]\n", []string{"/xs"}},
		{"unconstrained value", `{"type": "object"}`, "x: .inf\n", nil},
		{"other violations still reported", `{"required": ["version"], "properties": {"x": {"minimum": 0}}}`, "x: .inf\n", []string{"/", "/x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.schema)

			var vs []types.Violation
			require.NotPanics(t, func() {
				var err error
				vs, err = e.Validate(load(t, tt.doc))
				require.NoError(t, err)
			})

			var pointers []string
			for _, v := range vs {
				pointers = append(pointers, v.Pointer())
			}
			assert.Equal(t, tt.pointers, pointers)

			for _, v := range vs {
				if v.Pointer() != "/" {
					assert.Contains(t, v.Message, "non-finite number")
					assert.True(t, v.HasValue)
				}
			}
		})
	}
}

func TestValidate_NonFiniteKeepsDocumentUnchanged(t *testing.T) {
	e := newEngine(t, `{"properties": {"x": {"minimum": 0}}}`)
	doc := load(t, "x: .inf\n")

	_, err := e.Validate(doc)
	require.NoError(t, err)
	x := doc.Value.(map[string]any)["x"]
	assert.IsType(t, float64(0), x)
}

func TestValidate_DeterministicOrder(t *testing.T) {
	e := newEngine(t, `{
		"type": "object",
		"properties": {
			"a": {"type": "string"},
			"b": {"type": "string"},
			"c": {"type": "string"},
			"list": {"type": "array", "items": {"type": "string"}}
		},
		"required": ["z1", "z2"]
	}`)
	doc := load(t, "c: 3\na: 1\nb: 2\nlist: [1, a, 2, b, 3, c, 4, d, 5, e, 6]\n")

	first, err := e.Validate(doc)
	require.NoError(t, err)

	var pointers []string
	for _, v := range first {
		pointers = append(pointers, v.Pointer())
	}
	assert.Equal(t, []string{"/", "/", "/a", "/b", "/c", "/list/0", "/list/2", "/list/4", "/list/6", "/list/8", "/list/10"}, pointers)

	for i := 0; i < 20; i++ {
		again, err := e.Validate(doc)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestValidate_UnsupportedDraft(t *testing.T) {
	e := newEngine(t, `{"$schema": "https://json-schema.org/draft/2020-12/schema", "type": "object"}`)

	_, err := e.Validate(load(t, "a: 1\n"))
	var ce *SchemaCompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "test-schema.json", ce.Source)
	assert.Contains(t, err.Error(), "unsupported $schema")
}

func TestValidate_Draft7Accepted(t *testing.T) {
	for _, uri := range []string{
		"http://json-schema.org/draft-07/schema#",
		"http://json-schema.org/draft-07/schema",
		"https://json-schema.org/draft-07/schema#",
	} {
		e := newEngine(t, `{"$schema": "`+uri+`", "type": "object"}`)
		assert.NoError(t, e.Compile(), uri)
	}
}

func TestValidate_InvalidSchemaKeyword(t *testing.T) {
	e := newEngine(t, `{"type": 42}`)

	err := e.Compile()
	var ce *SchemaCompileError
	require.True(t, errors.As(err, &ce))

	// The compile error is sticky.
	_, err = e.Validate(load(t, "a: 1\n"))
	assert.True(t, errors.As(err, &ce))
}

func TestValidate_BundledSchema(t *testing.T) {
	s, err := schema.Default()
	require.NoError(t, err)
	e := New(s)

	vs, err := e.Validate(load(t, validCitation))
	require.NoError(t, err)
	assert.Empty(t, vs, "violations: %+v", vs)

	vs, err = e.Validate(load(t, "title: X\nversion: 1.0\n"))
	require.NoError(t, err)
	var missing []string
	for _, v := range vs {
		if v.Keyword == "required" {
			missing = append(missing, v.Message)
		}
	}
	assert.Len(t, missing, 3)
}

func TestParseFailure(t *testing.T) {
	_, err := document.Load("broken.yaml", []byte("key: [unterminated\n"))
	require.Error(t, err)

	vs := ParseFailure(err)
	require.Len(t, vs, 1)
	assert.Equal(t, types.KindDocumentUnparsable, vs[0].Kind)
	assert.NotEmpty(t, vs[0].Message)
	assert.NotContains(t, vs[0].Message, "broken.yaml:")
}

func TestComparePaths(t *testing.T) {
	assert.Negative(t, comparePaths(nil, []string{"a"}))
	assert.Negative(t, comparePaths([]string{"list", "2"}, []string{"list", "10"}))
	assert.Negative(t, comparePaths([]string{"a", "z"}, []string{"b"}))
	assert.Zero(t, comparePaths([]string{"x", "1"}, []string{"x", "1"}))
	assert.Positive(t, comparePaths([]string{"b"}, []string{"a", "b"}))
}
