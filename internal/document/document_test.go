package document

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TimestampsStayStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  []string
		want  string
	}{
		{name: "date", input: "date-released: 2021-07-18\n", path: []string{"date-released"}, want: "2021-07-18"},
		{name: "datetime", input: "at: 2001-12-14t21:59:43.10-05:00\n", path: []string{"at"}, want: "2001-12-14t21:59:43.10-05:00"},
		{name: "space separated", input: "at: 2001-12-14 21:59:43.10 -5\n", path: []string{"at"}, want: "2001-12-14 21:59:43.10 -5"},
		{name: "explicit tag", input: "at: !!timestamp 2002-12-14\n", path: []string{"at"}, want: "2002-12-14"},
		{name: "nested", input: "references:\n  - meta:\n      date: 1999-01-02\n", path: []string{"references", "0", "meta", "date"}, want: "1999-01-02"},
		{name: "quoted", input: "date: \"2020-02-02\"\n", path: []string{"date"}, want: "2020-02-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load("test.yaml", []byte(tt.input))
			require.NoError(t, err)

			got := dig(t, doc.Value, tt.path)
			assert.IsType(t, "", got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_TimestampKey(t *testing.T) {
	doc, err := Load("keys.yaml", []byte("2020-01-01: new year\n"))
	require.NoError(t, err)

	m := doc.Value.(map[string]any)
	assert.Equal(t, "new year", m["2020-01-01"])
}

func TestLoad_Scalars(t *testing.T) {
	input := `
title: My Software
version: 1.0.4
count: 42
hex: 0x1F
big: 123456789012345678901234567890
ratio: 0.25
exp: 1e3
inf: .inf
enabled: true
missing: null
tilde: ~
bare:
`
	doc, err := Load("scalars.yaml", []byte(input))
	require.NoError(t, err)

	m := doc.Value.(map[string]any)
	assert.Equal(t, "My Software", m["title"])
	assert.Equal(t, "1.0.4", m["version"])
	assert.Equal(t, json.Number("42"), m["count"])
	assert.Equal(t, json.Number("31"), m["hex"])
	assert.Equal(t, json.Number("123456789012345678901234567890"), m["big"])
	assert.Equal(t, json.Number("0.25"), m["ratio"])
	assert.Equal(t, json.Number("1000"), m["exp"])
	assert.True(t, math.IsInf(m["inf"].(float64), 1))
	assert.Equal(t, true, m["enabled"])
	assert.Nil(t, m["missing"])
	assert.Nil(t, m["tilde"])
	assert.Contains(t, m, "bare")
	assert.Nil(t, m["bare"])
}

func TestLoad_UnknownTagIsString(t *testing.T) {
	doc, err := Load("tags.yaml", []byte("cmd: !python/object:os.system rm\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"cmd": "rm"}, doc.Value)
}

func TestLoad_AnchorsAndMerge(t *testing.T) {
	input := `
base: &base
  license: MIT
  type: software
derived:
  <<: *base
  type: dataset
list:
  - *base
`
	doc, err := Load("merge.yaml", []byte(input))
	require.NoError(t, err)

	m := doc.Value.(map[string]any)
	assert.Equal(t, map[string]any{"license": "MIT", "type": "dataset"}, m["derived"])
	assert.Equal(t, []any{map[string]any{"license": "MIT", "type": "software"}}, m["list"])
}

func TestLoad_Empty(t *testing.T) {
	doc, err := Load("empty.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "empty.yaml", doc.ID)
	assert.Nil(t, doc.Value)
}

func TestLoad_ScalarRoot(t *testing.T) {
	doc, err := Load("scalar.yaml", []byte("just text\n"))
	require.NoError(t, err)
	assert.Equal(t, "just text", doc.Value)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int // 0 skips the line check
	}{
		{name: "unterminated flow sequence", input: "key: [unterminated\n"},
		{name: "bad indentation", input: "a:\n  b: 1\n c: 2\n"},
		{name: "unterminated quote", input: "title: \"oops\n"},
		{name: "multiple documents", input: "a: 1\n---\nb: 2\n", line: 3},
		{name: "duplicate key", input: "title: a\ntitle: b\n", line: 2},
		{name: "complex key", input: "? [a, b]\n: value\n", line: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("bad.yaml", []byte(tt.input))
			require.Error(t, err)

			var pe *DocumentParseError
			require.True(t, errors.As(err, &pe), "expected DocumentParseError, got %T", err)
			assert.Equal(t, "bad.yaml", pe.DocumentID)
			assert.NotEmpty(t, pe.Message)
			if tt.line > 0 {
				assert.Equal(t, tt.line, pe.Line)
			}
		})
	}
}

func TestLoad_DuplicateKeyPositions(t *testing.T) {
	_, err := Load("dup.yaml", []byte("metadata:\n  name: a\n  name: b\n"))
	require.Error(t, err)

	var de *DuplicateKeyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "name", de.Key)
	assert.Equal(t, 2, de.FirstLine)
	assert.Equal(t, 3, de.Line)
}

func TestLoad_MultipleDocuments(t *testing.T) {
	_, err := Load("multi.yaml", []byte("a: 1\n---\nb: 2\n"))
	assert.ErrorIs(t, err, ErrMultipleDocuments)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CITATION.cff")
	require.NoError(t, os.WriteFile(path, []byte("cff-version: 1.2.0\n"), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.ID)
	assert.Equal(t, map[string]any{"cff-version": "1.2.0"}, doc.Value)

	_, err = LoadFile(filepath.Join(dir, "missing.cff"))
	var pe *DocumentParseError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestErrorLine(t *testing.T) {
	assert.Equal(t, 4, errorLine(errors.New("yaml: line 4: did not find expected key")))
	assert.Equal(t, 7, errorLine(&DuplicateKeyError{Key: "a", FirstLine: 2, Line: 7}))
	assert.Zero(t, errorLine(ErrTooLarge))
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize("a.yaml", []byte("abc"), 3))
	assert.NoError(t, CheckSize("a.yaml", []byte("abcdef"), 0))

	err := CheckSize("a.yaml", []byte("abcd"), 3)
	var pe *DocumentParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, "document is 4 bytes, limit is 3", pe.Message)
}

func dig(t *testing.T, v any, path []string) any {
	t.Helper()
	for _, tok := range path {
		switch node := v.(type) {
		case map[string]any:
			v = node[tok]
		case []any:
			idx, err := strconv.Atoi(tok)
			require.NoError(t, err)
			require.Less(t, idx, len(node))
			v = node[idx]
		default:
			t.Fatalf("cannot descend into %T at %q", v, tok)
		}
	}
	return v
}
