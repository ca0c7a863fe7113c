// Package document loads YAML documents into JSON-compatible value trees
// suitable for JSON Schema validation.
//
// Scalars that YAML would resolve as timestamps are kept as strings equal to
// their source text. Schemas describe dates and versions as strings, so a
// promoted time value would validate differently from what the author wrote.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is a parsed YAML document. It is not modified after Load returns.
type Document struct {
	ID    string // source path or logical name
	Value any    // map[string]any, []any, string, bool, json.Number, float64 or nil
}

// DocumentParseError reports a document that could not be turned into a value tree.
type DocumentParseError struct {
	DocumentID string
	Line       int // 1-based line of the failure, 0 when unknown
	Message    string
	Err        error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.DocumentID, e.Message)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports a key that appears twice in one mapping.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q at line %d, column %d (first defined at line %d, column %d)",
		e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// ErrMultipleDocuments is returned when a stream holds more than one document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream")

// ErrTooLarge is returned for documents over the configured size limit.
var ErrTooLarge = errors.New("document too large")

// Load parses data as a single YAML document.
// An empty stream yields a Document with a nil Value.
func Load(id string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{ID: id}, nil
		}
		return nil, parseError(id, err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); err == nil {
		pe := parseError(id, ErrMultipleDocuments)
		pe.Line = extra.Line
		if len(extra.Content) > 0 {
			pe.Line = extra.Content[0].Line
		}
		return nil, pe
	} else if !errors.Is(err, io.EOF) {
		return nil, parseError(id, err)
	}

	value, err := newConverter().convert(&root)
	if err != nil {
		return nil, parseError(id, err)
	}
	return &Document{ID: id, Value: value}, nil
}

// LoadFile reads and parses the YAML file at path. The path is the document ID.
func LoadFile(path string) (*Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(path, data)
}

// ReadFile reads the file at path, reporting failures as a *DocumentParseError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocumentParseError{
			DocumentID: path,
			Message:    fmt.Sprintf("reading file: %v", err),
			Err:        err,
		}
	}
	return data, nil
}

// CheckSize returns a *DocumentParseError wrapping ErrTooLarge when data is
// longer than limit bytes. A limit below 1 disables the check.
func CheckSize(id string, data []byte, limit int) error {
	if limit > 0 && len(data) > limit {
		return &DocumentParseError{
			DocumentID: id,
			Message:    fmt.Sprintf("document is %d bytes, limit is %d", len(data), limit),
			Err:        ErrTooLarge,
		}
	}
	return nil
}

func parseError(id string, err error) *DocumentParseError {
	return &DocumentParseError{DocumentID: id, Line: errorLine(err), Message: err.Error(), Err: err}
}

// yaml.v3 and the converter both prefix messages with "line N".
var linePattern = regexp.MustCompile(`\bline (\d+)`)

func errorLine(err error) int {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return dup.Line
	}
	if m := linePattern.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			return n
		}
	}
	return 0
}
