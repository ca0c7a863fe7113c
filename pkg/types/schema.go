package types

import "strings"

// ViolationKind classifies a single validation failure.
type ViolationKind string

// Violation kinds.
const (
	KindStructural         ViolationKind = "structural"
	KindFormat             ViolationKind = "format"
	KindDocumentUnparsable ViolationKind = "document-unparsable"
)

// FailureCategory says why a document failed as a whole.
type FailureCategory string

// Failure categories.
const (
	CategoryParse  FailureCategory = "parse"
	CategorySchema FailureCategory = "schema"
)

// Violation is one mismatch between a document and its schema.
type Violation struct {
	Path       []string      `json:"path,omitempty"`        // instance location, one token per key or index
	SchemaPath string        `json:"schema_path,omitempty"` // keyword location, e.g. "#/properties/authors/required"
	Keyword    string        `json:"keyword,omitempty"`     // failing keyword, e.g. "required"
	Message    string        `json:"message"`
	Kind       ViolationKind `json:"kind"`
	Value      any           `json:"value,omitempty"` // instance value at Path, when known
	HasValue   bool          `json:"-"`
}

// Pointer returns the instance location as a JSON pointer ("/" for the root).
func (v Violation) Pointer() string {
	if len(v.Path) == 0 {
		return "/"
	}
	escaped := make([]string, len(v.Path))
	for i, tok := range v.Path {
		tok = strings.ReplaceAll(tok, "~", "~0")
		escaped[i] = strings.ReplaceAll(tok, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}

// Report is the outcome of validating one failing document.
type Report struct {
	DocumentID string          `json:"document_id"`
	Category   FailureCategory `json:"category"`
	Violations []Violation     `json:"violations,omitzero"`
	Text       string          `json:"text"`
	Truncated  bool            `json:"truncated"`
}

// BatchResult aggregates the outcome of a batch run. Reports only holds
// failing documents, in input order.
type BatchResult struct {
	Reports []Report `json:"reports,omitzero"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// OK reports whether every document in the batch passed.
func (r *BatchResult) OK() bool {
	return r.Failed == 0
}
