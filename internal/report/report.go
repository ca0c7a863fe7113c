// Package report turns violations into bounded, human-readable diagnostics.
//
// A failing document produces one block: a header naming the document and
// the failure category, then the rendered violations. Blocks longer than the
// line limit are cut unless verbose output was requested.
package report

import (
	"strings"

	"github.com/usestring/yamlcheck/pkg/jsoncompact"
	"github.com/usestring/yamlcheck/pkg/types"
)

// DefaultMaxLines is the number of violation lines shown without --verbose.
const DefaultMaxLines = 25

// VerboseNotice is appended to truncated output.
const VerboseNotice = "... (Add --verbose flag for full output.)"

// Formatter renders reports.
type Formatter struct {
	maxLines int
	compact  *jsoncompact.Options
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithMaxLines sets the truncation limit. Values below 1 are ignored.
func WithMaxLines(n int) Option {
	return func(f *Formatter) {
		if n > 0 {
			f.maxLines = n
		}
	}
}

// WithCompact sets how instance values are shortened in context lines.
func WithCompact(opts *jsoncompact.Options) Option {
	return func(f *Formatter) {
		if opts != nil {
			f.compact = opts
		}
	}
}

// New creates a Formatter.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		maxLines: DefaultMaxLines,
		compact:  jsoncompact.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Header returns the one-line summary for a failing document.
func Header(documentID string, category types.FailureCategory) string {
	if category == types.CategoryParse {
		return "Failed to load yaml of " + documentID
	}
	return "Failed to validate " + documentID
}

// Render returns the lines for one violation: a "<path>: <message>" line
// followed by indented context lines.
func (f *Formatter) Render(v types.Violation) []string {
	if v.Kind == types.KindDocumentUnparsable {
		return splitLines(v.Message)
	}

	lines := splitLines(v.Pointer() + ": " + v.Message)
	if v.SchemaPath != "" {
		lines = append(lines, "  schema: "+v.SchemaPath)
	}
	if v.HasValue {
		lines = append(lines, "  value: "+jsoncompact.String(v.Value, f.compact))
	}
	return lines
}

// Format renders every violation of r and applies the truncation policy.
// The header line is not counted against the limit.
func (f *Formatter) Format(r types.Report, verbose bool) (string, bool) {
	var lines []string
	for _, v := range r.Violations {
		lines = append(lines, f.Render(v)...)
	}

	truncated := !verbose && len(lines) > f.maxLines
	if truncated {
		lines = append(lines[:f.maxLines:f.maxLines], VerboseNotice)
	}

	var b strings.Builder
	b.WriteString(Header(r.DocumentID, r.Category))
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String(), truncated
}

// Build assembles the report for a failing document, including its text.
func (f *Formatter) Build(documentID string, category types.FailureCategory, violations []types.Violation, verbose bool) types.Report {
	r := types.Report{
		DocumentID: documentID,
		Category:   category,
		Violations: violations,
	}
	r.Text, r.Truncated = f.Format(r, verbose)
	return r
}

// LineCount returns the number of rendered violation lines in r, before truncation.
func (f *Formatter) LineCount(r types.Report) int {
	n := 0
	for _, v := range r.Violations {
		n += len(f.Render(v))
	}
	return n
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

