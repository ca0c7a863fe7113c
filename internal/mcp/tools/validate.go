package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/yamlcheck/internal/batch"
	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/pkg/types"
)

// MaxDocumentsPerCall bounds how many documents one tool call may validate.
const MaxDocumentsPerCall = 200

// inlineSchemaSource names a schema passed in the tool input.
const inlineSchemaSource = "input.schema"

// DocumentInput is one YAML document to validate.
type DocumentInput struct {
	Name    string `json:"name,omitempty" jsonschema:"Document name used in diagnostics (default: document-N)"`
	Content string `json:"content" jsonschema:"required,YAML text of the document"`
}

// ValidateInput is the input for yamlcheck_validate.
type ValidateInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"required,Documents to validate"`
	Schema    string          `json:"schema,omitempty" jsonschema:"JSON Schema (draft-07) text. Default: bundled citation schema"`
	Verbose   bool            `json:"verbose,omitempty" jsonschema:"Return full diagnostics instead of the first 25 lines per document"`
}

// ValidateOutput is the output for yamlcheck_validate.
type ValidateOutput struct {
	OK      bool           `json:"ok"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Reports []types.Report `json:"reports,omitzero"`
}

// ToolValidate validates YAML documents against a JSON Schema.
func ToolValidate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateInput) (*sdkmcp.CallToolResult, ValidateOutput, error) {
		if len(input.Documents) == 0 {
			return nil, ValidateOutput{}, ErrInvalidInput("documents is required")
		}
		if len(input.Documents) > MaxDocumentsPerCall {
			return nil, ValidateOutput{}, ErrInvalidInput(fmt.Sprintf("at most %d documents per call", MaxDocumentsPerCall))
		}

		s := d.Schema
		if input.Schema != "" {
			parsed, err := schema.Parse(inlineSchemaSource, []byte(input.Schema))
			if err != nil {
				return nil, ValidateOutput{}, WrapRunError(err)
			}
			s = parsed
		}
		if s == nil {
			return nil, ValidateOutput{}, ErrInvalidInput("schema is required")
		}

		sources := make([]batch.Source, len(input.Documents))
		for i, doc := range input.Documents {
			name := doc.Name
			if name == "" {
				name = fmt.Sprintf("document-%d", i+1)
			}
			sources[i] = batch.Source{ID: name, Data: []byte(doc.Content)}
		}

		res, err := d.Runner.Run(ctx, s, sources, input.Verbose)
		if err != nil {
			return nil, ValidateOutput{}, WrapRunError(err)
		}

		output := ValidateOutput{
			OK:      res.OK(),
			Passed:  res.Passed,
			Failed:  res.Failed,
			Reports: res.Reports,
		}
		return textResult(renderSummary(res)), output, nil
	}
}

// renderSummary joins the failure text of every report, followed by a
// pass/fail count.
func renderSummary(res *types.BatchResult) string {
	total := res.Passed + res.Failed
	if res.OK() {
		return fmt.Sprintf("All %d documents are valid.", total)
	}

	var b strings.Builder
	for _, r := range res.Reports {
		b.WriteString(r.Text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "%d of %d documents failed.", res.Failed, total)
	return b.String()
}
