// Package validate checks document value trees against a JSON Schema and
// reports every violation in a stable order.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/yamlcheck/internal/document"
	"github.com/usestring/yamlcheck/internal/formats"
	"github.com/usestring/yamlcheck/internal/schema"
	"github.com/usestring/yamlcheck/pkg/types"
)

// Draft is the only JSON Schema dialect the engine accepts.
const Draft = "http://json-schema.org/draft-07/schema#"

const resourceURL = "yamlcheck://schema.json"

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// SchemaCompileError reports a schema that parsed as JSON but cannot be
// compiled: an unsupported dialect, an invalid keyword value, a broken $ref.
type SchemaCompileError struct {
	Source string
	Err    error
}

func (e *SchemaCompileError) Error() string {
	return fmt.Sprintf("compiling schema %s: %v", e.Source, e.Err)
}

func (e *SchemaCompileError) Unwrap() error {
	return e.Err
}

// Engine validates documents against one schema. The schema is compiled on
// first use; after that the engine is read-only and safe for concurrent use.
type Engine struct {
	schema  *schema.Schema
	formats *formats.Registry

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Option configures an Engine.
type Option func(*Engine)

// WithFormats replaces the default format registry.
func WithFormats(r *formats.Registry) Option {
	return func(e *Engine) {
		e.formats = r
	}
}

// New creates an engine for s.
func New(s *schema.Schema, opts ...Option) *Engine {
	e := &Engine{
		schema:  s,
		formats: formats.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the schema the engine validates against.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// Compile compiles the schema if that has not happened yet and returns the
// compile error, if any. Validate calls it implicitly.
func (e *Engine) Compile() error {
	e.once.Do(e.compile)
	return e.err
}

func (e *Engine) compile() {
	if d := e.schema.Draft(); d != "" && !isDraft7(d) {
		e.err = &SchemaCompileError{
			Source: e.schema.Source,
			Err:    fmt.Errorf("unsupported $schema %q: only %s is supported", d, Draft),
		}
		return
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	for _, name := range e.formats.Names() {
		check, _ := e.formats.Lookup(name)
		compiler.RegisterFormat(stringFormat(name, check))
	}
	// Formats the registry does not know fail closed instead of being ignored.
	for _, name := range e.schema.Formats() {
		if _, ok := e.formats.Lookup(name); !ok {
			compiler.RegisterFormat(stringFormat(name, func(string) error {
				return formats.ErrUnsupported
			}))
		}
	}

	if err := compiler.AddResource(resourceURL, e.schema.Doc); err != nil {
		e.err = &SchemaCompileError{Source: e.schema.Source, Err: err}
		return
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		e.err = &SchemaCompileError{Source: e.schema.Source, Err: err}
		return
	}
	e.compiled = compiled
}

// Validate checks doc against the schema. An empty result means the document
// is valid. The only error returned is a *SchemaCompileError.
func (e *Engine) Validate(doc *document.Document) ([]types.Violation, error) {
	if err := e.Compile(); err != nil {
		return nil, err
	}

	value, _ := maskNonFinite(doc.Value)
	err := e.compiled.Validate(value)
	if err == nil {
		return []types.Violation{}, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []types.Violation{{
			Message: err.Error(),
			Kind:    types.KindStructural,
		}}, nil
	}

	var out []types.Violation
	collectLeaves(validationErr, doc.Value, &out)
	return sortViolations(out), nil
}

// ParseFailure turns a document load error into the single violation reported
// for an unparsable document.
func ParseFailure(err error) []types.Violation {
	msg := err.Error()
	var pe *document.DocumentParseError
	if errors.As(err, &pe) {
		msg = pe.Message
	}
	return []types.Violation{{
		Message: msg,
		Kind:    types.KindDocumentUnparsable,
	}}
}

func stringFormat(name string, check formats.Checker) *jsonschema.Format {
	return &jsonschema.Format{
		Name: name,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return check(s)
		},
	}
}

func isDraft7(uri string) bool {
	u := strings.TrimSuffix(uri, "#")
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return u == "json-schema.org/draft-07/schema"
}
