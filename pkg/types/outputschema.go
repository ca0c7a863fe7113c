package types

import (
	"github.com/invopop/jsonschema"
)

// OutputSchemaID identifies the schema of the JSON batch output.
const OutputSchemaID = "https://github.com/usestring/yamlcheck/schemas/batch-result.json"

// OutputSchema returns the JSON Schema describing a serialized BatchResult.
func OutputSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		// Optional fields are tagged omitzero, which the reflector does not
		// read; leave every property optional instead of guessing.
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&BatchResult{})
	s.ID = jsonschema.ID(OutputSchemaID)
	s.Title = "yamlcheck batch result"
	s.Description = "Outcome of validating a batch of YAML documents. reports lists failing documents in input order."
	return s
}
