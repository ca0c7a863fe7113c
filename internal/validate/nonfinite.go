package validate

import (
	"fmt"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// nonFinite stands in for a YAML .inf, -.inf or .nan while validating. The
// library turns every number into a big.Rat and has no form for these, so
// they are hidden behind a type it reports as an invalid JSON value instead.
type nonFinite float64

// maskNonFinite returns v with every non-finite float replaced by a
// nonFinite. Containers are copied only when something below them changes.
func maskNonFinite(v any) (any, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return nonFinite(val), true
		}
	case []any:
		var out []any
		for i, item := range val {
			masked, changed := maskNonFinite(item)
			if !changed {
				continue
			}
			if out == nil {
				out = append([]any(nil), val...)
			}
			out[i] = masked
		}
		if out != nil {
			return out, true
		}
	case map[string]any:
		var out map[string]any
		for k, item := range val {
			masked, changed := maskNonFinite(item)
			if !changed {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(val))
				for k2, v2 := range val {
					out[k2] = v2
				}
			}
			out[k] = masked
		}
		if out != nil {
			return out, true
		}
	}
	return v, false
}

// nonFiniteMessage returns the message for a masked value the schema
// reached, and false for any other kind of error.
func nonFiniteMessage(k jsonschema.ErrorKind) (string, bool) {
	invalid, ok := k.(*kind.InvalidJsonValue)
	if !ok {
		return "", false
	}
	n, ok := invalid.Value.(nonFinite)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("non-finite number %v cannot be validated against a JSON Schema", float64(n)), true
}
