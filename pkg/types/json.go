package types

import (
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON encodes v. Non-finite floats in Value, which YAML allows and
// JSON does not, are written as strings.
func (v Violation) MarshalJSON() ([]byte, error) {
	type plain Violation
	p := plain(v)
	p.Value = jsonSafe(v.Value)
	return json.Marshal(p)
}

func jsonSafe(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonSafe(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonSafe(item)
		}
		return out
	default:
		return v
	}
}
