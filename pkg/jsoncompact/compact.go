// Package jsoncompact shortens JSON-compatible values for display by trimming
// long arrays, long strings and deep nesting.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// Options controls compaction behavior.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N runes (0 = no limit)
	MaxDepth      int // Collapse containers nested deeper than N (0 = unlimited)
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxStringLen  = 80
	DefaultMaxDepth      = 2
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// CompactValue returns a shortened copy of v, a value made of map[string]any,
// []any and scalars. v itself is not modified.
// If opts is nil, DefaultOptions() is used.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts, 0)
}

// String compacts v and encodes it as single-line JSON. Values JSON cannot
// represent, such as NaN, fall back to their Go formatting.
func String(v any, opts *Options) string {
	data, err := json.Marshal(CompactValue(v, opts))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func compactRecursive(v any, opts *Options, depth int) any {
	switch val := v.(type) {
	case []any:
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth && len(val) > 0 {
			return fmt.Sprintf("[... %d items]", len(val))
		}
		return compactArray(val, opts, depth)
	case map[string]any:
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth && len(val) > 0 {
			return fmt.Sprintf("{... %d keys}", len(val))
		}
		return compactObject(val, opts, depth)
	case string:
		return compactString(val, opts)
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return fmt.Sprint(val)
		}
		return val
	default:
		return v
	}
}

func compactString(s string, opts *Options) string {
	if opts.MaxStringLen <= 0 || utf8.RuneCountInString(s) <= opts.MaxStringLen {
		return s
	}
	runes := []rune(s)
	remaining := len(runes) - opts.MaxStringLen
	return string(runes[:opts.MaxStringLen]) + fmt.Sprintf("... (%d more chars)", remaining)
}

func compactArray(arr []any, opts *Options, depth int) []any {
	if len(arr) == 0 {
		return arr
	}

	// If no limit or within limit, just recurse into elements
	if opts.MaxArrayItems <= 0 || len(arr) <= opts.MaxArrayItems {
		result := make([]any, len(arr))
		for i, item := range arr {
			result[i] = compactRecursive(item, opts, depth+1)
		}
		return result
	}

	// Trim array and add indicator
	result := make([]any, opts.MaxArrayItems+1)
	for i := 0; i < opts.MaxArrayItems; i++ {
		result[i] = compactRecursive(arr[i], opts, depth+1)
	}
	remaining := len(arr) - opts.MaxArrayItems
	result[opts.MaxArrayItems] = fmt.Sprintf("... (%d more items)", remaining)
	return result
}

func compactObject(obj map[string]any, opts *Options, depth int) map[string]any {
	result := make(map[string]any, len(obj))
	for k, v := range obj {
		result[k] = compactRecursive(v, opts, depth+1)
	}
	return result
}
