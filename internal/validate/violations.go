package validate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"

	"github.com/usestring/yamlcheck/pkg/types"
)

// collectLeaves flattens the library's error tree into violations. Only leaf
// errors carry a concrete failure; inner nodes (allOf, $ref, the schema root)
// just group their causes.
func collectLeaves(err *jsonschema.ValidationError, root any, out *[]types.Violation) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		*out = append(*out, leafViolations(err, root)...)
	}
	for _, cause := range err.Causes {
		collectLeaves(cause, root, out)
	}
}

func leafViolations(err *jsonschema.ValidationError, root any) []types.Violation {
	keywordPath := err.ErrorKind.KeywordPath()
	schemaPath := schemaPointer(err.SchemaURL, keywordPath)
	keyword := ""
	if len(keywordPath) > 0 {
		keyword = keywordPath[len(keywordPath)-1]
	}
	path := append([]string(nil), err.InstanceLocation...)

	// One violation per missing property, so each can be read on its own.
	if req, ok := err.ErrorKind.(*kind.Required); ok {
		out := make([]types.Violation, 0, len(req.Missing))
		for _, name := range req.Missing {
			out = append(out, types.Violation{
				Path:       path,
				SchemaPath: schemaPath,
				Keyword:    keyword,
				Message:    (&kind.Required{Missing: []string{name}}).LocalizedString(printer),
				Kind:       types.KindStructural,
			})
		}
		return out
	}

	v := types.Violation{
		Path:       path,
		SchemaPath: schemaPath,
		Keyword:    keyword,
		Message:    err.ErrorKind.LocalizedString(printer),
		Kind:       types.KindStructural,
	}
	if msg, ok := nonFiniteMessage(err.ErrorKind); ok {
		v.Message = msg
	}
	if _, ok := err.ErrorKind.(*kind.Format); ok {
		v.Kind = types.KindFormat
	}
	v.Value, v.HasValue = lookup(root, path)
	return []types.Violation{v}
}

// schemaPointer renders the keyword location as a fragment, e.g.
// "#/definitions/person/properties/email/format".
func schemaPointer(schemaURL string, keywordPath []string) string {
	_, frag, _ := strings.Cut(schemaURL, "#")
	parts := make([]string, 0, len(keywordPath)+1)
	if frag != "" {
		parts = append(parts, strings.TrimPrefix(frag, "/"))
	}
	parts = append(parts, keywordPath...)
	return "#/" + strings.Join(parts, "/")
}

// lookup returns the instance value at path.
func lookup(root any, path []string) (any, bool) {
	v := root
	for _, tok := range path {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[tok]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// sortViolations orders violations depth-first by instance location, then by
// schema location and message, and drops exact duplicates. The library's
// traversal order depends on map iteration, so this is what makes the report
// and its truncation point reproducible.
func sortViolations(vs []types.Violation) []types.Violation {
	sort.SliceStable(vs, func(i, j int) bool {
		if c := comparePaths(vs[i].Path, vs[j].Path); c != 0 {
			return c < 0
		}
		if vs[i].SchemaPath != vs[j].SchemaPath {
			return vs[i].SchemaPath < vs[j].SchemaPath
		}
		return vs[i].Message < vs[j].Message
	})

	out := vs[:0]
	for _, v := range vs {
		if len(out) > 0 && sameViolation(out[len(out)-1], v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sameViolation(a, b types.Violation) bool {
	return comparePaths(a.Path, b.Path) == 0 && a.SchemaPath == b.SchemaPath && a.Message == b.Message
}

// comparePaths compares token by token; sequence indices compare numerically
// and a path sorts before its extensions.
func comparePaths(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareTokens(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareTokens(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	return strings.Compare(a, b)
}
