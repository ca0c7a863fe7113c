package document

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxNodes bounds alias expansion.
const maxNodes = 1 << 20

const (
	tagNull      = "!!null"
	tagBool      = "!!bool"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagStr       = "!!str"
	tagTimestamp = "!!timestamp"
	tagBinary    = "!!binary"
	tagMerge     = "!!merge"
)

type converter struct {
	visited int
}

func newConverter() *converter {
	return &converter{}
}

func (c *converter) convert(n *yaml.Node) (any, error) {
	c.visited++
	if c.visited > maxNodes {
		return nil, fmt.Errorf("document expands to more than %d nodes", maxNodes)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", n.Line, n.Value)
		}
		return c.convert(n.Alias)
	case yaml.MappingNode:
		return c.mapping(n)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	default:
		return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
}

// mapping converts a mapping node, expanding "<<" merge keys. Keys defined
// directly in the mapping take precedence over merged ones.
func (c *converter) mapping(n *yaml.Node) (map[string]any, error) {
	out := make(map[string]any, len(n.Content)/2)
	first := make(map[string][2]int, len(n.Content)/2)
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == tagMerge {
			merges = append(merges, v)
			continue
		}

		key, err := mappingKey(k)
		if err != nil {
			return nil, err
		}
		if pos, dup := first[key]; dup {
			return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
		}
		first[key] = [2]int{k.Line, k.Column}

		val, err := c.convert(v)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}

	for _, m := range merges {
		if err := c.merge(out, m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// merge copies keys from a merge source into dst without overriding existing
// keys. A sequence of sources is applied in order, so earlier ones win.
func (c *converter) merge(dst map[string]any, src *yaml.Node) error {
	if src.Kind == yaml.AliasNode && src.Alias != nil {
		src = src.Alias
	}
	switch src.Kind {
	case yaml.MappingNode:
		m, err := c.mapping(src)
		if err != nil {
			return err
		}
		for k, v := range m {
			if _, exists := dst[k]; !exists {
				dst[k] = v
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range src.Content {
			if err := c.merge(dst, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge key value must be a mapping or a sequence of mappings", src.Line)
	}
}

func mappingKey(k *yaml.Node) (string, error) {
	if k.Kind == yaml.AliasNode && k.Alias != nil {
		k = k.Alias
	}
	if k.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d, column %d: mapping keys must be scalars", k.Line, k.Column)
	}
	return k.Value, nil
}

// scalar resolves a scalar node using the YAML core schema, except that
// timestamps resolve to their source text.
func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case tagNull:
		return nil
	case tagBool:
		switch strings.ToLower(n.Value) {
		case "true", "yes", "on", "y":
			return true
		case "false", "no", "off", "n":
			return false
		}
		return n.Value
	case tagInt:
		if num, ok := intNumber(n.Value); ok {
			return num
		}
		return n.Value
	case tagFloat:
		// Integers too large for int64 resolve as floats.
		if num, ok := intNumber(n.Value); ok {
			return num
		}
		if f, ok := floatValue(n.Value); ok {
			return f
		}
		return n.Value
	case tagStr, tagTimestamp, tagBinary:
		return n.Value
	default:
		// Unknown or application tags are never constructed.
		return n.Value
	}
}

func intNumber(lexeme string) (json.Number, bool) {
	plain := strings.ReplaceAll(lexeme, "_", "")
	if i, err := strconv.ParseInt(plain, 0, 64); err == nil {
		return json.Number(strconv.FormatInt(i, 10)), true
	}
	if b, ok := new(big.Int).SetString(plain, 0); ok {
		return json.Number(b.String()), true
	}
	return "", false
}

// floatValue returns a json.Number for finite values and a float64 for
// infinities and NaN, which have no JSON number form.
func floatValue(lexeme string) (any, bool) {
	plain := strings.ReplaceAll(lexeme, "_", "")
	switch strings.ToLower(plain) {
	case ".inf", "+.inf":
		return math.Inf(1), true
	case "-.inf":
		return math.Inf(-1), true
	case ".nan":
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(plain, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), true
}
