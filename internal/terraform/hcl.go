package terraform

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// SanitizeName converts a label or id into a Terraform-safe identifier
// (e.g. "web server-1" -> "web_server_1"). Names starting with a digit get a
// leading underscore.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}

// ResourceBlock creates a resource "type" "name" { } block; body can be filled by the caller.
func ResourceBlock(resourceType, name string) *hclwrite.Block {
	return hclwrite.NewBlock("resource", []string{resourceType, name})
}

// SetAttributeStr sets a string attribute when value is non-empty.
func SetAttributeStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// SetAttributeBool sets a bool attribute.
func SetAttributeBool(body *hclwrite.Body, name string, value bool) {
	body.SetAttributeValue(name, cty.BoolVal(value))
}

// SetAttributeInt sets an int attribute.
func SetAttributeInt(body *hclwrite.Body, name string, value int) {
	body.SetAttributeValue(name, cty.NumberIntVal(int64(value)))
}

// SetAttributeMap sets a map(string) attribute (e.g. tags).
func SetAttributeMap(body *hclwrite.Body, name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	ctyMap := make(map[string]cty.Value, len(m))
	for k, v := range m {
		ctyMap[k] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.MapVal(ctyMap))
}

// SetAttributeAny sets an attribute from a decoded JSON value. Values that
// have no cty equivalent are skipped and reported as false.
func SetAttributeAny(body *hclwrite.Body, name string, v any) bool {
	val, ok := ToCty(v)
	if !ok {
		return false
	}
	body.SetAttributeValue(name, val)
	return true
}

// ToCty converts a JSON-like Go value into a cty value. Lists become tuples
// and objects become cty objects so mixed element types are allowed.
func ToCty(v any) (cty.Value, bool) {
	switch t := v.(type) {
	case string:
		return cty.StringVal(t), true
	case bool:
		return cty.BoolVal(t), true
	case float64:
		return cty.NumberFloatVal(t), true
	case int:
		return cty.NumberIntVal(int64(t)), true
	case int64:
		return cty.NumberIntVal(t), true
	case json.Number:
		n, err := cty.ParseNumberVal(t.String())
		return n, err == nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, true
		}
		vals := make([]cty.Value, 0, len(t))
		for _, e := range t {
			ev, ok := ToCty(e)
			if !ok {
				return cty.NilVal, false
			}
			vals = append(vals, ev)
		}
		return cty.TupleVal(vals), true
	case []string:
		if len(t) == 0 {
			return cty.EmptyTupleVal, true
		}
		vals := make([]cty.Value, len(t))
		for i, s := range t {
			vals[i] = cty.StringVal(s)
		}
		return cty.TupleVal(vals), true
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, true
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, e := range t {
			ev, ok := ToCty(e)
			if !ok {
				return cty.NilVal, false
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), true
	case map[string]string:
		if len(t) == 0 {
			return cty.EmptyObjectVal, true
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, s := range t {
			attrs[k] = cty.StringVal(s)
		}
		return cty.ObjectVal(attrs), true
	default:
		return cty.NilVal, false
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BlockToBytes formats a block and returns its bytes (with newline).
func BlockToBytes(block *hclwrite.Block) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(block)
	return f.Bytes()
}
