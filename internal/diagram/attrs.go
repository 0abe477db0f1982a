package diagram

import "encoding/json"

// Attribute getters tolerate missing keys and wrong types by returning the
// zero value. Component attributes hold numbers as json.Number; the other
// numeric cases cover maps built by callers.

// GetStr returns a string attribute.
func GetStr(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// GetBool returns a bool attribute.
func GetBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// GetInt returns an integer attribute.
func GetInt(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		f, _ := n.Float64()
		return int(f)
	default:
		return 0
	}
}

// GetMap returns a nested object attribute.
func GetMap(m map[string]any, key string) map[string]any {
	mm, _ := m[key].(map[string]any)
	return mm
}

// GetStrMap returns the string-valued entries of a nested object (e.g. tags).
func GetStrMap(m map[string]any, key string) map[string]string {
	switch raw := m[key].(type) {
	case map[string]string:
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			out[k] = v
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// GetStrList returns the string elements of a list attribute.
func GetStrList(m map[string]any, key string) []string {
	switch raw := m[key].(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
