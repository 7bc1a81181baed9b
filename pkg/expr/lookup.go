package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type scope int

const (
	scopeData scope = iota
	scopeParent
	scopeRoot
)

// splitScope strips the scope prefix from an identifier and returns the
// remaining dot path. Bare identifiers belong to the data scope.
func splitScope(identifier string) (scope, string) {
	trimmed := strings.TrimSpace(identifier)
	lower := strings.ToLower(trimmed)
	for prefix, sc := range map[string]scope{
		"data.":       scopeData,
		"formdata.":   scopeData,
		"parent.":     scopeParent,
		"parentdata.": scopeParent,
		"root.":       scopeRoot,
		"rootdata.":   scopeRoot,
	} {
		if strings.HasPrefix(lower, prefix) {
			return sc, strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return scopeData, trimmed
}

// Lookup resolves an identifier against the context scopes.
func Lookup(ctx Context, identifier string) (any, bool) {
	sc, path := splitScope(identifier)
	if path == "" {
		return nil, false
	}
	switch sc {
	case scopeParent:
		return lookupMap(ctx.Parent, path)
	case scopeRoot:
		return lookupMap(ctx.Root, path)
	default:
		return lookupMap(ctx.Data, path)
	}
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}

	// Prefer exact match for dotted keys.
	if v, ok := values[path]; ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	var current any = values
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

// Truthy reports the truthiness of a data value: nil, false, empty strings,
// zero numbers, and empty collections are false; everything else is true.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// CoerceBool converts a data value into a bool. The second return reports
// whether the input carried a value at all.
func CoerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return Truthy(value), true
	}
}

// CoerceNumber converts a data value into a float64 when possible.
func CoerceNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// CoerceString renders a data value as a string; nil becomes "".
func CoerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
