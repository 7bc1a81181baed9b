package model

import "encoding/json"

// ComputeType names how a computed property produces its value.
type ComputeType string

const (
	// ComputeStatic returns the stored value as-is.
	ComputeStatic ComputeType = "static"
	// ComputeFunction runs the property's function source against form data.
	ComputeFunction ComputeType = "function"
	// ComputeLocalization resolves the stored value as a translation key.
	ComputeLocalization ComputeType = "localization"
)

// ComputedProperty is a prop value that may be derived at runtime instead of
// stored literally. The zero value is a static property holding nil.
type ComputedProperty struct {
	ComputeType ComputeType `json:"computeType,omitempty" yaml:"computeType,omitempty"`
	Value       any         `json:"value,omitempty" yaml:"value,omitempty"`
	FnSource    string      `json:"fnSource,omitempty" yaml:"fnSource,omitempty"`
}

// Static wraps a literal value.
func Static(value any) ComputedProperty {
	return ComputedProperty{ComputeType: ComputeStatic, Value: value}
}

// Function wraps a function body to be evaluated against form data.
func Function(source string) ComputedProperty {
	return ComputedProperty{ComputeType: ComputeFunction, FnSource: source}
}

// Localized wraps a translation key.
func Localized(key string) ComputedProperty {
	return ComputedProperty{ComputeType: ComputeLocalization, Value: key}
}

// Kind resolves the effective compute type. An explicit type wins; a bare
// function source implies function; everything else is static.
func (p ComputedProperty) Kind() ComputeType {
	if p.ComputeType != "" {
		return p.ComputeType
	}
	if p.FnSource != "" {
		return ComputeFunction
	}
	return ComputeStatic
}

// IsZero reports whether the property carries neither a value nor a source.
func (p ComputedProperty) IsZero() bool {
	return p.ComputeType == "" && p.Value == nil && p.FnSource == ""
}

// ComputedPropertyFromAny recognises a computed-property payload in decoded
// data. It accepts the struct itself, a pointer to it, or a generic map
// carrying a computeType or fnSource key; plain values report false.
func ComputedPropertyFromAny(raw any) (ComputedProperty, bool) {
	switch v := raw.(type) {
	case ComputedProperty:
		return v, true
	case *ComputedProperty:
		if v == nil {
			return ComputedProperty{}, false
		}
		return *v, true
	case map[string]any:
		if !looksComputed(v) {
			return ComputedProperty{}, false
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return ComputedProperty{}, false
		}
		var prop ComputedProperty
		if err := json.Unmarshal(encoded, &prop); err != nil {
			return ComputedProperty{}, false
		}
		return prop, true
	default:
		return ComputedProperty{}, false
	}
}

func looksComputed(raw map[string]any) bool {
	if _, ok := raw["fnSource"]; ok {
		return true
	}
	if _, ok := raw["computeType"]; ok {
		return true
	}
	return false
}
