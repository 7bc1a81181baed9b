package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EncodeJSON renders a persisted form as indented JSON.
func EncodeJSON(form *PersistedForm) ([]byte, error) {
	if form == nil {
		return nil, fmt.Errorf("persist: cannot encode a nil form")
	}
	payload, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persist: encode json: %w", err)
	}
	return payload, nil
}

// EncodeYAML renders a persisted form as YAML.
func EncodeYAML(form *PersistedForm) ([]byte, error) {
	if form == nil {
		return nil, fmt.Errorf("persist: cannot encode a nil form")
	}
	payload, err := yaml.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("persist: encode yaml: %w", err)
	}
	return payload, nil
}

// Decode migrates a raw payload to the current version and returns the
// resulting form. It accepts both JSON and YAML input.
func Decode(payload []byte) (*PersistedForm, error) {
	input := payload
	if !json.Valid(payload) {
		converted, err := yamlToJSON(payload)
		if err != nil {
			return nil, err
		}
		input = converted
	}
	result := Migrate(input)
	if !result.Success {
		return nil, fmt.Errorf("persist: %s", strings.Join(result.Errors, "; "))
	}
	return result.Data, nil
}

// LoadFile reads and migrates a persisted form from disk, selecting the
// codec by extension (.json, .yaml, .yml).
func LoadFile(path string) (*PersistedForm, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		converted, err := yamlToJSON(payload)
		if err != nil {
			return nil, err
		}
		return Decode(converted)
	default:
		return Decode(payload)
	}
}

// yamlToJSON converts an arbitrary YAML document into JSON bytes so the
// migrator only deals with one representation.
func yamlToJSON(payload []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("persist: payload is neither valid JSON nor YAML: %w", err)
	}
	converted, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("persist: convert yaml payload: %w", err)
	}
	return converted, nil
}

// normalizeYAML rewrites map[any]any trees (yaml.v3 emits them for some
// documents) into map[string]any so json.Marshal accepts them.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
