package persist

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// Format names the structural shapes the migrator can detect.
type Format string

const (
	// FormatPersisted is the current wire format: {version, form, ...}.
	FormatPersisted Format = "persisted"
	// FormatExport is the legacy builder export: {structure: [...], settings?}.
	FormatExport Format = "export"
	// FormatArray is a bare array of {id, type} component nodes.
	FormatArray Format = "array"
	// FormatUnknown means the payload matched nothing; loading must stop.
	FormatUnknown Format = "unknown"
)

// MigrationResult reports a migration attempt. Success=false means the
// caller must not proceed to load Data.
type MigrationResult struct {
	Success  bool     `json:"success"`
	Detected Format   `json:"detected"`
	Data     *PersistedForm `json:"data,omitempty"`
	Applied  []string `json:"applied,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// migrationStep transforms one schema version into the next. The chain is
// append-only: new versions add steps, past steps are never edited.
type migrationStep struct {
	from  string
	to    string
	apply func(form *PersistedForm) error
}

var migrationChain = []migrationStep{
	{from: "0", to: "1", apply: backfillDefaults},
}

// Migrate detects the structural format of input — raw JSON bytes, an
// unmarshalled value, or an already-typed PersistedForm — and transforms it
// forward to the current schema version. Unknown formats fail closed.
func Migrate(input any) MigrationResult {
	result := MigrationResult{Detected: FormatUnknown}

	payload, err := decodeInput(input)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	format := DetectFormat(payload)
	result.Detected = format

	var working map[string]any
	switch format {
	case FormatPersisted:
		working = payload.(map[string]any)
	case FormatExport:
		working = liftExport(payload.(map[string]any))
	case FormatArray:
		working = liftArray(payload.([]any))
	default:
		result.Errors = append(result.Errors,
			"persist: unrecognized form payload; expected a persisted form, a builder export, or a component array")
		return result
	}

	form, err := decodeForm(working)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	version := form.Version
	if version == "" {
		version = "0"
	}
	for version != CurrentVersion {
		step, ok := stepFrom(version)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("persist: no migration path from schema version %q", version))
			return result
		}
		if err := step.apply(form); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("persist: migration %s->%s failed: %v", step.from, step.to, err))
			return result
		}
		form.Version = step.to
		version = step.to
		result.Applied = append(result.Applied, step.from+"->"+step.to)
	}

	// Backfill is additive and idempotent, so running it on an
	// already-current form keeps migration a no-op in effect.
	if err := backfillDefaults(form); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Success = true
	result.Data = form
	return result
}

// DetectFormat classifies a decoded payload by structural shape.
func DetectFormat(payload any) Format {
	switch v := payload.(type) {
	case map[string]any:
		if _, hasForm := v["form"].(map[string]any); hasForm {
			if _, hasVersion := v["version"]; hasVersion {
				return FormatPersisted
			}
		}
		if _, hasStructure := v["structure"].([]any); hasStructure {
			return FormatExport
		}
		return FormatUnknown
	case []any:
		if len(v) == 0 {
			return FormatUnknown
		}
		for _, item := range v {
			node, ok := item.(map[string]any)
			if !ok {
				return FormatUnknown
			}
			if _, hasID := node["id"]; !hasID {
				return FormatUnknown
			}
			if _, hasType := node["type"]; !hasType {
				return FormatUnknown
			}
		}
		return FormatArray
	default:
		return FormatUnknown
	}
}

func decodeInput(input any) (any, error) {
	switch v := input.(type) {
	case nil:
		return nil, fmt.Errorf("persist: nil migration input")
	case []byte:
		var payload any
		if err := json.Unmarshal(v, &payload); err != nil {
			return nil, fmt.Errorf("persist: payload is not valid JSON: %w", err)
		}
		return payload, nil
	case string:
		return decodeInput([]byte(v))
	case *PersistedForm:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("persist: re-encode persisted form: %w", err)
		}
		return decodeInput(raw)
	default:
		return v, nil
	}
}

func decodeForm(working map[string]any) (*PersistedForm, error) {
	raw, err := json.Marshal(working)
	if err != nil {
		return nil, fmt.Errorf("persist: encode working payload: %w", err)
	}
	var form PersistedForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("persist: payload does not decode as a persisted form: %w", err)
	}
	return &form, nil
}

func stepFrom(version string) (migrationStep, bool) {
	for _, step := range migrationChain {
		if step.from == version {
			return step, true
		}
	}
	return migrationStep{}, false
}

// liftExport normalizes the legacy builder export {structure, settings} into
// the persisted envelope with an empty version so the chain runs.
func liftExport(payload map[string]any) map[string]any {
	form := map[string]any{
		"id":       payload["id"],
		"type":     "form",
		"children": payload["structure"],
	}
	out := map[string]any{"version": "", "form": form}
	if settings, ok := payload["settings"].(map[string]any); ok {
		out["metadata"] = map[string]any{
			"formName":    settings["name"],
			"description": settings["description"],
		}
	}
	return out
}

// liftArray wraps a bare component array in a synthetic form root.
func liftArray(nodes []any) map[string]any {
	return map[string]any{
		"version": "",
		"form": map[string]any{
			"type":     "form",
			"children": nodes,
		},
	}
}

// backfillDefaults fills the fields older payloads omit. It never overwrites
// a populated field (additive-only migration).
func backfillDefaults(form *PersistedForm) error {
	if form.Form == nil {
		return fmt.Errorf("persist: form has no component tree")
	}
	if form.Version == "" {
		form.Version = CurrentVersion
	}
	if form.Metadata.FormName == "" {
		form.Metadata.FormName = "Untitled form"
	}
	if form.DefaultLanguage == "" {
		form.DefaultLanguage = DefaultLanguage
	}
	if len(form.Languages) == 0 {
		form.Languages = []Language{{Code: DefaultLanguage, Name: "English"}}
	}
	if form.Localization == nil {
		form.Localization = map[string]map[string]string{}
	}
	normalizeNodeProps(form.Form)
	return nil
}

// normalizeNodeProps wraps any bare literal props found in legacy payloads
// so the whole tree obeys the current wrapping rule.
func normalizeNodeProps(node *Node) {
	if node == nil {
		return
	}
	for name, raw := range node.Props {
		if _, isMap := raw.(map[string]any); isMap {
			continue
		}
		if _, isComputed := raw.(model.ComputedProperty); isComputed {
			continue
		}
		node.Props[name] = map[string]any{"value": raw}
	}
	for _, child := range node.Children {
		normalizeNodeProps(child)
	}
}
