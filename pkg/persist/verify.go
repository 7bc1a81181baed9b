package persist

import (
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// VerifyResult reports a round-trip comparison. Differences confined to the
// internal representation of computed properties (an explicit "static"
// compute type against an implied one, say) are expected and demoted to
// warnings; any other divergence is an error.
type VerifyResult struct {
	Success  bool     `json:"success"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Verify compares two persisted forms for semantic equality, ignoring
// regenerated ids and timestamps.
func Verify(original, roundTripped *PersistedForm) VerifyResult {
	var result VerifyResult
	if original == nil || roundTripped == nil {
		result.Errors = append(result.Errors, "persist: cannot verify a nil form")
		return result
	}

	left, err := canonical(original)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	right, err := canonical(roundTripped)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if diff := cmp.Diff(left, right); diff != "" {
		result.Errors = append(result.Errors, "persist: round-trip mismatch:\n"+diff)
		return result
	}

	// Semantically equal; surface raw representation drift as warnings.
	rawLeft, _ := plain(original)
	rawRight, _ := plain(roundTripped)
	if diff := cmp.Diff(rawLeft, rawRight); diff != "" {
		result.Warnings = append(result.Warnings,
			"persist: computed-property representation differs (semantics preserved):\n"+diff)
	}

	result.Success = true
	return result
}

// plain reduces a form to generic JSON data so cmp treats both sides alike.
func plain(form *PersistedForm) (map[string]any, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("persist: encode for verify: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("persist: decode for verify: %w", err)
	}
	return out, nil
}

// canonical normalizes a form for semantic comparison: volatile fields
// (top-level id, timestamps) are dropped and computed-property maps are
// reduced to their meaningful members.
func canonical(form *PersistedForm) (map[string]any, error) {
	out, err := plain(form)
	if err != nil {
		return nil, err
	}
	delete(out, "id")
	if meta, ok := out["metadata"].(map[string]any); ok {
		delete(meta, "createdAt")
		delete(meta, "updatedAt")
	}
	if node, ok := out["form"].(map[string]any); ok {
		canonicalizeNode(node)
	}
	return out, nil
}

func canonicalizeNode(node map[string]any) {
	if props, ok := node["props"].(map[string]any); ok {
		for name, raw := range props {
			prop, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			props[name] = canonicalizeProp(prop)
		}
	}
	if children, ok := node["children"].([]any); ok {
		for _, child := range children {
			if childNode, ok := child.(map[string]any); ok {
				canonicalizeNode(childNode)
			}
		}
	}
}

// canonicalizeProp strips the redundant spellings of the same property:
// explicit "static" compute types, nil values, empty fnSource.
func canonicalizeProp(prop map[string]any) map[string]any {
	out := make(map[string]any, len(prop))
	for key, value := range prop {
		if value == nil || value == "" {
			continue
		}
		out[key] = value
	}
	if out["computeType"] == string("static") {
		delete(out, "computeType")
	}
	return out
}
