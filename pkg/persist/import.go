package persist

import (
	"encoding/json"
	"errors"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formruntime/pkg/model"
)

// ImportOptions parameterise Import.
type ImportOptions struct {
	// Sanitize strips markup from user-facing string props (label,
	// placeholder, helperText) on import. Off by default so round-trips
	// stay lossless; turn it on when loading forms from untrusted authors.
	Sanitize bool
}

// sanitized prop names when ImportOptions.Sanitize is set.
var sanitizedProps = map[string]struct{}{
	model.PropLabel:       {},
	model.PropPlaceholder: {},
	model.PropHelperText:  {},
}

// Import converts a persisted form back into a component tree, inverting the
// export wrapping rule: a single-key {"value": v} map unwraps to the literal
// v; payloads carrying fnSource/computeType decode as computed properties.
func Import(form *PersistedForm, opts ImportOptions) (*model.ComponentNode, error) {
	if form == nil || form.Form == nil {
		return nil, errors.New("persist: persisted form has no component tree")
	}

	var policy *bluemonday.Policy
	if opts.Sanitize {
		policy = bluemonday.StrictPolicy()
	}
	return importNode(form.Form, policy), nil
}

func importNode(node *Node, policy *bluemonday.Policy) *model.ComponentNode {
	out := &model.ComponentNode{
		ID:           node.ID,
		Type:         model.ComponentType(node.Type),
		Dependencies: node.Dependencies,
	}

	if len(node.Props) > 0 {
		out.Props = make(map[string]any, len(node.Props))
		for name, raw := range node.Props {
			if name == model.PropDependencies && out.Dependencies == nil {
				if deps, ok := dependenciesFromProp(raw); ok {
					out.Dependencies = deps
					continue
				}
			}
			value := UnwrapProp(raw)
			if policy != nil {
				value = sanitizeProp(policy, name, value)
			}
			out.Props[name] = value
		}
	}

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		out.Children = append(out.Children, importNode(child, policy))
	}
	return out
}

// dependenciesFromProp decodes a dependencies block attached under
// props.dependencies. Authoring tools write the block there; the runtime
// models it as a node-level field, so import lifts it into the typed slot.
// Payloads that don't decode to a non-empty block stay as opaque props.
func dependenciesFromProp(raw any) (*model.ComponentDependencies, bool) {
	if wrapped, ok := raw.(map[string]any); ok && isWrappedLiteral(wrapped) {
		raw = wrapped["value"]
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var deps model.ComponentDependencies
	if err := json.Unmarshal(encoded, &deps); err != nil {
		return nil, false
	}
	if deps.IsZero() {
		return nil, false
	}
	return &deps, true
}

// UnwrapProp applies the import unwrapping rule to one wire prop payload.
func UnwrapProp(raw any) any {
	switch v := raw.(type) {
	case model.ComputedProperty:
		return v
	case map[string]any:
		if isWrappedLiteral(v) {
			return v["value"]
		}
		if prop, ok := model.ComputedPropertyFromAny(v); ok {
			return prop
		}
		return v
	default:
		return raw
	}
}

func sanitizeProp(policy *bluemonday.Policy, name string, value any) any {
	if _, watch := sanitizedProps[name]; !watch {
		return value
	}
	if s, ok := value.(string); ok {
		return policy.Sanitize(s)
	}
	return value
}
