package model

import "strings"

// ComponentType tags a node with one of the registered widget kinds.
type ComponentType string

// Well-known prop names consumed by the runtime. Components may carry
// arbitrary additional props; these are the ones the evaluators understand.
const (
	PropDataKey      = "dataKey"
	PropLabel        = "label"
	PropPlaceholder  = "placeholder"
	PropHelperText   = "helperText"
	PropDefaultValue = "defaultValue"
	PropDisabled     = "disabled"
	PropRequired     = "required"
	PropOptions      = "options"
	PropRenderWhen   = "renderWhen"
	PropValidation   = "validation"
	PropActions      = "actions"
	PropDependencies = "dependencies"
)

// ComponentNode is a node in the form tree. Props values are either plain
// literals or ComputedProperty payloads; the evaluators resolve them against
// the current data context. Children is only meaningful for container kinds.
type ComponentNode struct {
	ID           string                 `json:"id" yaml:"id"`
	Type         ComponentType          `json:"type" yaml:"type"`
	Props        map[string]any         `json:"props,omitempty" yaml:"props,omitempty"`
	Dependencies *ComponentDependencies `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Children     []*ComponentNode       `json:"children,omitempty" yaml:"children,omitempty"`
}

// Prop returns the raw prop payload for name.
func (n *ComponentNode) Prop(name string) (any, bool) {
	if n == nil || len(n.Props) == 0 {
		return nil, false
	}
	value, ok := n.Props[name]
	return value, ok
}

// StringProp returns a prop coerced to a trimmed string. Computed props and
// non-string literals yield "".
func (n *ComponentNode) StringProp(name string) string {
	raw, ok := n.Prop(name)
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// DataKey returns the store binding key for this component, empty when the
// component is not bound to form data.
func (n *ComponentNode) DataKey() string {
	return n.StringProp(PropDataKey)
}

// SetProp assigns a prop, allocating the map on first use.
func (n *ComponentNode) SetProp(name string, value any) {
	if n == nil {
		return
	}
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[name] = value
}
