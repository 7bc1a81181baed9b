package model

// ConditionKind names how a dependency condition is decided.
type ConditionKind string

const (
	// ConditionExpression evaluates a restricted rule string.
	ConditionExpression ConditionKind = "expression"
	// ConditionFunction runs a user-authored function body.
	ConditionFunction ConditionKind = "function"
	// ConditionFieldValue compares one form field against a constant.
	ConditionFieldValue ConditionKind = "fieldValue"
)

// Operator is the comparison applied by a fieldValue condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpIn          Operator = "in"
	OpNotIn       Operator = "notIn"
	OpEmpty       Operator = "empty"
	OpNotEmpty    Operator = "notEmpty"
)

// DependencyCondition is one boolean gate on a component's behavior.
type DependencyCondition struct {
	Type       ConditionKind `json:"type,omitempty" yaml:"type,omitempty"`
	Expression string        `json:"expression,omitempty" yaml:"expression,omitempty"`
	Field      string        `json:"field,omitempty" yaml:"field,omitempty"`
	Operator   Operator      `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value      any           `json:"value,omitempty" yaml:"value,omitempty"`
	FnSource   string        `json:"fnSource,omitempty" yaml:"fnSource,omitempty"`

	// Default is the outcome used when evaluation fails. Nil means the
	// condition's result stays unset on failure.
	Default *bool `json:"default,omitempty" yaml:"default,omitempty"`
}

// Kind resolves the effective condition kind when Type is not explicit.
func (c DependencyCondition) Kind() ConditionKind {
	if c.Type != "" {
		return c.Type
	}
	if c.FnSource != "" {
		return ConditionFunction
	}
	if c.Expression != "" {
		return ConditionExpression
	}
	return ConditionFieldValue
}

// FilterRule maps a form field onto a query parameter of a remote data
// source, optionally transformed on the way out.
type FilterRule struct {
	SourceField string `json:"sourceField" yaml:"sourceField"`
	TargetParam string `json:"targetParam" yaml:"targetParam"`
	Transform   string `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// ComponentDependencies describes every runtime-derived aspect of a
// component. All members are optional.
type ComponentDependencies struct {
	Disabled *DependencyCondition `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Enabled  *DependencyCondition `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Visible  *DependencyCondition `json:"visible,omitempty" yaml:"visible,omitempty"`
	Required *DependencyCondition `json:"required,omitempty" yaml:"required,omitempty"`

	Label       *ComputedProperty `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder *ComputedProperty `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Value       *ComputedProperty `json:"value,omitempty" yaml:"value,omitempty"`
	Options     *ComputedProperty `json:"options,omitempty" yaml:"options,omitempty"`

	FilterBy []FilterRule `json:"filterBy,omitempty" yaml:"filterBy,omitempty"`
	ResetOn  []string     `json:"resetOn,omitempty" yaml:"resetOn,omitempty"`
}

// IsZero reports whether no dependency is declared. Safe on a nil receiver.
func (d *ComponentDependencies) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Disabled == nil && d.Enabled == nil && d.Visible == nil && d.Required == nil &&
		d.Label == nil && d.Placeholder == nil && d.Value == nil && d.Options == nil &&
		len(d.FilterBy) == 0 && len(d.ResetOn) == 0
}
