// Package validation builds structural validation schemas from declarative
// rule lists and validates values against them.
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// DataType selects how rule keys are interpreted for a value.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeDate    DataType = "date"
	TypeArray   DataType = "array"
	TypeObject  DataType = "object"
)

// Rule keys understood by the engine. min/max are interpreted per data type:
// character length for strings, numeric bounds for numbers, date bounds for
// dates, cardinality for arrays.
const (
	RuleRequired   = "required"
	RuleMin        = "min"
	RuleMax        = "max"
	RuleLength     = "length"
	RuleRegex      = "regex"
	RuleEmail      = "email"
	RuleURL        = "url"
	RuleUUID       = "uuid"
	RuleIP         = "ip"
	RuleDatetime   = "datetime"
	RuleIncludes   = "includes"
	RuleStartsWith = "startsWith"
	RuleEndsWith   = "endsWith"
	RuleLessThan   = "lessThan"
	RuleMoreThan   = "moreThan"
	RuleInteger    = "integer"
	RuleMultipleOf = "multipleOf"
)

// Rule is one declarative validation constraint. ValidateWhen, when present,
// gates the rule: it is skipped for a validation pass if the gate evaluates
// false. Message overrides the engine's default message template.
type Rule struct {
	Key          string                     `json:"key"`
	Args         map[string]any             `json:"args,omitempty"`
	Message      string                     `json:"message,omitempty"`
	ValidateWhen *model.DependencyCondition `json:"validateWhen,omitempty"`
}

// Limit returns the rule's numeric threshold from Args ("limit" or "value").
func (r Rule) Limit() (float64, bool) {
	for _, name := range []string{"limit", "value"} {
		if raw, ok := r.Args[name]; ok {
			if n, ok := expr.CoerceNumber(raw); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// StringArg returns a string argument by name.
func (r Rule) StringArg(name string) string {
	raw, ok := r.Args[name]
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// RulesFromAny decodes a raw rules payload (typically a component's
// `validation` prop after JSON unmarshalling) into typed rules.
func RulesFromAny(raw any) ([]Rule, error) {
	if raw == nil {
		return nil, nil
	}
	if rules, ok := raw.([]Rule); ok {
		return rules, nil
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("validation: decode rules: %w", err)
	}
	var rules []Rule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return nil, fmt.Errorf("validation: decode rules: %w", err)
	}
	return rules, nil
}

// Issue is one failed rule with its user-facing message.
type Issue struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result collects every applicable error from a validation pass, not just
// the first.
type Result struct {
	Success bool    `json:"success"`
	Errors  []Issue `json:"errors,omitempty"`
}

// Messages returns the error messages in order.
func (r Result) Messages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make([]string, len(r.Errors))
	for i, issue := range r.Errors {
		out[i] = issue.Message
	}
	return out
}
