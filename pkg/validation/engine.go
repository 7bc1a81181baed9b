package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// Option customises an Engine.
type Option func(*Engine)

// WithLogger injects the warning logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine compiles rule lists into schemas and validates values against them.
// Format rules (email, url, uuid, ip, datetime) delegate to
// go-playground/validator. Gate evaluation failures keep the rule active:
// over-validating is safer than silently under-validating, the deliberate
// inverse of the conditional renderer's fail-open policy.
type Engine struct {
	formats *validator.Validate
	exprs   *expr.Evaluator
	scripts *compute.ScriptEngine
	logger  zerolog.Logger
}

// NewEngine constructs an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		formats: validator.New(),
		exprs:   expr.New(),
		scripts: compute.NewScriptEngine(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Schema is an ordered, compiled rule list bound to a data type. Gates are
// evaluated per validation pass, not at compile time.
type Schema struct {
	DataType DataType
	rules    []compiledRule
}

type compiledRule struct {
	rule    Rule
	pattern *regexp.Regexp
}

// BuildSchema compiles rules for a data type. Rules with malformed static
// arguments (an invalid regex, for one) fail the build.
func (e *Engine) BuildSchema(rules []Rule, dataType DataType) (Schema, error) {
	if dataType == "" {
		dataType = TypeString
	}
	schema := Schema{DataType: dataType}
	for _, rule := range rules {
		compiled := compiledRule{rule: rule}
		if rule.Key == RuleRegex {
			raw := rule.StringArg("pattern")
			if raw == "" {
				return Schema{}, fmt.Errorf("validation: regex rule needs a pattern argument")
			}
			pattern, err := regexp.Compile(raw)
			if err != nil {
				return Schema{}, fmt.Errorf("validation: compile pattern %q: %w", raw, err)
			}
			compiled.pattern = pattern
		}
		schema.rules = append(schema.rules, compiled)
	}
	return schema, nil
}

// Validate runs every active rule against value and collects all errors.
// formData feeds validateWhen gates. The built-in rules are synchronous and
// only honour cancellation between rules; an interrupted pass reports
// failure so it can never be mistaken for a passing one.
func (e *Engine) Validate(ctx context.Context, value any, schema Schema, formData map[string]any) Result {
	result := Result{Success: true}
	for _, compiled := range schema.rules {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.Errors = append(result.Errors, Issue{Rule: "canceled", Message: "Validation was interrupted"})
			return result
		}
		if !e.gateActive(compiled.rule, formData) {
			continue
		}
		if issue := e.check(compiled, schema.DataType, value, formData); issue != nil {
			result.Success = false
			result.Errors = append(result.Errors, *issue)
		}
	}
	return result
}

// gateActive evaluates a rule's validateWhen gate. No gate, or a gate that
// cannot be evaluated, keeps the rule active.
func (e *Engine) gateActive(rule Rule, formData map[string]any) bool {
	gate := rule.ValidateWhen
	if gate == nil {
		return true
	}
	active, err := e.runGate(*gate, formData)
	if err != nil {
		e.logger.Warn().Err(err).Str("rule", rule.Key).
			Msg("validateWhen gate failed; keeping rule active")
		return true
	}
	return active
}

func (e *Engine) runGate(gate model.DependencyCondition, formData map[string]any) (bool, error) {
	ectx := expr.Context{Data: formData, Root: formData}
	switch gate.Kind() {
	case model.ConditionExpression:
		return e.exprs.Eval(gate.Expression, ectx)
	case model.ConditionFunction:
		value, err := e.scripts.Run(gate.FnSource, compute.ScriptBindings(compute.Context{Data: formData, Root: formData}))
		if err != nil {
			return false, err
		}
		return expr.Truthy(value), nil
	default:
		got, _ := expr.Lookup(ectx, gate.Field)
		return gateCompare(gate, got)
	}
}

func (e *Engine) check(compiled compiledRule, dataType DataType, value any, formData map[string]any) *Issue {
	rule := compiled.rule

	if rule.Key == RuleRequired {
		if isAbsent(value) {
			return fail(rule, "This field is required")
		}
		return nil
	}
	// Non-required rules never fire on an absent value.
	if isAbsent(value) {
		return nil
	}

	switch dataType {
	case TypeNumber:
		return e.checkNumber(rule, value)
	case TypeDate:
		return e.checkDate(rule, value)
	case TypeArray:
		return e.checkArray(rule, value)
	case TypeBoolean, TypeObject:
		return nil
	default:
		return e.checkString(compiled, value)
	}
}

func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// fail builds the rule's issue, preferring the rule-supplied message over the
// engine default.
func fail(rule Rule, defaultMessage string) *Issue {
	message := strings.TrimSpace(rule.Message)
	if message == "" {
		message = defaultMessage
	}
	return &Issue{Rule: rule.Key, Message: message}
}
