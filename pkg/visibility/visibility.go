// Package visibility decides whether a component subtree renders at all,
// based on a boolean-typed `renderWhen` computed property.
package visibility

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// Option customises a Renderer.
type Option func(*Renderer)

// WithComputeEvaluator injects the computed-property evaluator.
func WithComputeEvaluator(eval *compute.Evaluator) Option {
	return func(r *Renderer) {
		if eval != nil {
			r.compute = eval
		}
	}
}

// WithLogger injects the warning logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// Renderer evaluates renderWhen properties. Policy on failure is fail-open:
// an expression that cannot be evaluated renders the component rather than
// silently hiding authored content. This is deliberately the opposite of the
// validation engine's fail-closed gates.
type Renderer struct {
	compute *compute.Evaluator
	exprs   *expr.Evaluator
	logger  zerolog.Logger
}

// New constructs a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		compute: compute.New(),
		exprs:   expr.New(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ShouldRender resolves a renderWhen property against ctx. A nil property
// always renders. Non-boolean results are coerced by truthiness.
func (r *Renderer) ShouldRender(prop *model.ComputedProperty, ctx compute.Context) bool {
	if prop == nil || prop.IsZero() {
		return true
	}

	value, err := r.compute.EvaluateErr(*prop, ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("renderWhen evaluation failed; rendering")
		return true
	}
	return r.coerce(value, ctx)
}

// coerce maps an evaluated renderWhen value onto a render decision. The value
// may itself be an expression descriptor ({type: "expression", expression:
// ...}) or a bare expression string carried as a static value.
func (r *Renderer) coerce(value any, ctx compute.Context) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return v
	case map[string]any:
		if rule, ok := expressionDescriptor(v); ok {
			return r.evalRule(rule, ctx)
		}
		return expr.Truthy(v)
	case string:
		if looksLikeRule(v) {
			return r.evalRule(v, ctx)
		}
		return expr.Truthy(v)
	default:
		return expr.Truthy(v)
	}
}

func (r *Renderer) evalRule(rule string, ctx compute.Context) bool {
	ok, err := r.exprs.Eval(rule, ctx.ExprContext())
	if err != nil {
		r.logger.Warn().Err(err).Str("rule", rule).Msg("renderWhen expression failed; rendering")
		return true
	}
	return ok
}

func expressionDescriptor(raw map[string]any) (string, bool) {
	kind, _ := raw["type"].(string)
	if strings.TrimSpace(kind) != string(model.ConditionExpression) {
		return "", false
	}
	rule, _ := raw["expression"].(string)
	if strings.TrimSpace(rule) == "" {
		return "", false
	}
	return rule, true
}

// looksLikeRule reports whether a static string value reads as an expression
// rather than a display literal.
func looksLikeRule(s string) bool {
	for _, marker := range []string{"==", "!=", ">=", "<=", "&&", "||", ">", "<", "!"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
