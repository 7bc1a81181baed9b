// Package deps evaluates a component's declarative dependencies block into
// derived state: enablement, visibility, computed label/value/options,
// cascading filter parameters, and reset triggers.
package deps

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/store"
)

// Context carries one evaluation pass's inputs for a single component.
type Context struct {
	Data   map[string]any
	Parent map[string]any
	Root   map[string]any
	// CurrentKey is the component's bound data key; value write-backs and
	// reset clears target it.
	CurrentKey string
	// FormMode is true at runtime. In authoring/preview contexts dependency
	// evaluation is skipped entirely and static defaults apply.
	FormMode bool
}

func (c Context) computeContext() compute.Context {
	return compute.Context{Data: c.Data, Parent: c.Parent, Root: c.Root}
}

// Result is the derived state of one component after a pass. Nil pointer
// members mean the corresponding dependency was absent or failed without a
// default. Patches carry deferred store mutations (value write-back, reset
// clears) to be committed after the whole pass completes.
type Result struct {
	Disabled *bool
	Visible  *bool
	Required *bool

	Label       any
	Placeholder any
	Value       any
	ValueSet    bool
	Options     any
	OptionsSet  bool

	FilterParams map[string]any
	Patches      []store.Patch
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithComputeEvaluator injects the computed-property evaluator.
func WithComputeEvaluator(eval *compute.Evaluator) Option {
	return func(e *Evaluator) {
		if eval != nil {
			e.compute = eval
		}
	}
}

// WithLogger injects the warning logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// Evaluator resolves ComponentDependencies blocks. It is stateful only for
// resetOn tracking, which remembers the previously observed snapshot of each
// watched field per component.
type Evaluator struct {
	compute *compute.Evaluator
	scripts *compute.ScriptEngine
	exprs   *expr.Evaluator
	logger  zerolog.Logger
	resets  *resetTracker
}

// New constructs an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		compute: compute.New(),
		scripts: compute.NewScriptEngine(),
		exprs:   expr.New(),
		logger:  zerolog.Nop(),
		resets:  newResetTracker(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ForgetComponent drops reset-tracking state for a component, typically when
// the form session is reloaded.
func (e *Evaluator) ForgetComponent(componentID string) {
	e.resets.forget(componentID)
}

// EvaluateAll resolves every member of deps for the component identified by
// componentID. When ctx.FormMode is false the block is skipped wholesale and
// an empty Result is returned.
func (e *Evaluator) EvaluateAll(componentID string, deps *model.ComponentDependencies, ctx Context) Result {
	var result Result
	if deps.IsZero() || !ctx.FormMode {
		return result
	}

	e.evaluateEnablement(deps, ctx, &result)

	if deps.Visible != nil {
		if value, ok := e.evalCondition(*deps.Visible, ctx); ok {
			result.Visible = &value
		}
	}
	if deps.Required != nil {
		if value, ok := e.evalCondition(*deps.Required, ctx); ok {
			result.Required = &value
		}
	}

	cctx := ctx.computeContext()
	if deps.Label != nil {
		result.Label = e.compute.Evaluate(*deps.Label, cctx)
	}
	if deps.Placeholder != nil {
		result.Placeholder = e.compute.Evaluate(*deps.Placeholder, cctx)
	}
	if deps.Options != nil {
		result.Options = e.compute.Evaluate(*deps.Options, cctx)
		result.OptionsSet = true
	}
	if deps.Value != nil {
		result.Value = e.compute.Evaluate(*deps.Value, cctx)
		result.ValueSet = true
		if ctx.CurrentKey != "" {
			result.Patches = append(result.Patches, store.Patch{
				Key:   ctx.CurrentKey,
				Value: result.Value,
			})
		}
	}

	result.FilterParams = e.filterParams(deps.FilterBy, ctx)

	if changed := e.resets.observe(componentID, deps.ResetOn, ctx.Data); len(changed) > 0 && ctx.CurrentKey != "" {
		result.Patches = append(result.Patches, store.Patch{
			Key:    ctx.CurrentKey,
			Delete: true,
		})
	}

	return result
}

// evaluateEnablement resolves the disabled/enabled pair. The two are
// semantically inverse; when both are present disabled wins.
func (e *Evaluator) evaluateEnablement(deps *model.ComponentDependencies, ctx Context, result *Result) {
	if deps.Disabled != nil {
		if value, ok := e.evalCondition(*deps.Disabled, ctx); ok {
			result.Disabled = &value
			return
		}
	}
	if deps.Enabled != nil {
		if value, ok := e.evalCondition(*deps.Enabled, ctx); ok {
			disabled := !value
			result.Disabled = &disabled
		}
	}
}

// evalCondition evaluates one condition variant. On failure the condition's
// default applies; without a default the condition is reported unset.
func (e *Evaluator) evalCondition(cond model.DependencyCondition, ctx Context) (bool, bool) {
	value, err := e.runCondition(cond, ctx)
	if err == nil {
		return value, true
	}
	e.logger.Warn().Err(err).
		Str("kind", string(cond.Kind())).
		Msg("dependency condition failed")
	if cond.Default != nil {
		return *cond.Default, true
	}
	return false, false
}

func (e *Evaluator) runCondition(cond model.DependencyCondition, ctx Context) (bool, error) {
	switch cond.Kind() {
	case model.ConditionExpression:
		return e.exprs.Eval(cond.Expression, ctx.computeContext().ExprContext())
	case model.ConditionFunction:
		value, err := e.scripts.Run(cond.FnSource, compute.ScriptBindings(ctx.computeContext()))
		if err != nil {
			return false, err
		}
		return expr.Truthy(value), nil
	case model.ConditionFieldValue:
		if cond.Field == "" {
			return false, fmt.Errorf("deps: fieldValue condition needs a field")
		}
		return applyOperator(cond.Operator, ctx.Data[cond.Field], cond.Value)
	default:
		return false, fmt.Errorf("deps: unknown condition kind %q", cond.Kind())
	}
}

// filterParams reduces filterBy rules into a target-param map for cascading
// option sources. A transform, when present, is a script evaluated with the
// source value bound as `value`.
func (e *Evaluator) filterParams(rules []model.FilterRule, ctx Context) map[string]any {
	if len(rules) == 0 {
		return nil
	}
	params := make(map[string]any, len(rules))
	for _, rule := range rules {
		if rule.SourceField == "" || rule.TargetParam == "" {
			continue
		}
		value := ctx.Data[rule.SourceField]
		if rule.Transform != "" {
			bindings := compute.ScriptBindings(ctx.computeContext())
			bindings["value"] = value
			transformed, err := e.scripts.Run(rule.Transform, bindings)
			if err != nil {
				e.logger.Warn().Err(err).
					Str("sourceField", rule.SourceField).
					Msg("filter transform failed; using raw value")
			} else {
				value = transformed
			}
		}
		params[rule.TargetParam] = value
	}
	if len(params) == 0 {
		return nil
	}
	return params
}
