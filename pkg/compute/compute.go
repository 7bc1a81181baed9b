// Package compute resolves declarative computed properties (static values,
// script bodies, localization keys) against a form data context.
package compute

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// Context carries the scoped data maps a property is resolved against. Data
// is the component's own scope (for repeater rows this is the row), Parent
// the enclosing scope, Root the whole form snapshot.
type Context struct {
	Data   map[string]any
	Parent map[string]any
	Root   map[string]any
}

// ExprContext converts the compute context to the expression evaluator's.
func (c Context) ExprContext() expr.Context {
	return expr.Context{Data: c.Data, Parent: c.Parent, Root: c.Root}
}

// Locale returns the active locale from the data context, falling back to
// the root scope and then DefaultLocale.
func (c Context) Locale() string {
	if locale, ok := c.Data[LocaleKey].(string); ok && strings.TrimSpace(locale) != "" {
		return locale
	}
	if locale, ok := c.Root[LocaleKey].(string); ok && strings.TrimSpace(locale) != "" {
		return locale
	}
	return DefaultLocale
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithTranslator injects the localization collaborator.
func WithTranslator(t Translator) Option {
	return func(e *Evaluator) { e.translator = t }
}

// WithLogger injects the logger used for evaluation warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithScriptEngine overrides the script engine used for function properties.
func WithScriptEngine(engine *ScriptEngine) Option {
	return func(e *Evaluator) {
		if engine != nil {
			e.scripts = engine
		}
	}
}

// Evaluator resolves ComputedProperty payloads. Script failures are caught,
// logged at warn level, and surfaced as nil; they never propagate.
type Evaluator struct {
	translator Translator
	scripts    *ScriptEngine
	logger     zerolog.Logger
}

// New constructs an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		scripts: NewScriptEngine(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate resolves prop against ctx. Failures degrade to nil.
func (e *Evaluator) Evaluate(prop model.ComputedProperty, ctx Context) any {
	value, err := e.EvaluateErr(prop, ctx)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("kind", string(prop.Kind())).
			Msg("computed property evaluation failed")
		return nil
	}
	return value
}

// EvaluateErr resolves prop against ctx, surfacing evaluation errors to the
// caller. Consumers that need a failure policy other than "treat as nil"
// (the conditional renderer's fail-open, for one) use this form.
func (e *Evaluator) EvaluateErr(prop model.ComputedProperty, ctx Context) (any, error) {
	switch prop.Kind() {
	case ComputeFunctionKind:
		return e.scripts.Run(prop.FnSource, ScriptBindings(ctx))
	case ComputeLocalizationKind:
		return e.localize(prop, ctx), nil
	default:
		return prop.Value, nil
	}
}

// Variant aliases keep call sites terse without re-exporting model constants.
const (
	ComputeFunctionKind     = model.ComputeFunction
	ComputeLocalizationKind = model.ComputeLocalization
)

// ScriptBindings builds the predeclared scope a function property sees:
// `data`, `parent_data`, `root_data`, and the legacy `form_data` alias.
func ScriptBindings(ctx Context) map[string]any {
	data := ctx.Data
	if data == nil {
		data = map[string]any{}
	}
	parent := ctx.Parent
	if parent == nil {
		parent = map[string]any{}
	}
	root := ctx.Root
	if root == nil {
		root = data
	}
	return map[string]any{
		"data":        data,
		"parent_data": parent,
		"root_data":   root,
		"form_data":   data,
	}
}

// localize resolves a localization property. A missing translator, key, or
// entry yields the empty string.
func (e *Evaluator) localize(prop model.ComputedProperty, ctx Context) string {
	key, _ := prop.Value.(string)
	key = strings.TrimSpace(key)
	if key == "" || e.translator == nil {
		return ""
	}
	msg, err := e.translator.Translate(ctx.Locale(), key)
	if err != nil {
		return ""
	}
	return msg
}
