// Package actions executes ordered lists of named actions in response to
// component events, mutating the data store and emitting UI signals.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/store"
)

// Built-in action names.
const (
	ActionValidate   = "validate"
	ActionClear      = "clear"
	ActionReset      = "reset"
	ActionLog        = "log"
	ActionAddRow     = "addRow"
	ActionRemoveRow  = "removeRow"
	ActionOpenModal  = "openModal"
	ActionCloseModal = "closeModal"
)

// Definition is a custom action: a script body executed with the event
// context in scope.
type Definition struct {
	Body string `json:"body" yaml:"body"`
}

// Event carries everything an action can see: the event kind, the sending
// component, the live store, caller-supplied args, and the data context.
type Event struct {
	Type          string
	Sender        string
	Store         *store.Store
	Args          map[string]any
	RenderedProps map[string]any
	Value         any
	Data          map[string]any
	Parent        map[string]any
	Root          map[string]any
}

// ValidateFunc is the hook the validate built-in delegates to; the session
// wires it to the validation engine so the action package stays decoupled.
type ValidateFunc func(ctx context.Context, ev Event) (any, error)

// Option customises a Runner.
type Option func(*Runner)

// WithDefinitions registers the custom action table, usually the persisted
// form's `actions` block.
func WithDefinitions(defs map[string]Definition) Option {
	return func(r *Runner) {
		for name, def := range defs {
			r.defs[strings.TrimSpace(name)] = def
		}
	}
}

// WithSignalHub injects the hub modal signals are emitted on.
func WithSignalHub(hub *SignalHub) Option {
	return func(r *Runner) {
		if hub != nil {
			r.signals = hub
		}
	}
}

// WithValidateFunc wires the validate built-in.
func WithValidateFunc(fn ValidateFunc) Option {
	return func(r *Runner) { r.validate = fn }
}

// WithLogger injects the logger used by the log built-in and for batch
// failure reporting.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// Runner resolves action names to built-ins or custom definitions and
// executes them. Error handling is two-tier: Execute propagates an action's
// error to the caller, while ExecuteAll isolates each action in the batch,
// recording nil for a failed action and continuing with the rest.
type Runner struct {
	defs     map[string]Definition
	scripts  *compute.ScriptEngine
	signals  *SignalHub
	validate ValidateFunc
	logger   zerolog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		defs:    make(map[string]Definition),
		scripts: compute.NewScriptEngine(),
		signals: NewSignalHub(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Signals returns the hub modal actions emit on.
func (r *Runner) Signals() *SignalHub { return r.signals }

// ExecuteAll runs the named actions sequentially in list order. A failing
// action is logged and recorded as nil; subsequent actions still run.
func (r *Runner) ExecuteAll(ctx context.Context, names []string, ev Event) []any {
	results := make([]any, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			break
		}
		result, err := r.Execute(ctx, name, ev)
		if err != nil {
			r.logger.Warn().Err(err).Str("action", name).Msg("action failed; batch continues")
			results[i] = nil
			continue
		}
		results[i] = result
	}
	return results
}

// Execute runs a single named action. Unlike ExecuteAll, errors propagate.
func (r *Runner) Execute(ctx context.Context, name string, ev Event) (any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("actions: empty action name")
	}

	if def, ok := r.defs[name]; ok {
		return r.runCustom(ctx, name, def, ev)
	}

	switch name {
	case ActionValidate:
		if r.validate == nil {
			return nil, fmt.Errorf("actions: validate is not wired")
		}
		return r.validate(ctx, ev)
	case ActionClear:
		key := r.targetKey(ev)
		if key == "" {
			return nil, fmt.Errorf("actions: clear needs a target data key")
		}
		ev.Store.Delete(key)
		return key, nil
	case ActionReset:
		ev.Store.Reset()
		return nil, nil
	case ActionLog:
		message := expr.CoerceString(ev.Args["message"])
		if message == "" {
			message = fmt.Sprintf("%s event from %s", ev.Type, ev.Sender)
		}
		r.logger.Info().
			Str("sender", ev.Sender).
			Str("event", ev.Type).
			Interface("value", ev.Value).
			Msg(message)
		return message, nil
	case ActionAddRow:
		return r.addRow(ev)
	case ActionRemoveRow:
		return r.removeRow(ev)
	case ActionOpenModal:
		return r.emitModal(SignalOpenModal, ev)
	case ActionCloseModal:
		return r.emitModal(SignalCloseModal, ev)
	default:
		return nil, fmt.Errorf("actions: unknown action %q", name)
	}
}

// runCustom executes a custom action body with the event destructured into
// scope. Script errors propagate; ExecuteAll is the isolation boundary.
func (r *Runner) runCustom(ctx context.Context, name string, def Definition, ev Event) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bindings := map[string]any{
		"type":           ev.Type,
		"sender":         ev.Sender,
		"args":           orEmpty(ev.Args),
		"rendered_props": orEmpty(ev.RenderedProps),
		"value":          ev.Value,
		"data":           orEmpty(ev.Data),
		"parent_data":    orEmpty(ev.Parent),
		"root_data":      orEmpty(ev.Root),
	}
	result, err := r.scripts.Run(def.Body, bindings)
	if err != nil {
		return nil, fmt.Errorf("actions: %s: %w", name, err)
	}
	return result, nil
}

func (r *Runner) addRow(ev Event) (any, error) {
	key := r.targetKey(ev)
	if key == "" {
		return nil, fmt.Errorf("actions: addRow needs a target data key")
	}
	rows, _ := ev.Store.Get(key).([]any)
	row := ev.Args["row"]
	if row == nil {
		row = map[string]any{}
	}
	next := make([]any, 0, len(rows)+1)
	next = append(next, rows...)
	next = append(next, row)
	ev.Store.Set(key, next)
	return len(next), nil
}

func (r *Runner) removeRow(ev Event) (any, error) {
	key := r.targetKey(ev)
	if key == "" {
		return nil, fmt.Errorf("actions: removeRow needs a target data key")
	}
	rows, _ := ev.Store.Get(key).([]any)
	index := len(rows) - 1
	if raw, ok := ev.Args["index"]; ok {
		if n, ok := expr.CoerceNumber(raw); ok {
			index = int(n)
		}
	}
	if index < 0 || index >= len(rows) {
		return nil, fmt.Errorf("actions: removeRow index %d out of range 0..%d", index, len(rows)-1)
	}
	next := make([]any, 0, len(rows)-1)
	next = append(next, rows[:index]...)
	next = append(next, rows[index+1:]...)
	ev.Store.Set(key, next)
	return len(next), nil
}

func (r *Runner) emitModal(name string, ev Event) (any, error) {
	target := expr.CoerceString(ev.Args["target"])
	if target == "" {
		target = ev.Sender
	}
	sig := Signal{Name: name, Target: target, Sender: ev.Sender, Args: ev.Args}
	r.signals.Emit(sig)
	return target, nil
}

func (r *Runner) targetKey(ev Event) string {
	if key := strings.TrimSpace(expr.CoerceString(ev.Args["target"])); key != "" {
		return key
	}
	return ""
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
