// Package session coordinates a live form: it owns the data store, runs the
// evaluators on every mutation, and exposes per-component computed state to
// the rendering layer.
package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formruntime/pkg/actions"
	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/dataview"
	"github.com/goliatone/go-formruntime/pkg/deps"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/store"
	"github.com/goliatone/go-formruntime/pkg/validation"
	"github.com/goliatone/go-formruntime/pkg/visibility"
)

// maxSettlePasses bounds the evaluate/commit loop. Write-backs are deduped
// by the store, so a well-formed dependency graph settles in one or two
// passes; the bound only guards against oscillating authored expressions.
const maxSettlePasses = 8

// State is the derived runtime state of one component after an evaluation
// pass.
type State struct {
	Disabled     bool
	Visible      bool
	Required     bool
	Label        any
	Placeholder  any
	Value        any
	Options      any
	FilterParams map[string]any
}

// Option customises a Session.
type Option func(*Session)

// WithInitialValues seeds the data store.
func WithInitialValues(values map[string]any) Option {
	return func(s *Session) { s.initial = values }
}

// WithTranslator injects the localization collaborator.
func WithTranslator(t compute.Translator) Option {
	return func(s *Session) { s.translator = t }
}

// WithDefaultLocale seeds the store's locale key when the initial values
// don't carry one.
func WithDefaultLocale(locale string) Option {
	return func(s *Session) { s.defaultLocale = locale }
}

// WithActionDefinitions registers the custom action table.
func WithActionDefinitions(defs map[string]actions.Definition) Option {
	return func(s *Session) { s.actionDefs = defs }
}

// WithDataviewLoader injects the remote data collaborator.
func WithDataviewLoader(loader dataview.Loader) Option {
	return func(s *Session) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithFormMode switches between runtime (true) and authoring (false). In
// authoring mode dependency evaluation is skipped and static defaults apply.
func WithFormMode(formMode bool) Option {
	return func(s *Session) { s.formMode = formMode }
}

// WithRegistry overrides the component type registry.
func WithRegistry(reg *model.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger injects the session logger, shared with every evaluator.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// Session is the per-form runtime. All methods are called from the single
// UI event goroutine; internal locking only protects the re-entrancy flags.
type Session struct {
	tree     *model.ComponentNode
	registry *model.Registry
	store    *store.Store
	logger   zerolog.Logger
	formMode bool

	initial       map[string]any
	defaultLocale string
	translator    compute.Translator
	actionDefs    map[string]actions.Definition
	loader        dataview.Loader

	compute   *compute.Evaluator
	deps      *deps.Evaluator
	renderer  *visibility.Renderer
	validator *validation.Engine
	runner    *actions.Runner

	mu         sync.Mutex
	states     map[string]State
	evaluating bool
	dirty      bool
}

// New builds a session for a component tree, validates the tree, and runs
// the initial evaluation pass.
func New(tree *model.ComponentNode, opts ...Option) (*Session, error) {
	s := &Session{
		tree:     tree,
		registry: model.DefaultRegistry(),
		logger:   zerolog.Nop(),
		formMode: true,
		loader:   dataview.StaticLoader{},
		states:   make(map[string]State),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := model.ValidateTree(tree, s.registry); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s.store = store.New(s.initial)
	if s.defaultLocale != "" {
		if _, ok := s.store.Lookup(compute.LocaleKey); !ok {
			s.store.Set(compute.LocaleKey, s.defaultLocale)
		}
	}
	s.compute = compute.New(
		compute.WithTranslator(s.translator),
		compute.WithLogger(s.logger),
	)
	s.deps = deps.New(
		deps.WithComputeEvaluator(s.compute),
		deps.WithLogger(s.logger),
	)
	s.renderer = visibility.New(
		visibility.WithComputeEvaluator(s.compute),
		visibility.WithLogger(s.logger),
	)
	s.validator = validation.NewEngine(validation.WithLogger(s.logger))
	s.runner = actions.NewRunner(
		actions.WithDefinitions(s.actionDefs),
		actions.WithLogger(s.logger),
		actions.WithValidateFunc(s.validateAction),
	)

	s.store.Subscribe(s.onStoreChange)
	s.Recompute()
	return s, nil
}

// Store exposes the session's data store.
func (s *Session) Store() *store.Store { return s.store }

// Signals exposes the hub modal actions emit on.
func (s *Session) Signals() *actions.SignalHub { return s.runner.Signals() }

// ComputedState returns the derived state of a component from the last pass.
func (s *Session) ComputedState(componentID string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[componentID]
	return state, ok
}

// HandleChange records a user edit on a component's bound value. The store
// notification triggers re-evaluation.
func (s *Session) HandleChange(componentID string, value any) error {
	node := model.FindByID(s.tree, componentID)
	if node == nil {
		return fmt.Errorf("session: unknown component %q", componentID)
	}
	key := node.DataKey()
	if key == "" {
		return fmt.Errorf("session: component %q is not bound to a data key", componentID)
	}
	s.store.Set(key, value)
	return nil
}

// onStoreChange defers re-evaluation while a pass is committing; the commit
// loop picks the dirty flag up afterwards.
func (s *Session) onStoreChange(string, any, bool) {
	s.mu.Lock()
	if s.evaluating {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.Recompute()
}

// Recompute runs evaluate/commit passes until the store settles. Each pass
// is a pure function of the store snapshot taken at its start; write-backs
// and resets are committed only after the pass completes.
func (s *Session) Recompute() {
	for pass := 0; pass < maxSettlePasses; pass++ {
		patches := s.runPass()
		if len(patches) == 0 {
			return
		}

		s.mu.Lock()
		s.evaluating = true
		s.dirty = false
		s.mu.Unlock()

		store.Apply(s.store, patches)

		s.mu.Lock()
		s.evaluating = false
		settled := !s.dirty
		s.mu.Unlock()

		if settled {
			return
		}
	}
	s.logger.Warn().Msg("dependency evaluation did not settle; check for oscillating expressions")
}

func (s *Session) runPass() []store.Patch {
	snapshot := s.store.Snapshot()
	states := make(map[string]State)
	var patches []store.Patch

	model.Walk(s.tree, func(node *model.ComponentNode, _ *model.ComponentNode) bool {
		if node.ID == "" {
			return true
		}
		state, nodePatches := s.evaluateNode(node, snapshot)
		states[node.ID] = state
		patches = append(patches, nodePatches...)
		return true
	})

	s.mu.Lock()
	s.states = states
	s.mu.Unlock()
	return patches
}

func (s *Session) evaluateNode(node *model.ComponentNode, snapshot map[string]any) (State, []store.Patch) {
	state := State{Visible: true}

	result := s.deps.EvaluateAll(node.ID, node.Dependencies, deps.Context{
		Data:       snapshot,
		Root:       snapshot,
		CurrentKey: node.DataKey(),
		FormMode:   s.formMode,
	})

	cctx := compute.Context{Data: snapshot, Root: snapshot}

	if result.Disabled != nil {
		state.Disabled = *result.Disabled
	} else {
		state.Disabled, _ = s.literalBool(node, model.PropDisabled, cctx)
	}
	if result.Visible != nil {
		state.Visible = *result.Visible
	}
	if result.Required != nil {
		state.Required = *result.Required
	} else {
		state.Required, _ = s.literalBool(node, model.PropRequired, cctx)
	}

	state.Label = s.pick(result.Label, node, model.PropLabel, cctx)
	state.Placeholder = s.pick(result.Placeholder, node, model.PropPlaceholder, cctx)
	state.FilterParams = result.FilterParams

	if result.OptionsSet {
		state.Options = result.Options
	} else {
		state.Options = s.resolveProp(node, model.PropOptions, cctx)
	}

	state.Value = s.effectiveValue(node, result, snapshot, cctx)
	return state, result.Patches
}

// effectiveValue applies the value precedence ladder: current store value,
// then dependency-computed value, then the component's literal default,
// then the type default.
func (s *Session) effectiveValue(node *model.ComponentNode, result deps.Result, snapshot map[string]any, cctx compute.Context) any {
	if key := node.DataKey(); key != "" {
		if value, ok := snapshot[key]; ok {
			return value
		}
	}
	if result.ValueSet {
		return result.Value
	}
	if value := s.resolveProp(node, model.PropDefaultValue, cctx); value != nil {
		return value
	}
	if spec, ok := s.registry.Lookup(node.Type); ok {
		return spec.Default
	}
	return nil
}

// pick prefers the dependency-computed value over the component's own prop.
func (s *Session) pick(computed any, node *model.ComponentNode, prop string, cctx compute.Context) any {
	if computed != nil {
		return computed
	}
	return s.resolveProp(node, prop, cctx)
}

// resolveProp resolves a prop that may be a literal or a computed property.
func (s *Session) resolveProp(node *model.ComponentNode, name string, cctx compute.Context) any {
	raw, ok := node.Prop(name)
	if !ok {
		return nil
	}
	if prop, isComputed := model.ComputedPropertyFromAny(raw); isComputed {
		return s.compute.Evaluate(prop, cctx)
	}
	return raw
}

func (s *Session) literalBool(node *model.ComponentNode, name string, cctx compute.Context) (bool, bool) {
	raw := s.resolveProp(node, name, cctx)
	if raw == nil {
		return false, false
	}
	b, ok := raw.(bool)
	return b, ok
}
