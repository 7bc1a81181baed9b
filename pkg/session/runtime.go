package session

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/actions"
	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/dataview"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/validation"
)

// ShouldRender resolves a component's renderWhen gate against the current
// store snapshot. Components without a gate, and unknown components, render.
func (s *Session) ShouldRender(componentID string) bool {
	node := model.FindByID(s.tree, componentID)
	if node == nil {
		return true
	}
	raw, ok := node.Prop(model.PropRenderWhen)
	if !ok || raw == nil {
		return true
	}

	snapshot := s.store.Snapshot()
	cctx := compute.Context{Data: snapshot, Root: snapshot}

	if prop, isComputed := model.ComputedPropertyFromAny(raw); isComputed {
		return s.renderer.ShouldRender(&prop, cctx)
	}
	prop := model.Static(raw)
	return s.renderer.ShouldRender(&prop, cctx)
}

// Validate checks a component's current value against its validation rules.
// The component's derived required state injects a required rule when the
// authored rules omit one.
func (s *Session) Validate(ctx context.Context, componentID string) (validation.Result, error) {
	node := model.FindByID(s.tree, componentID)
	if node == nil {
		return validation.Result{}, fmt.Errorf("session: unknown component %q", componentID)
	}

	var rules []validation.Rule
	if raw, ok := node.Prop(model.PropValidation); ok {
		parsed, err := validation.RulesFromAny(raw)
		if err != nil {
			return validation.Result{}, fmt.Errorf("session: component %q: %w", componentID, err)
		}
		rules = parsed
	}

	state, _ := s.ComputedState(componentID)
	if state.Required && !hasRule(rules, validation.RuleRequired) {
		rules = append([]validation.Rule{{Key: validation.RuleRequired}}, rules...)
	}
	if len(rules) == 0 {
		return validation.Result{Success: true}, nil
	}

	schema, err := s.validator.BuildSchema(rules, s.dataTypeFor(node))
	if err != nil {
		return validation.Result{}, fmt.Errorf("session: component %q: %w", componentID, err)
	}

	snapshot := s.store.Snapshot()
	value := state.Value
	if key := node.DataKey(); key != "" {
		if current, ok := snapshot[key]; ok {
			value = current
		}
	}
	return s.validator.Validate(ctx, value, schema, snapshot), nil
}

// ValidateAll validates every data-bound component in the tree and returns
// the per-component results keyed by component id.
func (s *Session) ValidateAll(ctx context.Context) (map[string]validation.Result, error) {
	results := make(map[string]validation.Result)
	var firstErr error
	model.Walk(s.tree, func(node *model.ComponentNode, _ *model.ComponentNode) bool {
		if node.ID != "" && !s.ShouldRender(node.ID) {
			return false
		}
		if node.ID == "" || node.DataKey() == "" {
			return true
		}
		result, err := s.Validate(ctx, node.ID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return true
		}
		results[node.ID] = result
		return true
	})
	return results, firstErr
}

// DispatchEvent runs the action chains a component binds to an event type,
// for example "click" or "change". Missing bindings are a no-op.
func (s *Session) DispatchEvent(ctx context.Context, componentID, eventType string, value any) ([]any, error) {
	node := model.FindByID(s.tree, componentID)
	if node == nil {
		return nil, fmt.Errorf("session: unknown component %q", componentID)
	}

	names := actionNames(node, eventType)
	if len(names) == 0 {
		return nil, nil
	}

	snapshot := s.store.Snapshot()
	state, _ := s.ComputedState(componentID)
	ev := actions.Event{
		Type:   eventType,
		Sender: componentID,
		Store:  s.store,
		Value:  value,
		Data:   snapshot,
		Root:   snapshot,
		RenderedProps: map[string]any{
			"label":       state.Label,
			"placeholder": state.Placeholder,
			"disabled":    state.Disabled,
			"required":    state.Required,
		},
	}
	return s.runner.ExecuteAll(ctx, names, ev), nil
}

// LoadOptions resolves a component's option list, applying any filterBy
// parameters derived in the last evaluation pass.
func (s *Session) LoadOptions(ctx context.Context, componentID string) ([]any, error) {
	state, ok := s.ComputedState(componentID)
	if !ok {
		return nil, fmt.Errorf("session: unknown component %q", componentID)
	}
	if state.Options == nil {
		return nil, nil
	}

	source, ok := dataview.SourceFromAny(state.Options)
	if !ok {
		return nil, fmt.Errorf("session: component %q has no loadable options source", componentID)
	}
	if len(state.FilterParams) > 0 {
		source = source.WithParams(state.FilterParams)
	}
	return s.loader.LoadArray(ctx, source)
}

// validateAction backs the built-in validate action: it validates the
// action's target component, defaulting to the sender.
func (s *Session) validateAction(ctx context.Context, ev actions.Event) (any, error) {
	target, _ := ev.Args["target"].(string)
	if target == "" {
		target = ev.Sender
	}
	result, err := s.Validate(ctx, target)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) dataTypeFor(node *model.ComponentNode) validation.DataType {
	spec, ok := s.registry.Lookup(node.Type)
	if !ok {
		return validation.TypeString
	}
	switch spec.DataKind {
	case model.DataNumber:
		return validation.TypeNumber
	case model.DataBoolean:
		return validation.TypeBoolean
	case model.DataDate:
		return validation.TypeDate
	case model.DataArray:
		return validation.TypeArray
	case model.DataObject:
		return validation.TypeObject
	default:
		return validation.TypeString
	}
}

// actionNames extracts the action chain bound to an event type from the
// component's actions prop, tolerating both []string and []any payloads.
func actionNames(node *model.ComponentNode, eventType string) []string {
	raw, ok := node.Prop(model.PropActions)
	if !ok {
		return nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	chain, ok := table[eventType]
	if !ok {
		return nil
	}

	switch list := chain.(type) {
	case []string:
		return list
	case []any:
		names := make([]string, 0, len(list))
		for _, entry := range list {
			if name, ok := entry.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		return names
	case string:
		if list == "" {
			return nil
		}
		return []string{list}
	default:
		return nil
	}
}

func hasRule(rules []validation.Rule, key string) bool {
	for _, rule := range rules {
		if rule.Key == key {
			return true
		}
	}
	return false
}
