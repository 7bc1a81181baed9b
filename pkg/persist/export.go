package persist

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formruntime/pkg/actions"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// ExportOptions parameterise Export. Zero values get sensible defaults:
// fresh GUIDs, current timestamps, the en-US language set.
type ExportOptions struct {
	ID              string
	Metadata        Metadata
	DefaultLanguage string
	Languages       []Language
	Localization    map[string]map[string]string
	Actions         map[string]actions.Definition
	FormValidator   *string

	// Now and NewID exist so tests and migrations can pin timestamps and
	// GUID assignment.
	Now   func() time.Time
	NewID func() string
}

// Export converts a component tree into its persisted wire form. Every
// literal prop value v becomes {"value": v}; props already shaped as
// computed properties pass through unchanged. Nodes without an id are
// assigned a fresh GUID.
func Export(tree *model.ComponentNode, opts ExportOptions) (*PersistedForm, error) {
	if tree == nil {
		return nil, errors.New("persist: cannot export a nil tree")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	meta := opts.Metadata
	if meta.FormName == "" {
		meta.FormName = "Untitled form"
	}
	stamp := now().UTC().Format(time.RFC3339)
	if meta.CreatedAt == "" {
		meta.CreatedAt = stamp
	}
	meta.UpdatedAt = stamp

	form := &PersistedForm{
		Version:         CurrentVersion,
		ID:              opts.ID,
		Metadata:        meta,
		Form:            exportNode(tree, newID),
		DefaultLanguage: opts.DefaultLanguage,
		Languages:       opts.Languages,
		Localization:    opts.Localization,
		Actions:         opts.Actions,
		FormValidator:   opts.FormValidator,
	}
	if form.ID == "" {
		form.ID = newID()
	}
	if form.DefaultLanguage == "" {
		form.DefaultLanguage = DefaultLanguage
	}
	if len(form.Languages) == 0 {
		form.Languages = []Language{{Code: DefaultLanguage, Name: "English"}}
	}
	if form.Localization == nil {
		form.Localization = map[string]map[string]string{}
	}
	return form, nil
}

func exportNode(node *model.ComponentNode, newID func() string) *Node {
	out := &Node{
		ID:           node.ID,
		Type:         string(node.Type),
		Dependencies: node.Dependencies,
	}
	if out.ID == "" {
		out.ID = newID()
	}

	if len(node.Props) > 0 {
		out.Props = make(map[string]any, len(node.Props))
		for name, raw := range node.Props {
			out.Props[name] = WrapProp(raw)
		}
	}

	for _, child := range node.Children {
		if child == nil {
			continue
		}
		out.Children = append(out.Children, exportNode(child, newID))
	}
	return out
}

// WrapProp applies the export wrapping rule to one prop payload. A literal v
// always becomes {"value": v}, even when v is itself a single-key "value"
// map, so Import's unwrapping is an exact inverse.
func WrapProp(raw any) any {
	if prop, ok := model.ComputedPropertyFromAny(raw); ok {
		return prop
	}
	return map[string]any{"value": raw}
}

// isWrappedLiteral reports the exact single-key {"value": ...} shape.
func isWrappedLiteral(raw map[string]any) bool {
	if len(raw) != 1 {
		return false
	}
	_, ok := raw["value"]
	return ok
}
