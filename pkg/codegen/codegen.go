// Package codegen renders a component tree into static HTML markup, the
// authoring-time preview of what the runtime would mount.
package codegen

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/persist"
)

//go:embed templates/*.tpl
var builtinTemplates embed.FS

// Option configures a Generator before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	registry  *model.Registry
}

// WithTemplateFS replaces the built-in template set. The FS must carry
// templates/form.tpl, templates/group.tpl, and templates/field.tpl.
func WithTemplateFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithRegistry overrides the component type registry used to classify
// controls.
func WithRegistry(reg *model.Registry) Option {
	return func(cfg *config) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// Generator renders component trees through a pongo2 template set.
type Generator struct {
	mu        sync.Mutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	registry  *model.Registry
}

// New constructs a Generator.
func New(opts ...Option) (*Generator, error) {
	cfg := &config{
		templates: builtinTemplates,
		registry:  model.DefaultRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return &Generator{
		set:       pongo2.NewSet("codegen", pongo2.NewFSLoader(cfg.templates)),
		templates: make(map[string]*pongo2.Template),
		registry:  cfg.registry,
	}, nil
}

// HTML renders a persisted form as a complete <form> document fragment.
func (g *Generator) HTML(form *persist.PersistedForm) (string, error) {
	if form == nil || form.Form == nil {
		return "", errors.New("codegen: nil form")
	}

	tree, err := persist.Import(form, persist.ImportOptions{})
	if err != nil {
		return "", fmt.Errorf("codegen: %w", err)
	}
	body, err := g.renderChildren(tree)
	if err != nil {
		return "", err
	}

	title := form.Metadata.FormName
	if strings.TrimSpace(title) == "" {
		title = "Untitled form"
	}
	return g.render("templates/form.tpl", pongo2.Context{
		"id":    form.ID,
		"title": title,
		"body":  body,
	})
}

// Tree renders a bare component tree without the form envelope.
func (g *Generator) Tree(root *model.ComponentNode) (string, error) {
	if root == nil {
		return "", errors.New("codegen: nil tree")
	}
	return g.renderNode(root)
}

func (g *Generator) renderNode(node *model.ComponentNode) (string, error) {
	spec, known := g.registry.Lookup(node.Type)
	if known && spec.Container {
		body, err := g.renderChildren(node)
		if err != nil {
			return "", err
		}
		return g.render("templates/group.tpl", pongo2.Context{
			"id":    node.ID,
			"type":  string(node.Type),
			"label": labelText(node),
			"body":  body,
		})
	}
	return g.render("templates/field.tpl", fieldContext(node, spec))
}

func (g *Generator) renderChildren(node *model.ComponentNode) (string, error) {
	var parts []string
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		rendered, err := g.renderNode(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, "\n"), nil
}

func (g *Generator) render(path string, ctx pongo2.Context) (string, error) {
	tmpl, err := g.template(path)
	if err != nil {
		return "", err
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("codegen: execute %q: %w", path, err)
	}
	return strings.TrimRight(out, "\n"), nil
}

func (g *Generator) template(path string) (*pongo2.Template, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if tmpl, ok := g.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := g.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("codegen: load template %q: %w", path, err)
	}
	g.templates[path] = tmpl
	return tmpl, nil
}

// fieldContext flattens one leaf component into template variables.
func fieldContext(node *model.ComponentNode, spec model.TypeSpec) pongo2.Context {
	return pongo2.Context{
		"id":          node.ID,
		"type":        string(node.Type),
		"control":     controlFor(node.Type, spec),
		"dataKey":     node.DataKey(),
		"label":       labelText(node),
		"placeholder": propText(node, model.PropPlaceholder),
		"helperText":  propText(node, model.PropHelperText),
		"required":    boolProp(node, model.PropRequired),
		"disabled":    boolProp(node, model.PropDisabled),
		"options":     optionItems(node),
	}
}

// controlFor maps a component type onto the markup control it renders as.
func controlFor(t model.ComponentType, spec model.TypeSpec) string {
	switch t {
	case model.TypeTextarea:
		return "textarea"
	case model.TypeSelect, model.TypeMultiSelect, model.TypeAutocomplete:
		return "select"
	case model.TypeCheckbox, model.TypeSwitch:
		return "checkbox"
	case model.TypeRadioGroup:
		return "radio"
	case model.TypePassword:
		return "password"
	case model.TypeButton, model.TypeButtonGroup:
		return "button"
	}
	switch spec.DataKind {
	case model.DataNumber:
		return "number"
	case model.DataDate:
		return "date"
	case model.DataBoolean:
		return "checkbox"
	default:
		return "text"
	}
}

// labelText resolves a display prop that may be wrapped or computed. Computed
// props render as their literal value; function-derived props have no static
// text and fall back to the data key.
func labelText(node *model.ComponentNode) string {
	if text := propText(node, model.PropLabel); text != "" {
		return text
	}
	return node.DataKey()
}

func propText(node *model.ComponentNode, name string) string {
	raw, ok := node.Prop(name)
	if !ok {
		return ""
	}
	if prop, isComputed := model.ComputedPropertyFromAny(raw); isComputed {
		if s, ok := prop.Value.(string); ok {
			return s
		}
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}

func boolProp(node *model.ComponentNode, name string) bool {
	raw, ok := node.Prop(name)
	if !ok {
		return false
	}
	if prop, isComputed := model.ComputedPropertyFromAny(raw); isComputed {
		raw = prop.Value
	}
	b, _ := raw.(bool)
	return b
}

// optionItems normalizes the options prop into label/value pairs for the
// select and radio templates. Remote sources render no static options.
func optionItems(node *model.ComponentNode) []map[string]any {
	raw, ok := node.Prop(model.PropOptions)
	if !ok {
		return nil
	}
	if prop, isComputed := model.ComputedPropertyFromAny(raw); isComputed {
		raw = prop.Value
	}

	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		switch v := entry.(type) {
		case map[string]any:
			label, _ := v["label"].(string)
			value := v["value"]
			if label == "" {
				label = fmt.Sprint(value)
			}
			items = append(items, map[string]any{"label": label, "value": value})
		case string:
			items = append(items, map[string]any{"label": v, "value": v})
		default:
			items = append(items, map[string]any{"label": fmt.Sprint(v), "value": v})
		}
	}
	return items
}
