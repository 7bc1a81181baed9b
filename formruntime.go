// Package formruntime is the root facade: it re-exports the types callers
// need most and wires the persistence, session, and codegen layers together
// so simple integrations stay a one-import affair.
package formruntime

import (
	"fmt"

	"github.com/goliatone/go-formruntime/pkg/codegen"
	"github.com/goliatone/go-formruntime/pkg/compute"
	"github.com/goliatone/go-formruntime/pkg/persist"
	"github.com/goliatone/go-formruntime/pkg/session"
)

// Session is the per-form runtime; alias exported via the root package for
// convenience.
type Session = session.Session

// Option customises a Session.
type Option = session.Option

// State is the derived runtime state of one component.
type State = session.State

// PersistedForm is the versioned wire format for a saved form.
type PersistedForm = persist.PersistedForm

// Load reads a persisted form from disk, migrating older payloads forward.
func Load(path string) (*persist.PersistedForm, error) {
	return persist.LoadFile(path)
}

// Open loads a persisted form from disk and mounts a live session on it.
func Open(path string, opts ...session.Option) (*session.Session, error) {
	form, err := persist.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenForm(form, opts...)
}

// OpenForm mounts a live session on an already-loaded persisted form.
func OpenForm(form *persist.PersistedForm, opts ...session.Option) (*session.Session, error) {
	tree, err := persist.Import(form, persist.ImportOptions{})
	if err != nil {
		return nil, err
	}
	var base []session.Option
	if len(form.Actions) > 0 {
		base = append(base, session.WithActionDefinitions(form.Actions))
	}
	if len(form.Localization) > 0 {
		base = append(base, session.WithTranslator(compute.MapTranslator(form.Localization)))
	}
	if form.DefaultLanguage != "" {
		base = append(base, session.WithDefaultLocale(form.DefaultLanguage))
	}
	return session.New(tree, append(base, opts...)...)
}

// GenerateHTML renders a persisted form as a static HTML fragment, the
// authoring-time preview of what the runtime would mount.
func GenerateHTML(form *persist.PersistedForm) (string, error) {
	gen, err := codegen.New()
	if err != nil {
		return "", fmt.Errorf("formruntime: %w", err)
	}
	return gen.HTML(form)
}
