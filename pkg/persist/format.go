// Package persist converts component trees to and from the versioned
// persisted form format, migrating older payloads forward.
package persist

import (
	"github.com/goliatone/go-formruntime/pkg/actions"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// CurrentVersion is the persisted schema version this package writes.
const CurrentVersion = "1"

// DefaultLanguage is used when a form declares none.
const DefaultLanguage = "en-US"

// Metadata describes the form for catalogues and the builder UI.
type Metadata struct {
	FormName    string   `json:"formName" yaml:"formName"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	FormVersion string   `json:"formVersion,omitempty" yaml:"formVersion,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
}

// Language pairs a locale code with its display name.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Node is the wire shape of a component: identical to model.ComponentNode
// except that every literal prop is wrapped as {"value": v} so literals and
// computed properties share one structure.
type Node struct {
	ID           string                        `json:"id" yaml:"id"`
	Type         string                        `json:"type" yaml:"type"`
	Props        map[string]any                `json:"props,omitempty" yaml:"props,omitempty"`
	Dependencies *model.ComponentDependencies  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Children     []*Node                       `json:"children,omitempty" yaml:"children,omitempty"`
}

// PersistedForm is the language-agnostic wire format for a saved form,
// schema version "1".
type PersistedForm struct {
	Version         string                        `json:"version" yaml:"version"`
	ID              string                        `json:"id,omitempty" yaml:"id,omitempty"`
	Metadata        Metadata                      `json:"metadata" yaml:"metadata"`
	Form            *Node                         `json:"form" yaml:"form"`
	DefaultLanguage string                        `json:"defaultLanguage" yaml:"defaultLanguage"`
	Languages       []Language                    `json:"languages" yaml:"languages"`
	Localization    map[string]map[string]string  `json:"localization" yaml:"localization"`
	Actions         map[string]actions.Definition `json:"actions,omitempty" yaml:"actions,omitempty"`
	FormValidator   *string                       `json:"formValidator,omitempty" yaml:"formValidator,omitempty"`
}
