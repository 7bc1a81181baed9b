// Package testsupport builds the shared demo form fixtures contract tests
// and examples load. Helpers taking a testing.T fail the test on error to
// keep call sites concise; the bare variants let non-test callers reuse the
// same fixtures.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formruntime/pkg/actions"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/persist"
)

// DemoTree builds the canonical profile form: a name pair with a derived
// full name, a gated newsletter checkbox, and a submit button bound to a
// custom action.
func DemoTree() *model.ComponentNode {
	return &model.ComponentNode{
		ID:   "profile",
		Type: model.TypeForm,
		Children: []*model.ComponentNode{
			{
				ID:   "identity",
				Type: model.TypeCard,
				Props: map[string]any{
					model.PropLabel: "Identity",
				},
				Children: []*model.ComponentNode{
					{
						ID:   "first",
						Type: model.TypeInput,
						Props: map[string]any{
							model.PropDataKey:  "first",
							model.PropLabel:    "First name",
							model.PropRequired: true,
						},
					},
					{
						ID:   "last",
						Type: model.TypeInput,
						Props: map[string]any{
							model.PropDataKey: "last",
							model.PropLabel:   "Last name",
						},
					},
					{
						ID:   "fullName",
						Type: model.TypeInput,
						Props: map[string]any{
							model.PropDataKey: "fullName",
							model.PropLabel:   "Full name",
						},
						Dependencies: &model.ComponentDependencies{
							Value: &model.ComputedProperty{
								ComputeType: model.ComputeFunction,
								FnSource:    `data["first"] + " " + data["last"]`,
							},
						},
					},
				},
			},
			{
				ID:   "age",
				Type: model.TypeNumberInput,
				Props: map[string]any{
					model.PropDataKey: "age",
					model.PropLabel:   "Age",
				},
			},
			{
				ID:   "newsletter",
				Type: model.TypeCheckbox,
				Props: map[string]any{
					model.PropDataKey:    "newsletter",
					model.PropLabel:      "Subscribe to the newsletter",
					model.PropRenderWhen: "data.age >= 18",
				},
			},
			{
				ID:   "submit",
				Type: model.TypeButton,
				Props: map[string]any{
					model.PropLabel: "Submit",
					model.PropActions: map[string]any{
						"click": []any{"submitProfile"},
					},
				},
			},
		},
	}
}

// DemoActions is the custom action table the demo form persists.
func DemoActions() map[string]actions.Definition {
	return map[string]actions.Definition{
		"submitProfile": {Body: `"submitted"`},
	}
}

// DemoValues seeds the demo form's data store.
func DemoValues() map[string]any {
	return map[string]any{"first": "Jane", "last": "Doe", "age": 30}
}

// BuildDemoForm exports the demo tree with pinned identity so fixtures stay
// byte-stable across runs.
func BuildDemoForm() (*persist.PersistedForm, error) {
	n := 0
	return persist.Export(DemoTree(), persist.ExportOptions{
		ID:       "demo-profile",
		Metadata: persist.Metadata{FormName: "Profile"},
		Actions:  DemoActions(),
		Now:      func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
		NewID: func() string {
			n++
			return fmt.Sprintf("fixture-%d", n)
		},
	})
}

// DemoForm returns the demo persisted form, failing the test on error.
func DemoForm(t *testing.T) *persist.PersistedForm {
	t.Helper()
	form, err := BuildDemoForm()
	if err != nil {
		t.Fatalf("build demo form: %v", err)
	}
	return form
}

// WriteFormFixture writes the demo form to dir under name, choosing JSON or
// YAML by extension, and returns the full path.
func WriteFormFixture(t *testing.T, dir, name string) string {
	t.Helper()

	form := DemoForm(t)
	var payload []byte
	var err error
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		payload, err = persist.EncodeYAML(form)
	default:
		payload, err = persist.EncodeJSON(form)
	}
	if err != nil {
		t.Fatalf("encode demo form: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write demo form: %v", err)
	}
	return path
}
