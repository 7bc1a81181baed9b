package persist

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/model"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return map[int]string{1: "gen-1", 2: "gen-2", 3: "gen-3"}[n]
	}
}

func signupTree() *model.ComponentNode {
	return &model.ComponentNode{
		ID:   "root",
		Type: model.TypeForm,
		Children: []*model.ComponentNode{
			{
				ID:   "name",
				Type: model.TypeInput,
				Props: map[string]any{
					model.PropDataKey: "name",
					model.PropLabel:   "Full name",
				},
			},
			{
				ID:   "greeting",
				Type: model.TypeLabel,
				Props: map[string]any{
					model.PropLabel: model.Function(`"Hello, " + data["name"]`),
				},
			},
		},
	}
}

func TestExportWrapsLiteralProps(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	name := form.Form.Children[0]
	want := map[string]any{"value": "Full name"}
	if diff := cmp.Diff(want, name.Props[model.PropLabel]); diff != "" {
		t.Errorf("literal label wrapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"value": "name"}, name.Props[model.PropDataKey]); diff != "" {
		t.Errorf("dataKey wrapping mismatch (-want +got):\n%s", diff)
	}
}

func TestExportPassesComputedPropsThrough(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	greeting := form.Form.Children[1]
	prop, ok := greeting.Props[model.PropLabel].(model.ComputedProperty)
	if !ok {
		t.Fatalf("computed label exported as %T, want model.ComputedProperty", greeting.Props[model.PropLabel])
	}
	if prop.Kind() != model.ComputeFunction {
		t.Errorf("Kind() = %q, want %q", prop.Kind(), model.ComputeFunction)
	}
}

func TestExportDoubleWrapsValueShapedLiteral(t *testing.T) {
	literal := map[string]any{"value": "x"}
	tree := &model.ComponentNode{
		ID:   "root",
		Type: model.TypeForm,
		Children: []*model.ComponentNode{{
			ID:    "note",
			Type:  model.TypeParagraph,
			Props: map[string]any{model.PropLabel: literal},
		}},
	}
	form, err := Export(tree, ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wire := form.Form.Children[0].Props[model.PropLabel]
	if diff := cmp.Diff(map[string]any{"value": literal}, wire); diff != "" {
		t.Errorf("wire prop mismatch (-want +got):\n%s", diff)
	}

	back, err := Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	got := back.Children[0].Props[model.PropLabel]
	if diff := cmp.Diff(literal, got); diff != "" {
		t.Errorf("round-tripped literal mismatch (-want +got):\n%s", diff)
	}
}

func TestExportBackfillsEnvelope(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if form.Version != CurrentVersion {
		t.Errorf("Version = %q, want %q", form.Version, CurrentVersion)
	}
	if form.ID != "gen-1" {
		t.Errorf("ID = %q, want the first generated id", form.ID)
	}
	if form.Metadata.FormName != "Untitled form" {
		t.Errorf("FormName = %q, want %q", form.Metadata.FormName, "Untitled form")
	}
	if form.Metadata.CreatedAt != "2024-03-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q, want the pinned timestamp", form.Metadata.CreatedAt)
	}
	if form.DefaultLanguage != DefaultLanguage {
		t.Errorf("DefaultLanguage = %q, want %q", form.DefaultLanguage, DefaultLanguage)
	}
	if len(form.Languages) != 1 || form.Languages[0].Code != DefaultLanguage {
		t.Errorf("Languages = %v, want the %s default", form.Languages, DefaultLanguage)
	}
	if form.Localization == nil {
		t.Error("Localization not initialized")
	}
}

func TestExportAssignsMissingNodeIDs(t *testing.T) {
	tree := &model.ComponentNode{
		Type:     model.TypeForm,
		Children: []*model.ComponentNode{{Type: model.TypeInput}},
	}
	form, err := Export(tree, ExportOptions{ID: "form-1", Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if form.Form.ID != "gen-1" {
		t.Errorf("root id = %q, want generated", form.Form.ID)
	}
	if form.Form.Children[0].ID != "gen-2" {
		t.Errorf("child id = %q, want generated", form.Form.Children[0].ID)
	}
}

func TestExportNilTree(t *testing.T) {
	if _, err := Export(nil, ExportOptions{}); err == nil {
		t.Fatal("Export(nil) expected an error")
	}
}

func TestImportInvertsExport(t *testing.T) {
	tree := signupTree()
	form, err := Export(tree, ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	back, err := Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if diff := cmp.Diff(tree, back); diff != "" {
		t.Errorf("round trip changed the tree (-want +got):\n%s", diff)
	}
}

func TestImportUnwrapsWireShapes(t *testing.T) {
	form := &PersistedForm{
		Version: CurrentVersion,
		Form: &Node{
			ID:   "field",
			Type: string(model.TypeInput),
			Props: map[string]any{
				"wrapped":  map[string]any{"value": 42.0},
				"computed": map[string]any{"fnSource": "data['a'] + 1"},
				"plain":    map[string]any{"min": 1.0, "max": 9.0},
			},
		},
	}
	tree, err := Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := tree.Props["wrapped"]; got != 42.0 {
		t.Errorf("wrapped literal = %v, want 42", got)
	}
	prop, ok := tree.Props["computed"].(model.ComputedProperty)
	if !ok || prop.FnSource != "data['a'] + 1" {
		t.Errorf("computed prop = %#v, want decoded ComputedProperty", tree.Props["computed"])
	}
	if diff := cmp.Diff(map[string]any{"min": 1.0, "max": 9.0}, tree.Props["plain"]); diff != "" {
		t.Errorf("multi-key map should pass through (-want +got):\n%s", diff)
	}
}

func TestImportLiftsPropsDependencies(t *testing.T) {
	form := &PersistedForm{
		Version: CurrentVersion,
		Form: &Node{
			ID:   "root",
			Type: string(model.TypeForm),
			Children: []*Node{{
				ID:   "state",
				Type: string(model.TypeSelect),
				Props: map[string]any{
					model.PropDataKey: map[string]any{"value": "state"},
					model.PropDependencies: map[string]any{
						"visible": map[string]any{"expression": `data.country == "US"`},
						"resetOn": []any{"country"},
					},
				},
			}},
		},
	}
	tree, err := Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	node := tree.Children[0]
	if node.Dependencies == nil || node.Dependencies.Visible == nil {
		t.Fatalf("Dependencies = %#v, want the props block lifted", node.Dependencies)
	}
	if node.Dependencies.Visible.Expression != `data.country == "US"` {
		t.Errorf("Visible.Expression = %q", node.Dependencies.Visible.Expression)
	}
	if diff := cmp.Diff([]string{"country"}, node.Dependencies.ResetOn); diff != "" {
		t.Errorf("ResetOn mismatch (-want +got):\n%s", diff)
	}
	if _, ok := node.Props[model.PropDependencies]; ok {
		t.Error("dependencies block left behind as an opaque prop")
	}
	if node.DataKey() != "state" {
		t.Errorf("DataKey() = %q, want %q", node.DataKey(), "state")
	}
}

func TestImportKeepsNonBlockDependenciesProp(t *testing.T) {
	form := &PersistedForm{
		Version: CurrentVersion,
		Form: &Node{
			ID:    "field",
			Type:  string(model.TypeInput),
			Props: map[string]any{model.PropDependencies: map[string]any{"value": "not a block"}},
		},
	}
	tree, err := Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if tree.Dependencies != nil {
		t.Errorf("Dependencies = %#v, want nil for a non-block payload", tree.Dependencies)
	}
	if got := tree.Props[model.PropDependencies]; got != "not a block" {
		t.Errorf("prop = %v, want the unwrapped literal", got)
	}
}

func TestImportSanitizeStripsMarkup(t *testing.T) {
	form := &PersistedForm{
		Version: CurrentVersion,
		Form: &Node{
			ID:   "field",
			Type: string(model.TypeInput),
			Props: map[string]any{
				model.PropLabel:      map[string]any{"value": "<b>Full</b> name"},
				model.PropHelperText: map[string]any{"value": "Use your <i>legal</i> name"},
				"customAttr":         map[string]any{"value": "<b>kept</b>"},
			},
		},
	}

	tree, err := Import(form, ImportOptions{Sanitize: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := tree.Props[model.PropLabel]; got != "Full name" {
		t.Errorf("label = %q, want markup stripped", got)
	}
	if got := tree.Props[model.PropHelperText]; got != "Use your legal name" {
		t.Errorf("helperText = %q, want markup stripped", got)
	}
	if got := tree.Props["customAttr"]; got != "<b>kept</b>" {
		t.Errorf("customAttr = %q, non user-facing props must not be touched", got)
	}

	// Sanitization is opt-in; the default import is lossless.
	tree, err = Import(form, ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := tree.Props[model.PropLabel]; got != "<b>Full</b> name" {
		t.Errorf("label = %q, default import must preserve markup", got)
	}
}

func TestImportNilForm(t *testing.T) {
	if _, err := Import(nil, ImportOptions{}); err == nil {
		t.Fatal("Import(nil) expected an error")
	}
	if _, err := Import(&PersistedForm{}, ImportOptions{}); err == nil {
		t.Fatal("Import without a tree expected an error")
	}
}
