package compute

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formruntime/pkg/model"
)

func TestEvaluateStaticPassesValueThrough(t *testing.T) {
	eval := New()

	for _, value := range []any{"hello", float64(42), true, []any{"a"}, nil} {
		got := eval.Evaluate(model.Static(value), Context{})
		if diff := cmp.Diff(value, got); diff != "" {
			t.Fatalf("static value changed (-want +got):\n%s", diff)
		}
	}
}

func TestEvaluateStaticIsIdempotent(t *testing.T) {
	eval := New()
	prop := model.Static("fixed")
	ctx := Context{Data: map[string]any{"a": 1}}

	first := eval.Evaluate(prop, ctx)
	second := eval.Evaluate(prop, ctx)
	if first != second || first != "fixed" {
		t.Fatalf("got %v then %v", first, second)
	}
}

func TestEvaluateFunctionExpression(t *testing.T) {
	eval := New()
	prop := model.Function(`data["first"] + " " + data["last"]`)
	ctx := Context{Data: map[string]any{"first": "Ada", "last": "Lovelace"}}

	got := eval.Evaluate(prop, ctx)
	if got != "Ada Lovelace" {
		t.Fatalf("got %v", got)
	}
}

func TestEvaluateFunctionBodyWithReturn(t *testing.T) {
	eval := New()
	prop := model.Function("if data[\"age\"] >= 18:\n    return \"adult\"\nreturn \"minor\"")

	got := eval.Evaluate(prop, Context{Data: map[string]any{"age": float64(21)}})
	if got != "adult" {
		t.Fatalf("got %v", got)
	}

	got = eval.Evaluate(prop, Context{Data: map[string]any{"age": float64(12)}})
	if got != "minor" {
		t.Fatalf("got %v", got)
	}
}

func TestEvaluateFunctionFailureYieldsNil(t *testing.T) {
	eval := New()
	prop := model.Function(`data["missing"] + 1`)

	if got := eval.Evaluate(prop, Context{Data: map[string]any{}}); got != nil {
		t.Fatalf("failed script should yield nil, got %v", got)
	}
}

func TestEvaluateErrSurfacesFailures(t *testing.T) {
	eval := New()
	prop := model.Function(`this is not starlark ===`)

	if _, err := eval.EvaluateErr(prop, Context{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestEvaluateLocalization(t *testing.T) {
	translator := MapTranslator{
		"en-US": {"form.title": "Contact us"},
		"es":    {"form.title": "Contáctenos"},
	}
	eval := New(WithTranslator(translator))
	prop := model.Localized("form.title")

	got := eval.Evaluate(prop, Context{})
	if got != "Contact us" {
		t.Fatalf("default locale: got %v", got)
	}

	got = eval.Evaluate(prop, Context{Data: map[string]any{LocaleKey: "es-MX"}})
	if got != "Contáctenos" {
		t.Fatalf("regional fallback: got %v", got)
	}
}

func TestEvaluateLocalizationMissingKeyYieldsEmpty(t *testing.T) {
	eval := New(WithTranslator(MapTranslator{}))
	if got := eval.Evaluate(model.Localized("nope"), Context{}); got != "" {
		t.Fatalf("got %v, want empty string", got)
	}
}

func TestEvaluateLocalizationWithoutTranslator(t *testing.T) {
	if got := New().Evaluate(model.Localized("any"), Context{}); got != "" {
		t.Fatalf("got %v, want empty string", got)
	}
}

func TestContextLocale(t *testing.T) {
	cases := []struct {
		name string
		ctx  Context
		want string
	}{
		{"default", Context{}, DefaultLocale},
		{"from data", Context{Data: map[string]any{LocaleKey: "fr-FR"}}, "fr-FR"},
		{"from root", Context{Root: map[string]any{LocaleKey: "de"}}, "de"},
		{"data wins", Context{
			Data: map[string]any{LocaleKey: "fr-FR"},
			Root: map[string]any{LocaleKey: "de"},
		}, "fr-FR"},
	}
	for _, tc := range cases {
		if got := tc.ctx.Locale(); got != tc.want {
			t.Fatalf("%s: Locale() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestScriptBindingsDefaults(t *testing.T) {
	bindings := ScriptBindings(Context{Data: map[string]any{"a": 1}})

	if diff := cmp.Diff(bindings["data"], bindings["form_data"]); diff != "" {
		t.Fatalf("form_data should alias data:\n%s", diff)
	}
	if diff := cmp.Diff(bindings["data"], bindings["root_data"]); diff != "" {
		t.Fatalf("root_data should default to data:\n%s", diff)
	}
	if bindings["parent_data"] == nil {
		t.Fatal("parent_data should never be nil")
	}
}
