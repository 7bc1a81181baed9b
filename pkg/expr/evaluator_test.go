package expr

import "testing"

func TestEvalComparisons(t *testing.T) {
	eval := New()
	ctx := Context{Data: map[string]any{
		"age":     float64(21),
		"country": "US",
		"active":  true,
		"name":    "bob",
	}}

	cases := []struct {
		rule string
		want bool
	}{
		{`data.age >= 18`, true},
		{`data.age > 21`, false},
		{`data.age <= 21`, true},
		{`data.age < 21`, false},
		{`data.country == "US"`, true},
		{`data.country != "US"`, false},
		{`data.country === "US"`, true},
		{`age == 21`, true},
		{`data.active == true`, true},
		{`data.missing == null`, true},
		{`data.name == 'bob'`, true},
	}

	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvalBooleanComposition(t *testing.T) {
	eval := New()
	ctx := Context{Data: map[string]any{
		"a": true,
		"b": false,
		"n": float64(5),
	}}

	cases := []struct {
		rule string
		want bool
	}{
		{`data.a && data.b`, false},
		{`data.a || data.b`, true},
		{`!data.b`, true},
		{`(data.a || data.b) && data.n >= 5`, true},
		{`!(data.a && data.n > 4)`, false},
	}

	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %v, want %v", tc.rule, got, tc.want)
		}
	}
}

func TestEvalScopePrefixes(t *testing.T) {
	eval := New()
	ctx := Context{
		Data:   map[string]any{"name": "child"},
		Parent: map[string]any{"name": "parent"},
		Root:   map[string]any{"name": "root"},
	}

	cases := []struct {
		rule string
		want bool
	}{
		{`data.name == "child"`, true},
		{`formData.name == "child"`, true},
		{`parent.name == "parent"`, true},
		{`parentData.name == "parent"`, true},
		{`root.name == "root"`, true},
		{`rootData.name == "root"`, true},
	}

	for _, tc := range cases {
		got, err := eval.Eval(tc.rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q): %v", tc.rule, err)
		}
		if !got {
			t.Fatalf("Eval(%q) = false, want %v", tc.rule, tc.want)
		}
	}
}

func TestEvalNestedPaths(t *testing.T) {
	eval := New()
	ctx := Context{Data: map[string]any{
		"address": map[string]any{"city": "Madrid"},
	}}

	got, err := eval.Eval(`data.address.city == "Madrid"`, ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got {
		t.Fatal("expected nested path to resolve")
	}
}

func TestEvalEmptyRuleIsTrue(t *testing.T) {
	got, err := New().Eval("  ", Context{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got {
		t.Fatal("empty rule should be vacuously true")
	}
}

func TestEvalMissingFieldIsFalsy(t *testing.T) {
	got, err := New().Eval(`data.nothing`, Context{Data: map[string]any{}})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got {
		t.Fatal("missing field should be falsy")
	}
}

func TestEvalSyntaxErrors(t *testing.T) {
	eval := New()
	for _, rule := range []string{
		`data.a =`,
		`data.a == `,
		`(data.a`,
		`data.a &&`,
		`data.a & data.b`,
		`"unterminated`,
	} {
		if _, err := eval.Eval(rule, Context{}); err == nil {
			t.Fatalf("Eval(%q): expected error", rule)
		}
	}
}

func TestFieldRefs(t *testing.T) {
	refs := FieldRefs(`data.age >= 18 && data.country == "US" || data.age < 99`)
	want := []string{"age", "country"}
	if len(refs) != len(want) {
		t.Fatalf("FieldRefs = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("FieldRefs = %v, want %v", refs, want)
		}
	}
}

func TestFieldRefsIgnoresOtherScopes(t *testing.T) {
	refs := FieldRefs(`parent.kind == "row" && root.mode == "edit"`)
	if len(refs) != 0 {
		t.Fatalf("FieldRefs = %v, want none", refs)
	}
}
