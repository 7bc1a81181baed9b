package model

import "testing"

func TestComputedPropertyKind(t *testing.T) {
	cases := []struct {
		name string
		prop ComputedProperty
		want ComputeType
	}{
		{"explicit static", Static("x"), ComputeStatic},
		{"explicit function", Function("return 1"), ComputeFunction},
		{"explicit localization", Localized("form.title"), ComputeLocalization},
		{"implied function", ComputedProperty{FnSource: "return 1"}, ComputeFunction},
		{"implied static", ComputedProperty{Value: 42}, ComputeStatic},
		{"explicit wins over source", ComputedProperty{ComputeType: ComputeStatic, FnSource: "ignored"}, ComputeStatic},
	}

	for _, tc := range cases {
		if got := tc.prop.Kind(); got != tc.want {
			t.Fatalf("%s: Kind() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestComputedPropertyIsZero(t *testing.T) {
	if !(ComputedProperty{}).IsZero() {
		t.Fatal("zero value should report zero")
	}
	if (ComputedProperty{Value: false}).IsZero() {
		t.Fatal("a false literal is still a value")
	}
}

func TestComputedPropertyFromAnyRecognisesMaps(t *testing.T) {
	prop, ok := ComputedPropertyFromAny(map[string]any{
		"computeType": "function",
		"fnSource":    "return data.a",
	})
	if !ok {
		t.Fatal("expected a computed property")
	}
	if prop.Kind() != ComputeFunction || prop.FnSource != "return data.a" {
		t.Fatalf("decoded %#v", prop)
	}
}

func TestComputedPropertyFromAnyRejectsPlainValues(t *testing.T) {
	for _, raw := range []any{
		"hello",
		42,
		map[string]any{"value": "wrapped literal"},
		[]any{1, 2},
		nil,
	} {
		if _, ok := ComputedPropertyFromAny(raw); ok {
			t.Fatalf("%#v should not decode as computed", raw)
		}
	}
}

func TestComputedPropertyFromAnyAcceptsStructAndPointer(t *testing.T) {
	direct := Static("v")
	if prop, ok := ComputedPropertyFromAny(direct); !ok || prop.Value != "v" {
		t.Fatalf("struct passthrough failed: %#v %v", prop, ok)
	}
	if prop, ok := ComputedPropertyFromAny(&direct); !ok || prop.Value != "v" {
		t.Fatalf("pointer passthrough failed: %#v %v", prop, ok)
	}
	if _, ok := ComputedPropertyFromAny((*ComputedProperty)(nil)); ok {
		t.Fatal("nil pointer should not decode")
	}
}

func TestDependencyConditionKind(t *testing.T) {
	cases := []struct {
		cond DependencyCondition
		want ConditionKind
	}{
		{DependencyCondition{Type: ConditionExpression}, ConditionExpression},
		{DependencyCondition{FnSource: "return true"}, ConditionFunction},
		{DependencyCondition{Expression: "data.a"}, ConditionExpression},
		{DependencyCondition{Field: "a", Operator: OpEquals}, ConditionFieldValue},
	}
	for _, tc := range cases {
		if got := tc.cond.Kind(); got != tc.want {
			t.Fatalf("Kind(%#v) = %q, want %q", tc.cond, got, tc.want)
		}
	}
}

func TestComponentDependenciesIsZero(t *testing.T) {
	var nilDeps *ComponentDependencies
	if !nilDeps.IsZero() {
		t.Fatal("nil deps should be zero")
	}
	if !(&ComponentDependencies{}).IsZero() {
		t.Fatal("empty deps should be zero")
	}
	if (&ComponentDependencies{ResetOn: []string{"country"}}).IsZero() {
		t.Fatal("resetOn makes deps non-zero")
	}
}
