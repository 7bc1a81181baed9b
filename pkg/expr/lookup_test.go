package expr

import "testing"

func TestLookupPrefersExactDottedKey(t *testing.T) {
	ctx := Context{Data: map[string]any{
		"address.city": "literal",
		"address":      map[string]any{"city": "nested"},
	}}

	got, ok := Lookup(ctx, "data.address.city")
	if !ok {
		t.Fatal("expected a value")
	}
	if got != "literal" {
		t.Fatalf("got %v, want the exact dotted key", got)
	}
}

func TestLookupTraversesNestedMaps(t *testing.T) {
	ctx := Context{Data: map[string]any{
		"address": map[string]any{"geo": map[string]any{"lat": 40.4}},
	}}

	got, ok := Lookup(ctx, "address.geo.lat")
	if !ok || got != 40.4 {
		t.Fatalf("got %v (%v), want 40.4", got, ok)
	}
}

func TestLookupMissing(t *testing.T) {
	if _, ok := Lookup(Context{}, "data.anything"); ok {
		t.Fatal("empty context should resolve nothing")
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"  ", false},
		{"x", true},
		{0, false},
		{float64(0), false},
		{float64(0.1), true},
		{[]any{}, false},
		{[]any{1}, true},
		{map[string]any{}, false},
		{map[string]any{"k": 1}, true},
	}
	for _, tc := range cases {
		if got := Truthy(tc.in); got != tc.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	if got, ok := CoerceNumber("42.5"); !ok || got != 42.5 {
		t.Fatalf("CoerceNumber(string) = %v, %v", got, ok)
	}
	if got, ok := CoerceNumber(7); !ok || got != 7 {
		t.Fatalf("CoerceNumber(int) = %v, %v", got, ok)
	}
	if _, ok := CoerceNumber("not a number"); ok {
		t.Fatal("expected coercion failure")
	}
	if _, ok := CoerceNumber(nil); ok {
		t.Fatal("nil should not coerce")
	}
}

func TestCoerceBool(t *testing.T) {
	if got, ok := CoerceBool("true"); !ok || !got {
		t.Fatalf("CoerceBool(\"true\") = %v, %v", got, ok)
	}
	if got, _ := CoerceBool("yes please"); !got {
		t.Fatal("non-empty unparseable string should be true")
	}
	if _, ok := CoerceBool(nil); ok {
		t.Fatal("nil carries no value")
	}
}
