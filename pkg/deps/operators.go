package deps

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// applyOperator compares a field's current value against the condition's
// comparison value. Numeric comparisons coerce both sides to float64; string
// comparisons fall back to rendered strings.
func applyOperator(op model.Operator, got, want any) (bool, error) {
	switch op {
	case model.OpEquals, "":
		return looseEqual(got, want), nil
	case model.OpNotEquals:
		return !looseEqual(got, want), nil
	case model.OpContains:
		return contains(got, want), nil
	case model.OpNotContains:
		return !contains(got, want), nil
	case model.OpGt, model.OpGte, model.OpLt, model.OpLte:
		return compareNumeric(op, got, want)
	case model.OpEmpty:
		return isEmpty(got), nil
	case model.OpNotEmpty:
		return !isEmpty(got), nil
	case model.OpIn:
		return within(got, want), nil
	case model.OpNotIn:
		return !within(got, want), nil
	default:
		return false, fmt.Errorf("deps: unknown operator %q", op)
	}
}

func looseEqual(got, want any) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	if gn, ok := expr.CoerceNumber(got); ok {
		if wn, ok := expr.CoerceNumber(want); ok {
			return gn == wn
		}
	}
	if reflect.DeepEqual(got, want) {
		return true
	}
	return expr.CoerceString(got) == expr.CoerceString(want)
}

func compareNumeric(op model.Operator, got, want any) (bool, error) {
	gn, ok := expr.CoerceNumber(got)
	if !ok {
		return false, nil
	}
	wn, ok := expr.CoerceNumber(want)
	if !ok {
		return false, fmt.Errorf("deps: operator %q needs a numeric comparison value", op)
	}
	switch op {
	case model.OpGt:
		return gn > wn, nil
	case model.OpGte:
		return gn >= wn, nil
	case model.OpLt:
		return gn < wn, nil
	case model.OpLte:
		return gn <= wn, nil
	default:
		return false, fmt.Errorf("deps: operator %q is not numeric", op)
	}
}

// contains checks substring membership for strings and element membership for
// slices.
func contains(got, want any) bool {
	switch g := got.(type) {
	case string:
		return strings.Contains(g, expr.CoerceString(want))
	case []any:
		for _, item := range g {
			if looseEqual(item, want) {
				return true
			}
		}
		return false
	case []string:
		needle := expr.CoerceString(want)
		for _, item := range g {
			if item == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// within checks whether got is a member of the want collection.
func within(got, want any) bool {
	switch w := want.(type) {
	case []any:
		for _, item := range w {
			if looseEqual(got, item) {
				return true
			}
		}
		return false
	case []string:
		needle := expr.CoerceString(got)
		for _, item := range w {
			if item == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
