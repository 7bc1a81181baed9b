package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

func (e *Engine) checkString(compiled compiledRule, value any) *Issue {
	rule := compiled.rule
	text := expr.CoerceString(value)

	switch rule.Key {
	case RuleMin:
		limit, ok := rule.Limit()
		if ok && float64(len([]rune(text))) < limit {
			return fail(rule, fmt.Sprintf("Must be at least %v characters", trimFloat(limit)))
		}
	case RuleMax:
		limit, ok := rule.Limit()
		if ok && float64(len([]rune(text))) > limit {
			return fail(rule, fmt.Sprintf("Must be at most %v characters", trimFloat(limit)))
		}
	case RuleLength:
		limit, ok := rule.Limit()
		if ok && float64(len([]rune(text))) != limit {
			return fail(rule, fmt.Sprintf("Must be exactly %v characters", trimFloat(limit)))
		}
	case RuleRegex:
		if compiled.pattern != nil && !compiled.pattern.MatchString(text) {
			return fail(rule, "Does not match the expected pattern")
		}
	case RuleEmail:
		if e.formats.Var(text, "email") != nil {
			return fail(rule, "Must be a valid email address")
		}
	case RuleURL:
		if e.formats.Var(text, "url") != nil {
			return fail(rule, "Must be a valid URL")
		}
	case RuleUUID:
		if e.formats.Var(text, "uuid") != nil {
			return fail(rule, "Must be a valid UUID")
		}
	case RuleIP:
		if e.formats.Var(text, "ip") != nil {
			return fail(rule, "Must be a valid IP address")
		}
	case RuleDatetime:
		layout := rule.StringArg("format")
		if layout == "" {
			layout = time.RFC3339
		}
		if e.formats.Var(text, "datetime="+layout) != nil {
			return fail(rule, "Must be a valid date/time")
		}
	case RuleIncludes:
		want := rule.StringArg("value")
		if want != "" && !strings.Contains(text, want) {
			return fail(rule, fmt.Sprintf("Must include %q", want))
		}
	case RuleStartsWith:
		want := rule.StringArg("value")
		if want != "" && !strings.HasPrefix(text, want) {
			return fail(rule, fmt.Sprintf("Must start with %q", want))
		}
	case RuleEndsWith:
		want := rule.StringArg("value")
		if want != "" && !strings.HasSuffix(text, want) {
			return fail(rule, fmt.Sprintf("Must end with %q", want))
		}
	}
	return nil
}

func (e *Engine) checkNumber(rule Rule, value any) *Issue {
	number, ok := expr.CoerceNumber(value)
	if !ok {
		return fail(rule, "Must be a number")
	}

	switch rule.Key {
	case RuleMin:
		limit, has := rule.Limit()
		if has && number < limit {
			return fail(rule, fmt.Sprintf("Must be greater than or equal to %v", trimFloat(limit)))
		}
	case RuleMax:
		limit, has := rule.Limit()
		if has && number > limit {
			return fail(rule, fmt.Sprintf("Must be less than or equal to %v", trimFloat(limit)))
		}
	case RuleLessThan:
		limit, has := rule.Limit()
		if has && number >= limit {
			return fail(rule, fmt.Sprintf("Must be less than %v", trimFloat(limit)))
		}
	case RuleMoreThan:
		limit, has := rule.Limit()
		if has && number <= limit {
			return fail(rule, fmt.Sprintf("Must be greater than %v", trimFloat(limit)))
		}
	case RuleInteger:
		if number != math.Trunc(number) {
			return fail(rule, "Must be an integer")
		}
	case RuleMultipleOf:
		limit, has := rule.Limit()
		if has && limit != 0 && math.Mod(number, limit) != 0 {
			return fail(rule, fmt.Sprintf("Must be a multiple of %v", trimFloat(limit)))
		}
	}
	return nil
}

func (e *Engine) checkDate(rule Rule, value any) *Issue {
	when, ok := coerceTime(value)
	if !ok {
		return fail(rule, "Must be a valid date")
	}

	switch rule.Key {
	case RuleMin:
		bound, ok := coerceTime(rule.Args["limit"])
		if !ok {
			bound, ok = coerceTime(rule.Args["value"])
		}
		if ok && when.Before(bound) {
			return fail(rule, fmt.Sprintf("Must not be before %s", bound.Format(time.RFC3339)))
		}
	case RuleMax:
		bound, ok := coerceTime(rule.Args["limit"])
		if !ok {
			bound, ok = coerceTime(rule.Args["value"])
		}
		if ok && when.After(bound) {
			return fail(rule, fmt.Sprintf("Must not be after %s", bound.Format(time.RFC3339)))
		}
	}
	return nil
}

func (e *Engine) checkArray(rule Rule, value any) *Issue {
	length, ok := collectionLen(value)
	if !ok {
		return fail(rule, "Must be a list")
	}

	switch rule.Key {
	case RuleMin:
		limit, has := rule.Limit()
		if has && float64(length) < limit {
			return fail(rule, fmt.Sprintf("Must have at least %v items", trimFloat(limit)))
		}
	case RuleMax:
		limit, has := rule.Limit()
		if has && float64(length) > limit {
			return fail(rule, fmt.Sprintf("Must have at most %v items", trimFloat(limit)))
		}
	}
	return nil
}

func collectionLen(value any) (int, bool) {
	switch v := value.(type) {
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}

func coerceTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range dateLayouts {
			if when, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return when, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// trimFloat renders a threshold without a trailing ".0" noise for integral
// values.
func trimFloat(f float64) any {
	if f == math.Trunc(f) {
		return int64(f)
	}
	return f
}

// gateCompare applies a fieldValue gate without pulling in the full deps
// operator table; equals/notEquals cover the gate shapes forms author.
func gateCompare(gate model.DependencyCondition, got any) (bool, error) {
	switch gate.Operator {
	case model.OpNotEquals:
		return expr.CoerceString(got) != expr.CoerceString(gate.Value), nil
	case model.OpEquals, "":
		return expr.CoerceString(got) == expr.CoerceString(gate.Value), nil
	case model.OpEmpty:
		return got == nil || expr.CoerceString(got) == "", nil
	case model.OpNotEmpty:
		return got != nil && expr.CoerceString(got) != "", nil
	default:
		return false, fmt.Errorf("validation: unsupported gate operator %q", gate.Operator)
	}
}
