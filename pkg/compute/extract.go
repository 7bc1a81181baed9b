package compute

import (
	"regexp"

	"github.com/goliatone/go-formruntime/pkg/expr"
	"github.com/goliatone/go-formruntime/pkg/model"
)

// fieldRefPattern matches static `data.<field>` style accesses in a script
// body, including the bracketed form `data["field"]` and the legacy
// `form_data` alias.
var fieldRefPattern = regexp.MustCompile(
	`\b(?:data|form_data|formData)(?:\.([A-Za-z_][A-Za-z0-9_]*)|\[\s*["']([^"']+)["']\s*\])`,
)

// FieldRefs returns the data-store fields a computed property reads, used as
// an advisory hint for fine-grained re-evaluation. This is a best-effort
// token scan, not a parser: dynamic access such as `data[some_expr]` is not
// detected, so callers must never rely on the result for correctness.
func FieldRefs(prop model.ComputedProperty) []string {
	if prop.Kind() != ComputeFunctionKind {
		return nil
	}
	return scriptFieldRefs(prop.FnSource)
}

// ScriptFieldRefs scans a raw script body for static field references.
func ScriptFieldRefs(source string) []string {
	return scriptFieldRefs(source)
}

func scriptFieldRefs(source string) []string {
	matches := fieldRefPattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return nil
	}
	var refs []string
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		field := m[1]
		if field == "" {
			field = m[2]
		}
		if field == "" {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		refs = append(refs, field)
	}
	return refs
}

// ExpressionFieldRefs exposes the expression evaluator's reference scan so
// callers can treat both property kinds uniformly.
func ExpressionFieldRefs(rule string) []string {
	return expr.FieldRefs(rule)
}
