package compute

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// ScriptEngine executes user-authored Starlark snippets against a data
// context. Scripts are either a single expression (`data["age"] >= 18`) or a
// function body with a return statement; the engine wraps bodies in a hidden
// function so `return` works as authors expect. Print output is discarded.
type ScriptEngine struct{}

// NewScriptEngine constructs a ScriptEngine.
func NewScriptEngine() *ScriptEngine { return &ScriptEngine{} }

// Run evaluates source with the provided bindings in scope and returns the
// script's value converted back to plain Go data.
func (e *ScriptEngine) Run(source string, bindings map[string]any) (any, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, nil
	}

	predeclared := starlark.StringDict{}
	for name, value := range bindings {
		converted, err := toStarlark(value)
		if err != nil {
			return nil, fmt.Errorf("compute: bind %s: %w", name, err)
		}
		predeclared[name] = converted
	}

	thread := &starlark.Thread{
		Name:  "formruntime",
		Print: func(*starlark.Thread, string) {},
	}

	if _, err := syntax.ParseExpr("script.star", trimmed, 0); err == nil {
		value, err := starlark.Eval(thread, "script.star", trimmed, predeclared)
		if err != nil {
			return nil, fmt.Errorf("compute: script failed: %w", err)
		}
		return fromStarlark(value)
	}

	globals, err := starlark.ExecFile(thread, "script.star", wrapBody(trimmed), predeclared)
	if err != nil {
		return nil, fmt.Errorf("compute: script failed: %w", err)
	}
	result, ok := globals[resultGlobal]
	if !ok {
		return nil, nil
	}
	return fromStarlark(result)
}

const resultGlobal = "__result__"

func wrapBody(body string) string {
	var b strings.Builder
	b.WriteString("def __body__():\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(resultGlobal + " = __body__()\n")
	return b.String()
}

func toStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}
	switch val := v.(type) {
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float32:
		return starlark.Float(float64(val)), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			converted, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return starlark.NewList(items), nil
	case []string:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			items[i] = starlark.String(item)
		}
		return starlark.NewList(items), nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for key, item := range val {
			converted, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(key), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[string]string:
		dict := starlark.NewDict(len(val))
		for key, item := range val {
			if err := dict.SetKey(starlark.String(key), starlark.String(item)); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

func fromStarlark(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case nil, starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("compute: integer result too large")
		}
		return float64(i), nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case *starlark.List:
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, err := fromStarlark(val.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case starlark.Tuple:
		out := make([]any, len(val))
		for i, item := range val {
			converted, err := fromStarlark(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case *starlark.Dict:
		out := make(map[string]any, val.Len())
		for _, pair := range val.Items() {
			key, ok := pair[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("compute: dict keys must be strings, got %s", pair[0].Type())
			}
			item, err := fromStarlark(pair[1])
			if err != nil {
				return nil, err
			}
			out[string(key)] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compute: unsupported result type %s", v.Type())
	}
}
