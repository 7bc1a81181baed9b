package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Context provides the scoped value maps an expression reads from. Bare
// identifiers and the `data.` / legacy `formData.` prefixes resolve against
// Data; `parent.`/`parentData.` against Parent; `root.`/`rootData.` against
// Root. Dot paths traverse nested maps.
type Context struct {
	Data   map[string]any
	Parent map[string]any
	Root   map[string]any
}

// Evaluator is a small, restricted boolean-expression evaluator.
//
// Supported grammar:
//   - truthy checks: `data.enabled`
//   - comparisons: `data.age >= 18`, `data.country == "US"`, `count != 3`
//   - boolean composition: `a == true && b != false`, `a || b`, `!a`
//   - grouping: `(a || b) && c`
//
// Literals may be strings, numbers, booleans, or null.
type Evaluator struct{}

// New constructs an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval evaluates rule against ctx. An empty rule is vacuously true.
func (e *Evaluator) Eval(rule string, ctx Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	node, err := parse(trimmed)
	if err != nil {
		return false, err
	}
	if node == nil {
		return true, nil
	}
	return node.eval(ctx)
}

// FieldRefs returns the data-scope field names referenced by rule, in first
// occurrence order. Parse failures yield nil; callers treating the result as
// an optimization hint get no worse than full re-evaluation.
func FieldRefs(rule string) []string {
	tokens, err := tokenize(strings.TrimSpace(rule))
	if err != nil {
		return nil
	}
	var refs []string
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if tok.kind != tokenIdentifier {
			continue
		}
		scope, path := splitScope(tok.raw)
		if scope != scopeData || path == "" {
			continue
		}
		field := path
		if idx := strings.IndexByte(field, '.'); idx > 0 {
			field = field[:idx]
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		refs = append(refs, field)
	}
	return refs
}

func parse(input string) (exprNode, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenGt
	tokenGte
	tokenLt
	tokenLte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	for i < len(input) {
		ch := peek()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		switch ch {
		case '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			continue
		case ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			continue
		case '!':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			continue
		case '=':
			i++
			if peek() != '=' {
				return nil, errors.New("expr: unexpected '='; use '=='")
			}
			i++
			// tolerate the strict-equality spelling
			if peek() == '=' {
				i++
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			continue
		case '>':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenGte, raw: ">="})
				continue
			}
			tokens = append(tokens, token{kind: tokenGt, raw: ">"})
			continue
		case '<':
			i++
			if peek() == '=' {
				i++
				tokens = append(tokens, token{kind: tokenLte, raw: "<="})
				continue
			}
			tokens = append(tokens, token{kind: tokenLt, raw: "<"})
			continue
		case '&':
			i++
			if peek() != '&' {
				return nil, errors.New("expr: unexpected '&'; use '&&'")
			}
			i++
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			continue
		case '|':
			i++
			if peek() != '|' {
				return nil, errors.New("expr: unexpected '|'; use '||'")
			}
			i++
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			continue
		case '"', '\'':
			quote := input[i]
			i++
			start := i
			escaped := false
			closed := false
			for i < len(input) {
				c := input[i]
				i++
				if escaped {
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == quote {
					raw := `"` + strings.ReplaceAll(input[start:i-1], `"`, `\"`) + `"`
					value, err := strconv.Unquote(raw)
					if err != nil {
						return nil, fmt.Errorf("expr: invalid string literal: %w", err)
					}
					tokens = append(tokens, token{kind: tokenString, raw: value})
					closed = true
					break
				}
			}
			if !closed {
				return nil, errors.New("expr: unterminated string literal")
			}
			continue
		default:
			start := i
			for i < len(input) {
				c := input[i]
				if strings.IndexByte(" \t\n\r()!=&|<>", c) >= 0 {
					break
				}
				i++
			}
			raw := strings.TrimSpace(input[start:i])
			if raw == "" {
				continue
			}
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
			case "null", "nil", "undefined":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{kind: tokenNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
				}
			}
		}
	}

	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' || ch == '.'
}

type exprNode interface {
	eval(ctx Context) (bool, error)
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

type exprNot struct{ inner exprNode }

func (n exprNot) eval(ctx Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

type exprCompare struct {
	identifier string
	op         tokenKind
	literal    literal
}

func (n exprCompare) eval(ctx Context) (bool, error) {
	value, _ := Lookup(ctx, n.identifier)

	switch n.op {
	case tokenEq, tokenNeq:
		equal, err := n.literalEquals(value)
		if err != nil {
			return false, err
		}
		if n.op == tokenEq {
			return equal, nil
		}
		return !equal, nil
	case tokenGt, tokenGte, tokenLt, tokenLte:
		if n.literal.kind == litString {
			got := CoerceString(value)
			return compareOrdered(strings.Compare(got, n.literal.raw), n.op), nil
		}
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("expr: operator %q needs a numeric or string literal", opString(n.op))
		}
		got, ok := CoerceNumber(value)
		if !ok {
			return false, nil
		}
		switch {
		case got < want:
			return compareOrdered(-1, n.op), nil
		case got > want:
			return compareOrdered(1, n.op), nil
		default:
			return compareOrdered(0, n.op), nil
		}
	default:
		return false, fmt.Errorf("expr: unsupported operator %q", opString(n.op))
	}
}

func (n exprCompare) literalEquals(value any) (bool, error) {
	switch n.literal.kind {
	case litNull:
		return value == nil, nil
	case litBool:
		want := n.literal.raw == "true"
		got, _ := CoerceBool(value)
		return got == want, nil
	case litNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("expr: invalid number literal %q", n.literal.raw)
		}
		got, ok := CoerceNumber(value)
		if !ok {
			return false, nil
		}
		return got == want, nil
	case litString:
		return CoerceString(value) == n.literal.raw, nil
	default:
		return false, errors.New("expr: unsupported literal")
	}
}

func compareOrdered(cmp int, op tokenKind) bool {
	switch op {
	case tokenGt:
		return cmp > 0
	case tokenGte:
		return cmp >= 0
	case tokenLt:
		return cmp < 0
	case tokenLte:
		return cmp <= 0
	default:
		return false
	}
}

func opString(op tokenKind) string {
	switch op {
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	case tokenGt:
		return ">"
	case tokenGte:
		return ">="
	case tokenLt:
		return "<"
	case tokenLte:
		return "<="
	default:
		return "?"
	}
}

type exprTruthy struct{ identifier string }

func (n exprTruthy) eval(ctx Context) (bool, error) {
	value, ok := Lookup(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return Truthy(value), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

var comparisonOps = []tokenKind{tokenEq, tokenNeq, tokenGte, tokenLte, tokenGt, tokenLt}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("expr: empty expression")
		}
		return nil, fmt.Errorf("expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}

	for _, op := range comparisonOps {
		if stream.match(op) {
			lit, err := stream.consumeLiteral()
			if err != nil {
				return nil, err
			}
			return exprCompare{identifier: ident.raw, op: op, literal: lit}, nil
		}
	}

	return exprTruthy{identifier: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) {
		return false
	}
	if s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	if s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		return literal{kind: litNumber, raw: tok.raw}, nil
	case tokenBool:
		return literal{kind: litBool, raw: strings.ToLower(tok.raw)}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	case tokenIdentifier:
		// Bare identifiers are treated as strings to keep the evaluator forgiving.
		return literal{kind: litString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("expr: expected literal, got %q", tok.raw)
	}
}
