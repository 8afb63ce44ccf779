// Package object holds the runtime value model and the environment
// (frame) chain that the evaluator binds symbols in.
package object

import (
	"fmt"
	"strconv"
	"strings"

	"fexl/internal/ast"
)

// ValueType names the concrete kind of a Value, mirroring the teacher
// codebase's object.ObjectType convention.
type ValueType string

const (
	NUM            ValueType = "NUM"
	STR            ValueType = "STR"
	BOOL           ValueType = "BOOL"
	QUOTE          ValueType = "QUOTE"
	NILV           ValueType = "NIL"
	FUNCTION       ValueType = "FUNCTION"
	FEXPR          ValueType = "FEXPR"
	MACRO          ValueType = "MACRO"
	CALLSCOPEDEVAL ValueType = "CALL_SCOPED_EVAL"
	HOSTCALLABLE   ValueType = "HOST_CALLABLE"
	LIST           ValueType = "LIST"
	MAP            ValueType = "MAP"
)

// Value is the discriminated union every evaluation produces.
type Value interface {
	Type() ValueType
	Inspect() string
}

// Num is a numeric value (see ast.Num — same float64 host tower).
type Num struct{ Value float64 }

func (n *Num) Type() ValueType { return NUM }
func (n *Num) Inspect() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// Str is a string value.
type Str struct{ Value string }

func (s *Str) Type() ValueType { return STR }
func (s *Str) Inspect() string { return s.Value }

// Bool is a native boolean.
type Bool struct{ Value bool }

func (b *Bool) Type() ValueType { return BOOL }
func (b *Bool) Inspect() string { return strconv.FormatBool(b.Value) }

// Nil is the distinguished empty value. The REPL/printer renders it as an
// empty string (spec §9); Nil itself is a real value distinct from Str{""}.
type Nil struct{}

func (n *Nil) Type() ValueType { return NILV }
func (n *Nil) Inspect() string { return "" }

// QuoteVal wraps a payload that should pass through evaluation untouched.
// Payload is almost always an ast.Expr: it is how an unevaluated argument
// expression travels as a first-class Value (fexpr/macro parameter
// bindings, the value an fexpr call like `identity_fexpr(1+2)` returns).
// It may also wrap an already-evaluated Value, as db_query does with its
// result rows (see internal/primitive).
type QuoteVal struct{ Payload any }

func (q *QuoteVal) Type() ValueType { return QUOTE }
func (q *QuoteVal) Inspect() string {
	switch p := q.Payload.(type) {
	case ast.Expr:
		return p.String()
	case Value:
		return p.Inspect()
	default:
		return fmt.Sprintf("%v", p)
	}
}

// Expr returns the wrapped ast.Expr, if that's what Payload holds.
func (q *QuoteVal) Expr() (ast.Expr, bool) {
	e, ok := q.Payload.(ast.Expr)
	return e, ok
}

// Function is an eager, first-class user-defined callable: arguments are
// evaluated at the call site before being bound.
type Function struct {
	Name   string
	Params []string
	Body   ast.Expr
	Scope  *Environment
}

func (f *Function) Type() ValueType      { return FUNCTION }
func (f *Function) Inspect() string      { return "<function>" }
func (f *Function) CallableName() string { return displayName(f.Name) }

// FExpr is a lazy, first-class callable: arguments are bound to their
// unevaluated call-site expressions.
type FExpr struct {
	Name   string
	Params []string
	Body   ast.Expr
	Scope  *Environment
}

func (f *FExpr) Type() ValueType      { return FEXPR }
func (f *FExpr) Inspect() string      { return "<fexpr>" }
func (f *FExpr) CallableName() string { return displayName(f.Name) }

// Macro is a hygienic, quasiquote-expanding callable: its body is
// expanded against unevaluated arguments, then the expansion runs in the
// caller's environment.
type Macro struct {
	Name   string
	Params []string
	Body   ast.Expr
	Scope  *Environment
}

func (m *Macro) Type() ValueType      { return MACRO }
func (m *Macro) Inspect() string      { return "<macro>" }
func (m *Macro) CallableName() string { return displayName(m.Name) }

func displayName(name string) string {
	if name == "" {
		return "<lambda>"
	}
	return name
}

// CallScopedEval is the value bound to `eval` inside a running fexpr body.
// Calling it implements the two-step "resolve in def scope, evaluate in
// call scope" rule of spec §4.4.
type CallScopedEval struct {
	DefEnv  *Environment
	CallEnv *Environment
}

func (c *CallScopedEval) Type() ValueType { return CALLSCOPEDEVAL }
func (c *CallScopedEval) Inspect() string { return "<function>" }

// HostCallable wraps a primitive-bridge operator (see internal/primitive)
// as a Value so it can be registered for tracing like any other callable.
type HostCallable struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (h *HostCallable) Type() ValueType      { return HOSTCALLABLE }
func (h *HostCallable) Inspect() string      { return fmt.Sprintf("<host:%s>", h.Name) }
func (h *HostCallable) CallableName() string { return displayName(h.Name) }

// List is a mutable host sequence. spec.md's Value union does not name a
// list type explicitly, but push!/append! (§4.8) and the domain stack's
// db_query/json_decode (SPEC_FULL §4) need somewhere to put rows and
// decoded arrays — List and Map below are the minimal addition that gives
// them one (see DESIGN.md).
type List struct{ Elements []Value }

func (l *List) Type() ValueType { return LIST }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is a host string-keyed map, used for decoded JSON objects and
// database rows.
type Map struct{ Pairs map[string]Value }

func (m *Map) Type() ValueType { return MAP }
func (m *Map) Inspect() string {
	parts := make([]string, 0, len(m.Pairs))
	for k, v := range m.Pairs {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Inspect()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Callable is implemented by the three user-definable callable kinds and
// by HostCallable; the trace registry and register_traceable operate on this interface.
type Callable interface {
	Value
	CallableName() string
}

// AsExpr adapts a Value back into an ast.Expr so the macro expander and
// CallScopedEval's two-step resolution can splice it into a tree. If v
// already wraps a raw expression, that expression is returned verbatim;
// otherwise v is boxed in an ast.QuoteVal so re-evaluating the returned
// node yields v unchanged (ast.QuoteVal's eval rule returns Payload as-is).
func AsExpr(v Value) ast.Expr {
	if q, ok := v.(*QuoteVal); ok {
		if e, ok := q.Expr(); ok {
			return e
		}
	}
	return ast.QuoteVal{Payload: v}
}

// Quote boxes an ast.Expr as a QuoteVal Value — the inverse of AsExpr when
// no unwrapping is warranted.
func Quote(e ast.Expr) *QuoteVal { return &QuoteVal{Payload: e} }
