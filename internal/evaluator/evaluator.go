// Package evaluator is the core: the dispatch table over ast.Expr heads
// (spec §4.2), the call protocol distinguishing Function/FExpr/Macro
// (§4.3), the CallScopedEval two-step eval rule (§4.4), fexpr/macro
// definition (§4.5/§4.6), and the tracing hook (§4.7).
package evaluator

import (
	"io"
	"os"

	"fexl/internal/ast"
	"fexl/internal/object"
	"fexl/internal/primitive"
)

// Evaluator owns the one piece of state a running interpreter needs
// beyond the environment chain: the primitive registry (which in turn
// owns db handles, compiled regexes, and println's output stream) and
// the gensym source macro hygiene draws from.
type Evaluator struct {
	Global     *object.Environment
	Primitives *primitive.Registry
	Out        io.Writer

	gensym *gensymSource
}

// New builds an Evaluator with a fresh global frame and a fully wired
// primitive registry. out receives println and trace output; it
// defaults to os.Stdout when nil.
func New(out io.Writer) *Evaluator {
	if out == nil {
		out = os.Stdout
	}
	reg := primitive.New()
	reg.Stdout = out
	global := object.NewGlobalEnvironment()
	// The AST has no boolean atom (spec §3's atom shapes are Sym, Num,
	// Str, QuoteVal, LineMarker, Nil); `true`/`false` lex as symbols and
	// resolve through the ordinary environment chain like any other
	// global binding.
	global.Define("true", &object.Bool{Value: true})
	global.Define("false", &object.Bool{Value: false})
	return &Evaluator{
		Global:     global,
		Primitives: reg,
		Out:        out,
		gensym:     newGensymSource(),
	}
}

// Eval is the dispatch table of spec §4.2.
func (ev *Evaluator) Eval(expr ast.Expr, env *object.Environment) (object.Value, error) {
	switch n := expr.(type) {
	case ast.Num:
		return &object.Num{Value: n.Value}, nil
	case ast.Str:
		return &object.Str{Value: n.Value}, nil
	case ast.QuoteVal:
		return payloadToValue(n.Payload), nil
	case ast.NilExpr:
		return &object.Str{Value: ""}, nil
	case ast.LineMarker:
		return &object.Nil{}, nil
	case ast.Sym:
		return ev.evalSym(n, env)
	case ast.Composite:
		return ev.evalComposite(n, env)
	default:
		return nil, newErr(KindMalformedAST, "unrecognized expression node %T", expr)
	}
}

// payloadToValue implements "for QuoteVal, return the wrapped payload":
// a payload that already is a Value passes through unchanged; a payload
// that is itself an unevaluated Expr (the macro expander occasionally
// splices one back in) is re-boxed as a Value rather than evaluated.
func payloadToValue(payload any) object.Value {
	if v, ok := payload.(object.Value); ok {
		return v
	}
	return &object.QuoteVal{Payload: payload}
}

func (ev *Evaluator) evalSym(s ast.Sym, env *object.Environment) (object.Value, error) {
	if v, ok := env.Lookup(s.Name); ok {
		return v, nil
	}
	if hc, ok := ev.Primitives.HostCallable(s.Name); ok {
		return hc, nil
	}
	return nil, unboundSymbol(s.Name)
}

func (ev *Evaluator) evalComposite(c ast.Composite, env *object.Environment) (object.Value, error) {
	switch c.Tag {
	case ast.Block, ast.Toplevel:
		return ev.evalSequence(c.Args, env)
	case ast.If, ast.Elseif:
		return ev.evalIf(c, env)
	case ast.And:
		return ev.evalAnd(c, env)
	case ast.OrOp:
		return ev.evalOr(c, env)
	case ast.Assign:
		return ev.evalAssign(c, env)
	case ast.Let:
		return ev.evalLet(c, env)
	case ast.FExprDef:
		return ev.evalFExprDef(c, env)
	case ast.MacroDef:
		return ev.evalMacroDef(c, env)
	case ast.Global:
		return ev.evalGlobal(c, env)
	case ast.Lambda:
		return ev.evalLambda(c, env)
	case ast.Quote:
		return ev.evalQuote(c, env)
	case ast.Interp:
		return ev.evalInterpolateStandalone(c, env)
	case ast.Call:
		return ev.evalCall(c, env)
	default:
		return ev.evalMapOverArgs(c, env)
	}
}

func (ev *Evaluator) evalSequence(exprs []ast.Expr, env *object.Environment) (object.Value, error) {
	var result object.Value = &object.Nil{}
	for _, e := range exprs {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (ev *Evaluator) evalIf(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) < 2 {
		return nil, newErr(KindMalformedAST, "%s requires a condition and a then-branch", c.Tag)
	}
	cond, err := ev.Eval(c.Args[0], env)
	if err != nil {
		return nil, err
	}
	if isFalse(cond) {
		if len(c.Args) > 2 {
			return ev.Eval(c.Args[2], env)
		}
		return &object.Bool{Value: false}, nil
	}
	return ev.Eval(c.Args[1], env)
}

func (ev *Evaluator) evalAnd(c ast.Composite, env *object.Environment) (object.Value, error) {
	var result object.Value = &object.Bool{Value: true}
	for _, e := range c.Args {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		if isFalse(v) {
			return &object.Bool{Value: false}, nil
		}
		result = v
	}
	return result, nil
}

func (ev *Evaluator) evalOr(c ast.Composite, env *object.Environment) (object.Value, error) {
	for _, e := range c.Args {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		if !isFalse(v) {
			return v, nil
		}
	}
	return &object.Bool{Value: false}, nil
}

// isFalse reports whether v is the literal boolean false; every other
// value, including Nil and the empty string, is truthy (spec §4.2's And
// row: "if any evaluates to the literal false").
func isFalse(v object.Value) bool {
	b, ok := v.(*object.Bool)
	return ok && !b.Value
}

func (ev *Evaluator) evalLet(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) != 2 {
		return nil, newErr(KindMalformedAST, "Let requires a binding and a body")
	}
	inner := env.Extend()
	if _, err := ev.Eval(c.Args[0], inner); err != nil {
		return nil, err
	}
	return ev.Eval(c.Args[1], inner)
}

func (ev *Evaluator) evalLambda(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) == 0 {
		return nil, newErr(KindMalformedAST, "Lambda requires a body")
	}
	params := make([]string, 0, len(c.Args)-1)
	for _, p := range c.Args[:len(c.Args)-1] {
		sym, ok := p.(ast.Sym)
		if !ok {
			return nil, newErr(KindMalformedAST, "Lambda parameters must be symbols")
		}
		params = append(params, sym.Name)
	}
	body := c.Args[len(c.Args)-1]
	return &object.Function{Params: params, Body: body, Scope: env.Extend()}, nil
}

// evalQuote evaluates each sub-expression in the current environment and
// returns the last result. Spec §9 flags this as likely a defect in the
// reference implementation — a cleaner design would return the AST
// verbatim — but the behavior is retained for bug-compatible tests.
func (ev *Evaluator) evalQuote(c ast.Composite, env *object.Environment) (object.Value, error) {
	return ev.evalSequence(c.Args, env)
}

func (ev *Evaluator) evalInterpolateStandalone(c ast.Composite, env *object.Environment) (object.Value, error) {
	sym, err := lastArgSym(c)
	if err != nil {
		return nil, err
	}
	if v, ok := env.Lookup(sym.Name); ok {
		return v, nil
	}
	if hc, ok := ev.Primitives.HostCallable(sym.Name); ok {
		return hc, nil
	}
	return nil, unboundSymbol(sym.Name)
}

func lastArgSym(c ast.Composite) (ast.Sym, error) {
	if len(c.Args) == 0 {
		return ast.Sym{}, newErr(KindMalformedAST, "%s requires at least one argument", c.Tag)
	}
	sym, ok := c.Args[len(c.Args)-1].(ast.Sym)
	if !ok {
		return ast.Sym{}, newErr(KindMalformedAST, "%s's last argument must be a symbol", c.Tag)
	}
	return sym, nil
}

func (ev *Evaluator) evalMapOverArgs(c ast.Composite, env *object.Environment) (object.Value, error) {
	elems := make([]object.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &object.List{Elements: elems}, nil
}
