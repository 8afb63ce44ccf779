package evaluator

import (
	"fexl/internal/ast"
	"fexl/internal/object"
)

// gensymPass implements spec §4.6's hygiene step. It walks body
// collecting every symbol that appears anywhere in it — conservatively,
// not only assignment targets, matching the reference's over-broad but
// safe approach (§9) — and for each one not already bound in env, binds
// it there to a freshly minted symbol. A later interpolation of that name
// resolves through this binding instead of the macro-introduced name,
// which is how a macro-internal helper like `loop` avoids clobbering a
// call-site binding of the same name.
func (ev *Evaluator) gensymPass(body ast.Expr, env *object.Environment) {
	seen := map[string]bool{}
	collectSymbols(body, seen)
	for name := range seen {
		if _, bound := env.Lookup(name); bound {
			continue
		}
		env.Define(name, object.Quote(ast.Sym{Name: ev.gensym.fresh()}))
	}
}

func collectSymbols(expr ast.Expr, into map[string]bool) {
	switch e := expr.(type) {
	case ast.Sym:
		into[e.Name] = true
	case ast.Composite:
		for _, a := range e.Args {
			collectSymbols(a, into)
		}
	}
}

// expand implements spec §4.6's quasi-expansion: a structural copy of
// expr, recursing into children, except that an Interpolate node is
// replaced wholesale by interpolate's result.
func (ev *Evaluator) expand(expr ast.Expr, env *object.Environment) (ast.Expr, error) {
	c, ok := expr.(ast.Composite)
	if !ok {
		return expr, nil
	}
	if c.Tag == ast.Interp {
		return ev.interpolate(c, env)
	}
	newArgs := make([]ast.Expr, len(c.Args))
	for i, a := range c.Args {
		ex, err := ev.expand(a, env)
		if err != nil {
			return nil, err
		}
		newArgs[i] = ex
	}
	return ast.Composite{Tag: c.Tag, Args: newArgs}, nil
}

// interpolate implements spec §4.6's Interpolate(expr, env) used during
// expansion: read the last argument as a symbol and return the lookup's
// result *without evaluating it* — env binds that symbol to an
// unevaluated argument expression (or, after gensymPass, to a fresh
// symbol), so the result splices straight back into the tree.
func (ev *Evaluator) interpolate(c ast.Composite, env *object.Environment) (ast.Expr, error) {
	sym, err := lastArgSym(c)
	if err != nil {
		return nil, err
	}
	val, ok := env.Lookup(sym.Name)
	if !ok {
		return nil, unboundSymbol(sym.Name)
	}
	return object.AsExpr(val), nil
}
