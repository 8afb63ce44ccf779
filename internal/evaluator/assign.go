package evaluator

import (
	"fexl/internal/ast"
	"fexl/internal/object"
)

// evalAssign implements spec §4.3's Assign rule with storing_env = env:
// a plain `=` at any non-Global site stores where it is evaluated.
func (ev *Evaluator) evalAssign(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) != 2 {
		return nil, newErr(KindMalformedAST, "Assign requires a left and right side")
	}
	return ev.doAssign(env, env, c.Args[0], c.Args[1])
}

// doAssign is the shared Assign/Global implementation: "if lhs is a
// Call(name, p0, ..., pk), construct a Function with those params, rhs
// as body, and env as defining environment; bind name in storing_env.
// Otherwise evaluate rhs in env and bind lhs (a symbol) in storing_env."
func (ev *Evaluator) doAssign(env, storing *object.Environment, lhs, rhs ast.Expr) (object.Value, error) {
	if name, params, ok := ast.Sig(lhs); ok {
		fn := &object.Function{Name: name, Params: params, Body: rhs, Scope: env.Extend()}
		storing.Assign(name, fn)
		return fn, nil
	}
	sym, isSym := lhs.(ast.Sym)
	if !isSym {
		return nil, newErr(KindMalformedAST, "left side of = must be a symbol or a call pattern")
	}
	val, err := ev.Eval(rhs, env)
	if err != nil {
		return nil, err
	}
	storing.Assign(sym.Name, val)
	return val, nil
}

// evalGlobal implements spec §4.2's Global row: route each sub-assignment
// to the matching definition form with storing_env forced to the global
// frame; anything else is InvalidGlobal.
func (ev *Evaluator) evalGlobal(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) == 0 {
		return nil, newErr(KindInvalidGlobal, "Global requires at least one sub-assignment")
	}
	global := env.Global()
	var result object.Value = &object.Nil{}
	for _, sub := range c.Args {
		comp, ok := sub.(ast.Composite)
		if !ok {
			return nil, newErr(KindInvalidGlobal, "Global may only contain = or := forms, got %T", sub)
		}
		var v object.Value
		var err error
		switch comp.Tag {
		case ast.Assign:
			if len(comp.Args) != 2 {
				return nil, newErr(KindMalformedAST, "Assign requires a left and right side")
			}
			v, err = ev.doAssign(env, global, comp.Args[0], comp.Args[1])
		case ast.FExprDef:
			v, err = ev.defineFExpr(env, global, comp.Args)
		default:
			return nil, newErr(KindInvalidGlobal, "Global may only contain = or := forms, got %s", comp.Tag)
		}
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// evalFExprDef handles a top-level `:=` definition: storing_env = env.
func (ev *Evaluator) evalFExprDef(c ast.Composite, env *object.Environment) (object.Value, error) {
	return ev.defineFExpr(env, env, c.Args)
}

func (ev *Evaluator) defineFExpr(defEnv, storing *object.Environment, args []ast.Expr) (object.Value, error) {
	if len(args) != 2 {
		return nil, newErr(KindMalformedAST, "FExprDef requires a left and right side")
	}
	name, params, ok := ast.Sig(args[0])
	if !ok {
		return nil, newErr(KindMalformedAST, "left side of := must be name(params)")
	}
	fx := &object.FExpr{Name: name, Params: params, Body: args[1], Scope: defEnv.Extend()}
	storing.Assign(name, fx)
	return fx, nil
}

// evalMacroDef handles `$=` definitions. Macros are not accepted inside
// Global in spec §4.2's table; only `=` and `:=` are named there.
func (ev *Evaluator) evalMacroDef(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) != 2 {
		return nil, newErr(KindMalformedAST, "MacroDef requires a left and right side")
	}
	name, params, ok := ast.Sig(c.Args[0])
	if !ok {
		return nil, newErr(KindMalformedAST, "left side of $= must be name(params)")
	}
	m := &object.Macro{Name: name, Params: params, Body: c.Args[1], Scope: env.Extend()}
	env.Assign(name, m)
	return m, nil
}
