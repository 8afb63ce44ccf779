package evaluator

import (
	"fexl/internal/ast"
	"fexl/internal/object"
	"fexl/internal/trace"
)

// evalCall is the call protocol of spec §4.3. Resolving the callee
// through Eval already folds in step 3 (the primitive bridge): evalSym
// only falls back to a HostCallable once the symbol is confirmed unbound
// in env, which is exactly the bridge's precondition.
func (ev *Evaluator) evalCall(c ast.Composite, env *object.Environment) (object.Value, error) {
	if len(c.Args) == 0 {
		return nil, newErr(KindMalformedAST, "Call requires a callee")
	}
	calleeExpr := c.Args[0]
	argExprs := c.Args[1:]

	callee, err := ev.Eval(calleeExpr, env)
	if err != nil {
		return nil, err
	}

	if cse, ok := callee.(*object.CallScopedEval); ok {
		if len(argExprs) == 0 {
			return nil, newErr(KindArityMismatch, "eval requires 1 argument")
		}
		return ev.evalScopedEval(cse, argExprs[0])
	}

	callable, ok := callee.(object.Callable)
	if !ok {
		return nil, newErr(KindBadCallable, "cannot call a value of type %s", callee.Type())
	}

	if trace.IsTraced(callable) {
		var result object.Value
		var callErr error
		trace.Call(ev.Out, callable.CallableName(), argExprs, func() object.Value {
			result, callErr = ev.invoke(callable, argExprs, env)
			if result == nil {
				return &object.Nil{}
			}
			return result
		})
		return result, callErr
	}
	return ev.invoke(callable, argExprs, env)
}

// invoke dispatches to the per-kind call behavior named in spec §4.3's
// "The callable body then behaves per type" list.
func (ev *Evaluator) invoke(callable object.Callable, argExprs []ast.Expr, callerEnv *object.Environment) (object.Value, error) {
	switch fn := callable.(type) {
	case *object.Function:
		return ev.invokeFunction(fn, argExprs, callerEnv)
	case *object.FExpr:
		return ev.invokeFExpr(fn, argExprs, callerEnv)
	case *object.Macro:
		return ev.invokeMacro(fn, argExprs, callerEnv)
	case *object.HostCallable:
		return ev.invokeHost(fn, argExprs, callerEnv)
	default:
		return nil, newErr(KindBadCallable, "cannot call a value of type %s", callable.Type())
	}
}

// evalArgs evaluates each argument expression in callerEnv, in strict
// left-to-right order (spec §5's ordering invariant).
func (ev *Evaluator) evalArgs(argExprs []ast.Expr, callerEnv *object.Environment) ([]object.Value, error) {
	args := make([]object.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := ev.Eval(a, callerEnv)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (ev *Evaluator) invokeHost(h *object.HostCallable, argExprs []ast.Expr, callerEnv *object.Environment) (object.Value, error) {
	args, err := ev.evalArgs(argExprs, callerEnv)
	if err != nil {
		return nil, err
	}
	result, err := h.Fn(args)
	if err != nil {
		return nil, wrapErr(KindTypeMismatch, err, h.Name)
	}
	return result, nil
}

// invokeFunction implements the Function row: eager evaluation of every
// argument in the caller's env, then binding in a fresh child of the
// captured scope. Design note #2 calls out allocating that fresh child
// per call (rather than reusing the shared captured scope directly) as
// the fix for recursion-unsafety; this fresh frame plays the role of
// "the definition scope" the spec's Function row names.
func (ev *Evaluator) invokeFunction(fn *object.Function, argExprs []ast.Expr, callerEnv *object.Environment) (object.Value, error) {
	args, err := ev.evalArgs(argExprs, callerEnv)
	if err != nil {
		return nil, err
	}
	callEnv := fn.Scope.Extend()
	bindParams(callEnv, fn.Params, args)
	return ev.Eval(fn.Body, callEnv)
}

// invokeFExpr implements the FExpr row: parameters bind to the raw,
// unevaluated argument expressions, and the fresh call frame additionally
// receives `eval` bound to a CallScopedEval pairing this frame (def_env)
// with the caller's environment (call_env).
func (ev *Evaluator) invokeFExpr(fx *object.FExpr, argExprs []ast.Expr, callerEnv *object.Environment) (object.Value, error) {
	callEnv := fx.Scope.Extend()
	bindRawParams(callEnv, fx.Params, argExprs)
	callEnv.Assign("eval", &object.CallScopedEval{DefEnv: callEnv, CallEnv: callerEnv})
	return ev.Eval(fx.Body, callEnv)
}

// invokeMacro implements the Macro row: parameters bind to raw argument
// expressions in a fresh frame, hygiene renames macro-introduced names
// not already bound there, the body is expanded against that frame, and
// the expansion runs in the caller's environment — not the macro's own.
func (ev *Evaluator) invokeMacro(m *object.Macro, argExprs []ast.Expr, callerEnv *object.Environment) (object.Value, error) {
	defEnv := m.Scope.Extend()
	bindRawParams(defEnv, m.Params, argExprs)
	ev.gensymPass(m.Body, defEnv)
	expanded, err := ev.expand(m.Body, defEnv)
	if err != nil {
		return nil, err
	}
	return ev.Eval(expanded, callerEnv)
}

// bindParams assigns already-evaluated argument values to params in
// callEnv, the rule common to Function calls. Extra declared params
// beyond the supplied arguments become Nil (spec §7's lenient
// ArityMismatch); extra arguments beyond the declared params are
// dropped.
func bindParams(callEnv *object.Environment, params []string, args []object.Value) {
	for i, p := range params {
		if i < len(args) {
			callEnv.Assign(p, args[i])
		} else {
			callEnv.Assign(p, &object.Nil{})
		}
	}
}

// bindRawParams is bindParams' fexpr/macro counterpart: each param binds
// to a QuoteVal wrapping the caller's unevaluated argument expression.
func bindRawParams(callEnv *object.Environment, params []string, argExprs []ast.Expr) {
	for i, p := range params {
		if i < len(argExprs) {
			callEnv.Assign(p, object.Quote(argExprs[i]))
		} else {
			callEnv.Assign(p, &object.Nil{})
		}
	}
}

// evalScopedEval implements spec §4.4's two-step eval-inside-a-fexpr
// rule. def_env's own frame size, not the whole chain, decides which
// branch applies (see object.Environment.LocalCount).
func (ev *Evaluator) evalScopedEval(cse *object.CallScopedEval, x ast.Expr) (object.Value, error) {
	if cse.DefEnv.LocalCount() == 1 {
		return ev.Eval(x, cse.CallEnv)
	}
	resolved, err := ev.Eval(x, cse.DefEnv)
	if err != nil {
		return nil, err
	}
	return ev.Eval(object.AsExpr(resolved), cse.CallEnv)
}
