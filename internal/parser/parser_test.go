package parser

import (
	"testing"

	"fexl/internal/ast"
	"fexl/internal/lexer"
)

func parse(t *testing.T, src string) ast.Expr {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func asComposite(t *testing.T, e ast.Expr, tag ast.Tag) ast.Composite {
	t.Helper()
	c, ok := e.(ast.Composite)
	if !ok || c.Tag != tag {
		t.Fatalf("expected a %s node, got %T (%v)", tag, e, e)
	}
	return c
}

// The toplevel is always a Toplevel sequence, one entry per ';'-separated
// statement, even for a single bare expression.
func TestToplevelWrapsEverySourceInASequence(t *testing.T) {
	prog := parse(t, "1; 2; 3")
	top := asComposite(t, prog, ast.Toplevel)
	if len(top.Args) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(top.Args))
	}
}

func TestPlainAssignment(t *testing.T) {
	prog := parse(t, "x = 1")
	top := asComposite(t, prog, ast.Toplevel)
	assign := asComposite(t, top.Args[0], ast.Assign)
	if sym, ok := assign.Args[0].(ast.Sym); !ok || sym.Name != "x" {
		t.Fatalf("expected lhs symbol x, got %v", assign.Args[0])
	}
}

func TestFunctionDefinitionSignature(t *testing.T) {
	prog := parse(t, "add(a, b) = a + b")
	top := asComposite(t, prog, ast.Toplevel)
	assign := asComposite(t, top.Args[0], ast.Assign)
	name, params, ok := ast.Sig(assign.Args[0])
	if !ok || name != "add" || len(params) != 2 || params[0] != "a" || params[1] != "b" {
		t.Fatalf("expected signature add(a, b), got name=%q params=%v ok=%v", name, params, ok)
	}
}

func TestFExprAndMacroDefinitionTags(t *testing.T) {
	prog := parse(t, "f(x) := x; m(x) $= :($x)")
	top := asComposite(t, prog, ast.Toplevel)
	asComposite(t, top.Args[0], ast.FExprDef)
	asComposite(t, top.Args[1], ast.MacroDef)
}

func TestOperatorsDesugarToCallOfTheOperatorSymbol(t *testing.T) {
	prog := parse(t, "1 + 2 * 3")
	top := asComposite(t, prog, ast.Toplevel)
	call := asComposite(t, top.Args[0], ast.Call)
	if sym, ok := call.Args[0].(ast.Sym); !ok || sym.Name != "+" {
		t.Fatalf("expected + at the top (lowest precedence wins last), got %v", call.Args[0])
	}
	// Right operand of + must itself be the * call, confirming precedence.
	asComposite(t, call.Args[2], ast.Call)
}

func TestUnaryMinusDesugarsToZeroMinusX(t *testing.T) {
	prog := parse(t, "-x")
	top := asComposite(t, prog, ast.Toplevel)
	call := asComposite(t, top.Args[0], ast.Call)
	if sym, ok := call.Args[0].(ast.Sym); !ok || sym.Name != "-" {
		t.Fatalf("expected - callee, got %v", call.Args[0])
	}
	if n, ok := call.Args[1].(ast.Num); !ok || n.Value != 0 {
		t.Fatalf("expected 0 as the first operand of desugared unary minus, got %v", call.Args[1])
	}
}

func TestTernaryDesugarsToIf(t *testing.T) {
	prog := parse(t, "c ? 1 : 2")
	top := asComposite(t, prog, ast.Toplevel)
	asComposite(t, top.Args[0], ast.If)
}

func TestAndOrAreFlatNAryComposites(t *testing.T) {
	prog := parse(t, "a && b && c")
	top := asComposite(t, prog, ast.Toplevel)
	and := asComposite(t, top.Args[0], ast.And)
	if len(and.Args) != 3 {
		t.Fatalf("expected a flat 3-way And, got %d args", len(and.Args))
	}

	prog2 := parse(t, "a || b")
	top2 := asComposite(t, prog2, ast.Toplevel)
	asComposite(t, top2.Args[0], ast.OrOp)
}

func TestLetRequiresSingleEndNotTwo(t *testing.T) {
	prog := parse(t, "let x=1; x+1 end")
	top := asComposite(t, prog, ast.Toplevel)
	let := asComposite(t, top.Args[0], ast.Let)
	if len(let.Args) != 2 {
		t.Fatalf("expected [binding, body], got %d args", len(let.Args))
	}
	asComposite(t, let.Args[1], ast.Block)
}

func TestBeginEndIsABareBlockNotWrapped(t *testing.T) {
	prog := parse(t, "begin 1; 2 end")
	top := asComposite(t, prog, ast.Toplevel)
	block := asComposite(t, top.Args[0], ast.Block)
	if len(block.Args) != 2 {
		t.Fatalf("expected 2 statements in the block, got %d", len(block.Args))
	}
}

func TestLambdaParamsAndBody(t *testing.T) {
	prog := parse(t, "(a, b) -> a + b")
	top := asComposite(t, prog, ast.Toplevel)
	lambda := asComposite(t, top.Args[0], ast.Lambda)
	if len(lambda.Args) != 3 {
		t.Fatalf("expected 2 params + body, got %d args", len(lambda.Args))
	}
	if sym, ok := lambda.Args[0].(ast.Sym); !ok || sym.Name != "a" {
		t.Fatalf("expected first param a, got %v", lambda.Args[0])
	}
}

func TestParenGroupingIsNotMistakenForALambda(t *testing.T) {
	prog := parse(t, "(1 + 2) * 3")
	top := asComposite(t, prog, ast.Toplevel)
	call := asComposite(t, top.Args[0], ast.Call)
	if sym, ok := call.Args[0].(ast.Sym); !ok || sym.Name != "*" {
		t.Fatalf("expected outer * call, got %v", call.Args[0])
	}
}

func TestZeroParamLambda(t *testing.T) {
	prog := parse(t, "() -> 42")
	top := asComposite(t, prog, ast.Toplevel)
	lambda := asComposite(t, top.Args[0], ast.Lambda)
	if len(lambda.Args) != 1 {
		t.Fatalf("expected just the body for a zero-param lambda, got %d args", len(lambda.Args))
	}
}

func TestQuoteWrapsASequence(t *testing.T) {
	prog := parse(t, ":(1; 2)")
	top := asComposite(t, prog, ast.Toplevel)
	quote := asComposite(t, top.Args[0], ast.Quote)
	if len(quote.Args) != 2 {
		t.Fatalf("expected 2 quoted statements, got %d", len(quote.Args))
	}
}

func TestInterpolationProducesAnInterpNodeWrappingASymbol(t *testing.T) {
	prog := parse(t, ":($x)")
	top := asComposite(t, prog, ast.Toplevel)
	quote := asComposite(t, top.Args[0], ast.Quote)
	interp := asComposite(t, quote.Args[0], ast.Interp)
	if sym, ok := interp.Args[0].(ast.Sym); !ok || sym.Name != "x" {
		t.Fatalf("expected interpolated symbol x, got %v", interp.Args[0])
	}
}

// A `global` block has no closing `end` of its own; it is terminated by
// the enclosing block's own terminator or a `;`.
func TestGlobalHasNoClosingEndOfItsOwn(t *testing.T) {
	prog := parse(t, "let x=1; global show() = x end")
	top := asComposite(t, prog, ast.Toplevel)
	let := asComposite(t, top.Args[0], ast.Let)
	block := asComposite(t, let.Args[1], ast.Block)
	if len(block.Args) != 1 {
		t.Fatalf("expected exactly one statement in the let body, got %d", len(block.Args))
	}
	asComposite(t, block.Args[0], ast.Global)
}

func TestGlobalAcceptsCommaSeparatedForms(t *testing.T) {
	prog := parse(t, "global a=1, b=2")
	top := asComposite(t, prog, ast.Toplevel)
	global := asComposite(t, top.Args[0], ast.Global)
	if len(global.Args) != 2 {
		t.Fatalf("expected 2 comma-separated global forms, got %d", len(global.Args))
	}
}

func TestIfElseifElseChain(t *testing.T) {
	prog := parse(t, "if a then 1 elseif b then 2 else 3 end")
	top := asComposite(t, prog, ast.Toplevel)
	ifNode := asComposite(t, top.Args[0], ast.If)
	if len(ifNode.Args) != 3 {
		t.Fatalf("expected [cond, then, elseif-chain], got %d args", len(ifNode.Args))
	}
	asComposite(t, ifNode.Args[2], ast.Elseif)
}

func TestIfWithoutElseOmitsThirdArg(t *testing.T) {
	prog := parse(t, "if a then 1 end")
	top := asComposite(t, prog, ast.Toplevel)
	ifNode := asComposite(t, top.Args[0], ast.If)
	if len(ifNode.Args) != 2 {
		t.Fatalf("expected [cond, then] with no else branch, got %d args", len(ifNode.Args))
	}
}

func TestChainedComparisonStaysLeftAssociative(t *testing.T) {
	prog := parse(t, "1 < 2 < 3")
	top := asComposite(t, prog, ast.Toplevel)
	outer := asComposite(t, top.Args[0], ast.Call)
	if sym, ok := outer.Args[0].(ast.Sym); !ok || sym.Name != "<" {
		t.Fatalf("expected < callee, got %v", outer.Args[0])
	}
	// Left operand of the outer < must itself be "1 < 2".
	asComposite(t, outer.Args[1], ast.Call)
}

func TestMalformedExpressionRecordsAPositionedError(t *testing.T) {
	p := New(lexer.New("x = "))
	p.ParseProgram()
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected a parse error for a dangling =")
	}
	if _, ok := errs[0].(*ParseError); !ok {
		t.Fatalf("expected a *ParseError carrying a byte offset, got %T", errs[0])
	}
}

func TestParserKeepsGoingAfterALocalError(t *testing.T) {
	p := New(lexer.New("x = &; y = 2"))
	prog := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected at least one error")
	}
	top := asComposite(t, prog, ast.Toplevel)
	if len(top.Args) < 2 {
		t.Fatalf("expected parsing to continue past the bad statement, got %d statements", len(top.Args))
	}
}
