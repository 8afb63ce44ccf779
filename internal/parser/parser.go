// Package parser turns a token.Token stream into the ast.Expr tree the
// evaluator walks. Structured like the teacher's parser — curToken/
// peekToken, an accumulating Errors() slice the REPL prints instead of
// aborting — but built around a small precedence-climbing chain rather
// than a prefix/infix function registry, since this grammar's arithmetic,
// comparison and `!` operators all desugar to the same thing: a Call node
// naming the operator symbol, left to the primitive bridge (spec §4.8) to
// resolve. `&&`, `||` and `?:` instead build And, OrOp and If nodes.
package parser

import (
	"strconv"

	"fexl/internal/ast"
	"fexl/internal/lexer"
	"fexl/internal/token"

	"github.com/pkg/errors"
)

type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errs []error
}

// ParseError carries the source byte offset of a syntax error alongside
// its message, so a caller can render it with internal/util's
// GetLineAndColumn/GetContextLines instead of a bare string.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors reports every parse error accumulated so far. The caller
// decides whether to abandon the parse; ParseProgram keeps going after
// a local error so one bad statement doesn't hide the rest.
func (p *Parser) Errors() []error { return p.errs }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, errors.Errorf(format, args...))
}

// errorAt records a syntax error at a specific source offset, for the
// cases where the REPL/CLI can usefully point at the offending column.
func (p *Parser) errorAt(pos int, format string, args ...any) {
	p.errs = append(p.errs, &ParseError{Pos: pos, Msg: errors.Errorf(format, args...).Error()})
}

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type != t {
		p.errorAt(p.cur.Position, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
		return false
	}
	p.next()
	return true
}

func (p *Parser) atAny(types ...token.Type) bool {
	for _, t := range types {
		if p.cur.Type == t {
			return true
		}
	}
	return false
}

type snapshot struct {
	l    lexer.Lexer
	cur  token.Token
	peek token.Token
}

func (p *Parser) snapshot() snapshot {
	return snapshot{l: *p.l, cur: p.cur, peek: p.peek}
}

func (p *Parser) restore(s snapshot) {
	*p.l = s.l
	p.cur = s.cur
	p.peek = s.peek
}

// ParseProgram parses the whole input as a Toplevel sequence (spec
// §4.2's Block/Toplevel row: evaluate each in order, value is the last).
func (p *Parser) ParseProgram() ast.Expr {
	return p.parseSequenceUntilAny(ast.Toplevel, token.EOF)
}

// parseSequenceUntilAny collects ';'-separated statements into tag until
// the current token is one of stop (or EOF), without consuming stop.
func (p *Parser) parseSequenceUntilAny(tag ast.Tag, stop ...token.Type) ast.Expr {
	var args []ast.Expr
	for !p.atAny(stop...) && p.cur.Type != token.EOF {
		args = append(args, p.parseStatement())
		if p.cur.Type == token.SEMICOLON {
			p.next()
			continue
		}
		break
	}
	return ast.Composite{Tag: tag, Args: args}
}

// parseStatement parses one `;`-separated unit: a global block or an
// assignment/fexpr/macro definition, falling through to a plain
// expression.
func (p *Parser) parseStatement() ast.Expr {
	if p.cur.Type == token.GLOBAL {
		return p.parseGlobal()
	}
	return p.parseAssignOrExpr()
}

// parseGlobal parses one or more comma-separated definition forms after
// `global`, routed at eval time per spec §4.2's Global row. Unlike let/
// if/begin, a global block has no closing keyword of its own — it ends
// at the next `;` or the enclosing block's own terminator, matching the
// "global name() = body" idiom used inline inside a let or function body.
func (p *Parser) parseGlobal() ast.Expr {
	p.next() // consume 'global'
	forms := []ast.Expr{p.parseAssignOrExpr()}
	for p.cur.Type == token.COMMA {
		p.next()
		forms = append(forms, p.parseAssignOrExpr())
	}
	return ast.Composite{Tag: ast.Global, Args: forms}
}

// parseAssignOrExpr implements the "name(params) = / := / $= body" and
// plain "name = body" sugar of spec §4.3/§4.5/§4.6: parse a full
// expression, then check whether it's immediately followed by a
// definition operator.
func (p *Parser) parseAssignOrExpr() ast.Expr {
	left := p.parseExpression()
	switch p.cur.Type {
	case token.ASSIGN:
		p.next()
		right := p.parseExpression()
		return ast.Composite{Tag: ast.Assign, Args: []ast.Expr{left, right}}
	case token.FEXPR_ASSIGN:
		p.next()
		right := p.parseExpression()
		return ast.Composite{Tag: ast.FExprDef, Args: []ast.Expr{left, right}}
	case token.MACRO_ASSIGN:
		p.next()
		right := p.parseExpression()
		return ast.Composite{Tag: ast.MacroDef, Args: []ast.Expr{left, right}}
	default:
		return left
	}
}

func (p *Parser) parseExpression() ast.Expr { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseOr()
	if p.cur.Type != token.QUESTION {
		return cond
	}
	p.next()
	then := p.parseExpression()
	p.expect(token.COLON)
	els := p.parseExpression()
	return ast.Composite{Tag: ast.If, Args: []ast.Expr{cond, then, els}}
}

func (p *Parser) parseOr() ast.Expr {
	args := []ast.Expr{p.parseAnd()}
	for p.cur.Type == token.OR {
		p.next()
		args = append(args, p.parseAnd())
	}
	if len(args) == 1 {
		return args[0]
	}
	return ast.Composite{Tag: ast.OrOp, Args: args}
}

func (p *Parser) parseAnd() ast.Expr {
	args := []ast.Expr{p.parseEquality()}
	for p.cur.Type == token.AND {
		p.next()
		args = append(args, p.parseEquality())
	}
	if len(args) == 1 {
		return args[0]
	}
	return ast.Composite{Tag: ast.And, Args: args}
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.cur.Type == token.EQ || p.cur.Type == token.NOT_EQ {
		op := p.cur.Literal
		p.next()
		left = callOp(op, left, p.parseRelational())
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for p.atAny(token.LT, token.LT_EQ, token.GT, token.GT_EQ) {
		op := p.cur.Literal
		p.next()
		left = callOp(op, left, p.parseAdditive())
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.cur.Type == token.PLUS || p.cur.Type == token.MINUS {
		op := p.cur.Literal
		p.next()
		left = callOp(op, left, p.parseMultiplicative())
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.cur.Type == token.ASTERISK || p.cur.Type == token.SLASH {
		op := p.cur.Literal
		p.next()
		left = callOp(op, left, p.parseUnary())
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.BANG:
		p.next()
		return callOp("!", p.parseUnary())
	case token.MINUS:
		p.next()
		return callOp("-", ast.Num{Value: 0}, p.parseUnary())
	default:
		return p.parseCall()
	}
}

// callOp desugars a binary/unary operator into Call(Sym(op), args...) —
// the primitive bridge (spec §4.8) resolves op when it's unbound.
func callOp(op string, args ...ast.Expr) ast.Expr {
	callArgs := make([]ast.Expr, 0, len(args)+1)
	callArgs = append(callArgs, ast.Sym{Name: op})
	callArgs = append(callArgs, args...)
	return ast.Composite{Tag: ast.Call, Args: callArgs}
}

func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	for p.cur.Type == token.LPAREN {
		expr = p.parseCallArgs(expr)
	}
	return expr
}

func (p *Parser) parseCallArgs(callee ast.Expr) ast.Expr {
	p.next() // consume '('
	args := []ast.Expr{callee}
	if p.cur.Type != token.RPAREN {
		args = append(args, p.parseExpression())
		for p.cur.Type == token.COMMA {
			p.next()
			args = append(args, p.parseExpression())
		}
	}
	p.expect(token.RPAREN)
	return ast.Composite{Tag: ast.Call, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.NUMBER:
		return p.parseNumber()
	case token.STRING:
		lit := p.cur.Literal
		p.next()
		return ast.Str{Value: lit}
	case token.NIL_WORD:
		p.next()
		return ast.NilExpr{}
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		return ast.Sym{Name: name}
	case token.DOLLAR:
		return p.parseInterpolate()
	case token.LPAREN:
		return p.parseParenOrLambda()
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.BEGIN:
		return p.parseBlock()
	case token.QUOTE_OPEN:
		return p.parseQuote()
	default:
		tok := p.cur
		p.errorAt(tok.Position, "unexpected token %s (%q)", tok.Type, tok.Literal)
		p.next()
		return ast.NilExpr{}
	}
}

func (p *Parser) parseNumber() ast.Expr {
	lit := p.cur.Literal
	pos := p.cur.Position
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errorAt(pos, "invalid number literal %q", lit)
	}
	p.next()
	return ast.Num{Value: v}
}

func (p *Parser) parseInterpolate() ast.Expr {
	p.next() // consume '$'
	if p.cur.Type != token.IDENT {
		p.errorAt(p.cur.Position, "expected identifier after $, got %s", p.cur.Type)
		return ast.NilExpr{}
	}
	name := p.cur.Literal
	p.next()
	return ast.Composite{Tag: ast.Interp, Args: []ast.Expr{ast.Sym{Name: name}}}
}

// parseParenOrLambda disambiguates "(expr)" grouping from "(params) ->
// body" by speculatively parsing a parameter list and backtracking if
// it isn't followed by "->".
func (p *Parser) parseParenOrLambda() ast.Expr {
	snap := p.snapshot()
	params, ok := p.tryParseLambdaParams()
	if ok && p.cur.Type == token.ARROW {
		p.next()
		body := p.parseAssignOrExpr()
		args := make([]ast.Expr, 0, len(params)+1)
		for _, name := range params {
			args = append(args, ast.Sym{Name: name})
		}
		args = append(args, body)
		return ast.Composite{Tag: ast.Lambda, Args: args}
	}
	p.restore(snap)
	p.next() // consume '('
	expr := p.parseExpression()
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) tryParseLambdaParams() ([]string, bool) {
	if p.cur.Type != token.LPAREN {
		return nil, false
	}
	p.next()
	var params []string
	if p.cur.Type == token.RPAREN {
		p.next()
		return params, true
	}
	for {
		if p.cur.Type != token.IDENT {
			return nil, false
		}
		params = append(params, p.cur.Literal)
		p.next()
		if p.cur.Type == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type != token.RPAREN {
		return nil, false
	}
	p.next()
	return params, true
}

func (p *Parser) parseLet() ast.Expr {
	p.next() // consume 'let'
	binding := p.parseAssignOrExpr()
	p.expect(token.SEMICOLON)
	body := p.parseSequenceUntilAny(ast.Block, token.END)
	p.expect(token.END)
	return ast.Composite{Tag: ast.Let, Args: []ast.Expr{binding, body}}
}

func (p *Parser) parseBlock() ast.Expr {
	p.next() // consume 'begin'
	body := p.parseSequenceUntilAny(ast.Block, token.END)
	p.expect(token.END)
	return body
}

func (p *Parser) parseQuote() ast.Expr {
	p.next() // consume ':('
	body := p.parseSequenceUntilAny(ast.Quote, token.RPAREN)
	p.expect(token.RPAREN)
	return body
}

func (p *Parser) parseIf() ast.Expr {
	p.next() // consume 'if'
	cond := p.parseExpression()
	p.expect(token.THEN)
	then := p.parseSequenceUntilAny(ast.Block, token.ELSEIF, token.ELSE, token.END)
	switch p.cur.Type {
	case token.ELSEIF:
		return ast.Composite{Tag: ast.If, Args: []ast.Expr{cond, then, p.parseElseif()}}
	case token.ELSE:
		p.next()
		elseBranch := p.parseSequenceUntilAny(ast.Block, token.END)
		p.expect(token.END)
		return ast.Composite{Tag: ast.If, Args: []ast.Expr{cond, then, elseBranch}}
	default:
		p.expect(token.END)
		return ast.Composite{Tag: ast.If, Args: []ast.Expr{cond, then}}
	}
}

func (p *Parser) parseElseif() ast.Expr {
	p.next() // consume 'elseif'
	cond := p.parseExpression()
	p.expect(token.THEN)
	then := p.parseSequenceUntilAny(ast.Block, token.ELSEIF, token.ELSE, token.END)
	switch p.cur.Type {
	case token.ELSEIF:
		return ast.Composite{Tag: ast.Elseif, Args: []ast.Expr{cond, then, p.parseElseif()}}
	case token.ELSE:
		p.next()
		elseBranch := p.parseSequenceUntilAny(ast.Block, token.END)
		p.expect(token.END)
		return ast.Composite{Tag: ast.Elseif, Args: []ast.Expr{cond, then, elseBranch}}
	default:
		p.expect(token.END)
		return ast.Composite{Tag: ast.Elseif, Args: []ast.Expr{cond, then}}
	}
}
