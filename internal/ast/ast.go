// Package ast defines the expression tree that the evaluator walks.
//
// The language is homoiconic: there is a single Expr sum type rather than
// a Statement/Expression split. An Expr is either an atom (Sym, Num, Str,
// QuoteVal, LineMarker, Nil) or a Composite carrying a Tag and an ordered
// list of sub-expressions.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies the shape of a Composite expression.
type Tag string

const (
	Call     Tag = "Call"
	If       Tag = "If"
	Elseif   Tag = "Elseif"
	Let      Tag = "Let"
	Assign   Tag = "Assign"
	FExprDef Tag = "FExprDef" // :=
	MacroDef Tag = "MacroDef" // $=
	Interp   Tag = "Interpolate"
	Global   Tag = "Global"
	Block    Tag = "Block"
	Toplevel Tag = "Toplevel"
	And      Tag = "And"
	OrOp     Tag = "OrOp"
	Lambda   Tag = "Lambda" // ->
	Quote    Tag = "Quote"
)

// Expr is implemented by every node in the tree.
type Expr interface {
	Head() Tag
	String() string
}

// atom tags are reported by Head() for debugging/printing; they are not
// part of the composite-head vocabulary above.
const (
	atomSym        Tag = "Sym"
	atomNum        Tag = "Num"
	atomStr        Tag = "Str"
	atomQuoteVal   Tag = "QuoteVal"
	atomLineMarker Tag = "LineMarker"
	atomNil        Tag = "Nil"
)

// Sym is a bare identifier.
type Sym struct {
	Name string
}

func (s Sym) Head() Tag      { return atomSym }
func (s Sym) String() string { return s.Name }

// Num is a numeric literal. The host numeric tower is float64; the
// language has no fixed/decimal/bignum types (see spec Non-goals).
type Num struct {
	Value float64
}

func (n Num) Head() Tag { return atomNum }
func (n Num) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Str is a string literal.
type Str struct {
	Value string
}

func (s Str) Head() Tag      { return atomStr }
func (s Str) String() string { return strconv.Quote(s.Value) }

// QuoteVal carries an already-resolved payload directly in the tree. It is
// never produced by the parser; the evaluator and macro expander use it to
// splice a value (or an already-built Expr) back into expression position
// without re-parsing it. Evaluating a QuoteVal yields Payload unchanged.
type QuoteVal struct {
	Payload any
}

func (q QuoteVal) Head() Tag { return atomQuoteVal }
func (q QuoteVal) String() string {
	return fmt.Sprintf("#quoted<%v>", q.Payload)
}

// LineMarker is emitted by the parser for source-position bookkeeping. It
// is inert: it evaluates to nil and contributes nothing to block results.
type LineMarker struct {
	Line int
}

func (l LineMarker) Head() Tag      { return atomLineMarker }
func (l LineMarker) String() string { return "" }

// NilExpr is the literal nil atom.
type NilExpr struct{}

func (NilExpr) Head() Tag      { return atomNil }
func (NilExpr) String() string { return "nil" }

// Composite is every non-atomic node: a tag plus an ordered list of
// sub-expressions. Heads outside the recognized vocabulary are legal; the
// evaluator maps over them by evaluating each arg and returning the
// resulting sequence (see the default case of the evaluator's
// evalComposite).
type Composite struct {
	Tag  Tag
	Args []Expr
}

func (c Composite) Head() Tag { return c.Tag }

func (c Composite) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Tag, strings.Join(parts, ", "))
}

// Sig reports the callee symbol and parameter names for a Call-shaped
// expression used as the left-hand side of =, :=, or $= (the
// "name(p0, ..., pk)" definition sugar in spec §4.3/§4.5). ok is false if
// expr is not of that shape.
func Sig(expr Expr) (name string, params []string, ok bool) {
	c, isComposite := expr.(Composite)
	if !isComposite || c.Tag != Call {
		return "", nil, false
	}
	if len(c.Args) == 0 {
		return "", nil, false
	}
	callee, isSym := c.Args[0].(Sym)
	if !isSym {
		return "", nil, false
	}
	params = make([]string, 0, len(c.Args)-1)
	for _, a := range c.Args[1:] {
		p, isSym := a.(Sym)
		if !isSym {
			return "", nil, false
		}
		params = append(params, p.Name)
	}
	return callee.Name, params, true
}
