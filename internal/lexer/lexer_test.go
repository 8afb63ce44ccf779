package lexer

import (
	"testing"

	"fexl/internal/token"
)

func collect(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestOperatorsAndKeywords(t *testing.T) {
	toks := collect(`let x=1; if x==1 then x else x end; x!=2 && x<=3 || x>=4; x->x; f:=1; g$=2; :(1)`)
	want := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IF, token.IDENT, token.EQ, token.NUMBER, token.THEN, token.IDENT,
		token.ELSE, token.IDENT, token.END, token.SEMICOLON,
		token.IDENT, token.NOT_EQ, token.NUMBER, token.AND, token.IDENT, token.LT_EQ, token.NUMBER,
		token.OR, token.IDENT, token.GT_EQ, token.NUMBER, token.SEMICOLON,
		token.IDENT, token.ARROW, token.IDENT, token.SEMICOLON,
		token.IDENT, token.FEXPR_ASSIGN, token.NUMBER, token.SEMICOLON,
		token.IDENT, token.MACRO_ASSIGN, token.NUMBER, token.SEMICOLON,
		token.QUOTE_OPEN, token.NUMBER, token.RPAREN,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, tt, toks[i].Type, toks[i].Literal)
		}
	}
}

func TestIdentifierAllowsBangAndQuestion(t *testing.T) {
	toks := collect("push! show_sign?")
	if toks[0].Type != token.IDENT || toks[0].Literal != "push!" {
		t.Fatalf("expected push! to lex as one identifier, got %+v", toks[0])
	}
	if toks[1].Type != token.IDENT || toks[1].Literal != "show_sign?" {
		t.Fatalf("expected show_sign? to lex as one identifier, got %+v", toks[1])
	}
}

func TestTrueFalseAreIdentifiersNotKeywords(t *testing.T) {
	toks := collect("true false")
	if toks[0].Type != token.IDENT || toks[1].Type != token.IDENT {
		t.Fatalf("expected true/false to lex as plain identifiers, got %+v %+v", toks[0], toks[1])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`"a\nb\t\"c\""`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	if toks[0].Literal != "a\nb\t\"c\"" {
		t.Fatalf("unexpected escaped literal: %q", toks[0].Literal)
	}
}

func TestNumberWithDecimal(t *testing.T) {
	toks := collect("3.14 5 .")
	if toks[0].Literal != "3.14" {
		t.Fatalf("expected 3.14, got %q", toks[0].Literal)
	}
	if toks[1].Literal != "5" {
		t.Fatalf("expected 5, got %q", toks[1].Literal)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := collect("1 # a comment\n2")
	if toks[0].Type != token.NUMBER || toks[0].Literal != "1" {
		t.Fatalf("unexpected first token: %+v", toks[0])
	}
	if toks[1].Type != token.NUMBER || toks[1].Literal != "2" {
		t.Fatalf("unexpected second token: %+v", toks[1])
	}
}

func TestColonDisambiguation(t *testing.T) {
	toks := collect(": := :(")
	want := []token.Type{token.COLON, token.FEXPR_ASSIGN, token.QUOTE_OPEN, token.EOF}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, toks[i].Type)
		}
	}
}

func TestIllegalAmpersandAlone(t *testing.T) {
	toks := collect("&")
	if toks[0].Type != token.ILLEGAL {
		t.Fatalf("expected a lone & to be ILLEGAL, got %s", toks[0].Type)
	}
}
