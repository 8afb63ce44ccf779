package primitive

import (
	"testing"

	"fexl/internal/object"
)

func TestRegexMatchAndFindAll(t *testing.T) {
	r := New()
	if v := call(t, r, "regex_match", str(`\d+`), str("abc123")); !v.(*object.Bool).Value {
		t.Fatalf("expected regex_match to find a digit run")
	}
	v := call(t, r, "regex_find_all", str(`\d+`), str("a1 b22 c333"))
	list, ok := v.(*object.List)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("expected 3 matches, got %v", v.Inspect())
	}
	if list.Elements[2].(*object.Str).Value != "333" {
		t.Fatalf("expected last match 333, got %v", list.Elements[2].Inspect())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r := New()
	list := call(t, r, "list", num(1), str("x"), &object.Bool{Value: true})
	encoded := call(t, r, "json_encode", list)
	s, ok := encoded.(*object.Str)
	if !ok {
		t.Fatalf("expected json_encode to return a STR, got %s", encoded.Type())
	}
	decoded := call(t, r, "json_decode", s)
	dl, ok := decoded.(*object.List)
	if !ok || len(dl.Elements) != 3 {
		t.Fatalf("expected decoded list of 3 elements, got %v", decoded.Inspect())
	}
	if dl.Elements[0].(*object.Num).Value != 1 {
		t.Fatalf("expected first decoded element 1, got %v", dl.Elements[0].Inspect())
	}
	if dl.Elements[1].(*object.Str).Value != "x" {
		t.Fatalf("expected second decoded element x, got %v", dl.Elements[1].Inspect())
	}
	if !dl.Elements[2].(*object.Bool).Value {
		t.Fatalf("expected third decoded element true")
	}
}

func TestJSONEncodeUnwrapsQuoteValFromDBQuery(t *testing.T) {
	r := New()
	list := call(t, r, "list", num(1), str("x"))
	wrapped := &object.QuoteVal{Payload: list}
	encoded := call(t, r, "json_encode", wrapped)
	s, ok := encoded.(*object.Str)
	if !ok {
		t.Fatalf("expected json_encode to return a STR, got %s", encoded.Type())
	}
	decoded := call(t, r, "json_decode", s)
	dl, ok := decoded.(*object.List)
	if !ok || len(dl.Elements) != 2 {
		t.Fatalf("expected a QuoteVal-wrapped list to encode as a real JSON array, got %v", s.Value)
	}
	if dl.Elements[0].(*object.Num).Value != 1 || dl.Elements[1].(*object.Str).Value != "x" {
		t.Fatalf("unexpected round-tripped elements: %v", decoded.Inspect())
	}
}

func TestSHA256Hex(t *testing.T) {
	r := New()
	v := call(t, r, "sha256_hex", str(""))
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if v.(*object.Str).Value != want {
		t.Fatalf("expected sha256 of empty string, got %s", v.Inspect())
	}
}

func TestDBOpenUnknownDriverIsAnErrorNotAPanic(t *testing.T) {
	r := New()
	p, _ := r.Lookup("db_open")
	_, err := p([]object.Value{str("not-a-real-driver"), str("dsn")})
	if err == nil {
		t.Fatalf("expected db_open with an unknown driver to return an error")
	}
}

func TestDBOpenFallsBackToConfiguredDefaultPersistence(t *testing.T) {
	r := New()
	p, _ := r.Lookup("db_open")
	if _, err := p(nil); err == nil {
		t.Fatalf("expected db_open with no arguments and no configured default to error")
	}
	r.SetDefaultPersistence("not-a-real-driver", "dsn")
	if _, err := p(nil); err == nil {
		t.Fatalf("expected db_open to attempt the configured default driver and fail on the unknown driver")
	}
}

func TestRegisterTraceableRequiresCallable(t *testing.T) {
	r := New()
	p, _ := r.Lookup("register_traceable")
	if _, err := p([]object.Value{num(1)}); err == nil {
		t.Fatalf("expected register_traceable to reject a non-callable argument")
	}
}
