package object

import "testing"

func TestExtendChainsLookup(t *testing.T) {
	global := NewGlobalEnvironment()
	global.Define("x", &Num{Value: 1})

	child := global.Extend()
	if v, ok := child.Lookup("x"); !ok || v.(*Num).Value != 1 {
		t.Fatalf("expected child to see global binding, got %v %v", v, ok)
	}

	child.Define("x", &Num{Value: 2})
	if v, _ := child.Lookup("x"); v.(*Num).Value != 2 {
		t.Fatalf("expected Define to shadow in child frame")
	}
	if v, _ := global.Lookup("x"); v.(*Num).Value != 1 {
		t.Fatalf("shadowing a child binding must not mutate the parent")
	}
}

func TestAssignRebindsNearestNonGlobalFrame(t *testing.T) {
	global := NewGlobalEnvironment()
	outer := global.Extend()
	outer.Define("counter", &Num{Value: 0})
	inner := outer.Extend()

	inner.Assign("counter", &Num{Value: 1})

	if _, ok := inner.Bindings["counter"]; ok {
		t.Fatalf("Assign should not create a binding in inner when an ancestor already has one")
	}
	v, ok := outer.Lookup("counter")
	if !ok || v.(*Num).Value != 1 {
		t.Fatalf("expected outer's counter to be updated to 1, got %v %v", v, ok)
	}
}

func TestAssignSkipsGlobalWhenWalkingUp(t *testing.T) {
	global := NewGlobalEnvironment()
	global.Define("shared", &Num{Value: 100})
	inner := global.Extend()

	// inner has no local "shared" and the only frame that has one is
	// global itself, which Assign's walk deliberately skips — so it
	// must create a new binding in inner rather than mutating global.
	inner.Assign("shared", &Num{Value: 1})

	if v, _ := global.Lookup("shared"); v.(*Num).Value != 100 {
		t.Fatalf("Assign must not mutate the global frame when walking up from a non-global start")
	}
	if v, ok := inner.Bindings["shared"]; !ok || v.(*Num).Value != 1 {
		t.Fatalf("expected inner to receive its own binding, got %v %v", v, ok)
	}
}

func TestAssignOnGlobalWritesDirectly(t *testing.T) {
	global := NewGlobalEnvironment()
	global.Assign("g", &Num{Value: 5})
	if v, ok := global.Lookup("g"); !ok || v.(*Num).Value != 5 {
		t.Fatalf("expected Assign on the global frame to define directly, got %v %v", v, ok)
	}
}

func TestLocalCountCountsOnlyOwnFrame(t *testing.T) {
	global := NewGlobalEnvironment()
	global.Define("a", &Nil{})
	child := global.ExtendWith(map[string]Value{"eval": &Nil{}})
	if n := child.LocalCount(); n != 1 {
		t.Fatalf("expected LocalCount 1, got %d", n)
	}
}

func TestGlobalWalksToRoot(t *testing.T) {
	global := NewGlobalEnvironment()
	leaf := global.Extend().Extend().Extend()
	if leaf.Global() != global {
		t.Fatalf("expected Global() to return the pinned root frame")
	}
}

func TestLookupMissingReportsFalse(t *testing.T) {
	global := NewGlobalEnvironment()
	if _, ok := global.Lookup("nope"); ok {
		t.Fatalf("expected lookup of unbound symbol to fail")
	}
}
