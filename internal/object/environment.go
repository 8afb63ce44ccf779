package object

import (
	"log/slog"
	"sync/atomic"
)

var nextEnvID atomic.Uint64

// Environment is one frame in the lexical scope chain: a mapping of
// symbols to values plus a parent pointer. Exactly one frame per
// interpreter instance is the global frame (IsGlobal); its identity is
// preserved across every operation below — see spec §3's invariants.
type Environment struct {
	ID       uint64
	Bindings map[string]Value
	Parent   *Environment
	IsGlobal bool
}

// NewGlobalEnvironment creates the pinned root frame for an interpreter
// instance. Callers extend it with Extend/ExtendWith but never replace it.
func NewGlobalEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID.Add(1),
		Bindings: make(map[string]Value),
		IsGlobal: true,
	}
}

// Extend returns a new empty frame whose parent is the receiver.
func (e *Environment) Extend() *Environment {
	child := &Environment{
		ID:       nextEnvID.Add(1),
		Bindings: make(map[string]Value),
		Parent:   e,
	}
	slog.Debug("environment extended", slog.Uint64("parent", e.ID), slog.Uint64("child", child.ID))
	return child
}

// ExtendWith returns a new frame whose parent is the receiver and whose
// initial contents are mapping.
func (e *Environment) ExtendWith(mapping map[string]Value) *Environment {
	child := e.Extend()
	for k, v := range mapping {
		child.Bindings[k] = v
	}
	return child
}

// Lookup searches env then walks parents, returning the first binding
// found. ok is false if no frame in the chain binds sym.
func (e *Environment) Lookup(sym string) (Value, bool) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.Bindings[sym]; ok {
			return v, true
		}
	}
	return nil, false
}

// Define binds sym to val directly in this frame, regardless of whether
// an ancestor already binds it (shadowing). Used for the global
// true/false bindings and macro hygiene's gensym bindings; Assign writes
// through it once it has chosen the frame.
func (e *Environment) Define(sym string, val Value) {
	e.Bindings[sym] = val
	slog.Debug("binding defined", slog.String("sym", sym), slog.Uint64("env", e.ID))
}

// Assign implements the walk-and-write rule of spec §4.1, which
// deliberately differs from nearest-frame-wins shadowing:
//
//  1. If e is the global frame, write there unconditionally.
//  2. Otherwise walk the parent chain starting at e. At each frame that is
//     NOT the global frame, if sym is already bound there, overwrite it
//     and stop.
//  3. If no non-global frame binds sym, create the binding in e itself
//     (the starting frame).
//
// This lets a let-introduced local be rebound by an inner assignment
// (the closure-counter idiom) while preventing an inner frame from
// accidentally mutating a same-named global — globals are only ever
// updated via Global or when e already is the global frame.
func (e *Environment) Assign(sym string, val Value) {
	if e.IsGlobal {
		e.Define(sym, val)
		return
	}
	for env := e; env != nil; env = env.Parent {
		if env.IsGlobal {
			continue
		}
		if _, ok := env.Bindings[sym]; ok {
			env.Define(sym, val)
			return
		}
	}
	e.Define(sym, val)
}

// Global walks up to the pinned root frame.
func (e *Environment) Global() *Environment {
	env := e
	for !env.IsGlobal {
		env = env.Parent
	}
	return env
}

// LocalCount reports the number of bindings in this frame only (not the
// chain). CallScopedEval's two-step dispatch (spec §4.4) uses this to
// detect whether a fexpr call bound any user parameters at all.
func (e *Environment) LocalCount() int {
	return len(e.Bindings)
}
