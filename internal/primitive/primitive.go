// Package primitive is the host-operator bridge of spec §4.8: a lookup
// of host-provided operators consulted by the evaluator's call protocol
// whenever a callee symbol is unbound in the environment chain.
//
// The arithmetic/comparison/core-io set below is the floor spec.md
// names explicitly. Domain-stack additions (database, regex, json,
// crypto, time) live in domain.go; they are grounded in the teacher's
// internal/foreign package, which gives its own language host
// capabilities the same way.
package primitive

import (
	"fmt"
	"io"
	"os"

	"fexl/internal/object"

	"github.com/pkg/errors"
)

// Primitive is a host operator: it receives already-evaluated arguments
// (per spec §4.8 — the call protocol evaluates argi before invoking it)
// and returns a Value or an error that becomes a TypeMismatch failure at
// the call site.
type Primitive func(args []object.Value) (object.Value, error)

// Registry is the primitive bridge itself. One Registry is created per
// interpreter instance so db handles, compiled regexes, and println's
// output stream are not shared across unrelated interpreters (e.g. in
// tests that run many programs concurrently... well, serially, since the
// language itself is single-threaded — see spec §5).
type Registry struct {
	ops    map[string]Primitive
	Stdout io.Writer

	nextHandle int64
	domain     *domainState

	hostCallables map[string]*object.HostCallable
}

// New builds a Registry with the full primitive set — arithmetic,
// comparison, core I/O, and the domain stack — wired in.
func New() *Registry {
	r := &Registry{
		ops:           map[string]Primitive{},
		Stdout:        os.Stdout,
		domain:        newDomainState(),
		hostCallables: map[string]*object.HostCallable{},
	}
	r.registerCore()
	r.registerDomain()
	for name, p := range r.ops {
		r.hostCallables[name] = &object.HostCallable{Name: name, Fn: p}
	}
	return r
}

// Lookup returns the primitive bound to name, if the bridge recognizes
// it. The evaluator only consults this after failing to find name bound
// in the environment chain, so a user definition always shadows a
// primitive of the same name.
func (r *Registry) Lookup(name string) (Primitive, bool) {
	p, ok := r.ops[name]
	return p, ok
}

// HostCallable wraps a named primitive as an object.Value so it can be
// passed around, tested for traceability, or handed to register_traceable
// like any other callable. The wrapper is memoized per name so repeated
// lookups of the same primitive return the same pointer — required for
// trace.Register/IsTraced, which key on identity, not name.
func (r *Registry) HostCallable(name string) (*object.HostCallable, bool) {
	hc, ok := r.hostCallables[name]
	return hc, ok
}

func (r *Registry) register(name string, p Primitive) {
	r.ops[name] = p
}

func (r *Registry) nextHandleID() int64 {
	r.nextHandle++
	return r.nextHandle
}

func (r *Registry) registerCore() {
	r.register("+", arith2("+", func(a, b float64) float64 { return a + b }))
	r.register("-", arith2("-", func(a, b float64) float64 { return a - b }))
	r.register("*", arith2("*", func(a, b float64) float64 { return a * b }))
	r.register("/", arith2("/", func(a, b float64) float64 { return a / b }))

	r.register("==", compare("==", func(c int) bool { return c == 0 }))
	r.register("!=", compare("!=", func(c int) bool { return c != 0 }))
	r.register("<", compare("<", func(c int) bool { return c < 0 }))
	r.register(">", compare(">", func(c int) bool { return c > 0 }))
	r.register("<=", compare("<=", func(c int) bool { return c <= 0 }))
	r.register(">=", compare(">=", func(c int) bool { return c >= 0 }))

	r.register("!", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("! expects 1 argument, got %d", len(args))
		}
		return &object.Bool{Value: !truthy(args[0])}, nil
	})

	r.register("println", func(args []object.Value) (object.Value, error) {
		parts := make([]any, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		fmt.Fprintln(r.Stdout, parts...)
		return &object.Nil{}, nil
	})

	r.register("push!", func(args []object.Value) (object.Value, error) {
		if len(args) < 2 {
			return nil, errors.Errorf("push! expects a list and at least one value")
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return nil, errors.Errorf("push! expects a LIST as its first argument, got %s", args[0].Type())
		}
		list.Elements = append(list.Elements, args[1:]...)
		return list, nil
	})

	r.register("append!", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("append! expects exactly 2 arguments")
		}
		list, ok := args[0].(*object.List)
		if !ok {
			return nil, errors.Errorf("append! expects a LIST as its first argument, got %s", args[0].Type())
		}
		other, ok := args[1].(*object.List)
		if !ok {
			return nil, errors.Errorf("append! expects a LIST as its second argument, got %s", args[1].Type())
		}
		list.Elements = append(list.Elements, other.Elements...)
		return list, nil
	})

	r.register("list", func(args []object.Value) (object.Value, error) {
		elems := make([]object.Value, len(args))
		copy(elems, args)
		return &object.List{Elements: elems}, nil
	})
}

func arith2(name string, f func(a, b float64) float64) Primitive {
	return func(args []object.Value) (object.Value, error) {
		if len(args) == 0 {
			return nil, errors.Errorf("%s expects at least 1 argument", name)
		}
		if name == "+" {
			if s, ok := stringConcat(args); ok {
				return s, nil
			}
		}
		nums, err := toNums(name, args)
		if err != nil {
			return nil, err
		}
		result := nums[0]
		for _, n := range nums[1:] {
			result = f(result, n)
		}
		return &object.Num{Value: result}, nil
	}
}

// stringConcat implements spec §4.8's "string concatenation via + is
// provided": if any argument is a Str, every argument is rendered with
// Inspect() semantics (Str unquoted, everything else via Inspect) and
// concatenated.
func stringConcat(args []object.Value) (*object.Str, bool) {
	hasStr := false
	for _, a := range args {
		if _, ok := a.(*object.Str); ok {
			hasStr = true
			break
		}
	}
	if !hasStr {
		return nil, false
	}
	out := ""
	for _, a := range args {
		if s, ok := a.(*object.Str); ok {
			out += s.Value
		} else {
			out += a.Inspect()
		}
	}
	return &object.Str{Value: out}, true
}

func toNums(name string, args []object.Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(*object.Num)
		if !ok {
			return nil, errors.Errorf("%s: expected NUM, got %s", name, a.Type())
		}
		nums[i] = n.Value
	}
	return nums, nil
}

func compare(name string, accept func(cmp int) bool) Primitive {
	return func(args []object.Value) (object.Value, error) {
		if len(args) < 2 {
			return nil, errors.Errorf("%s expects at least 2 arguments", name)
		}
		for i := 1; i < len(args); i++ {
			c, err := compareValues(args[i-1], args[i])
			if err != nil {
				return nil, errors.Wrapf(err, "%s", name)
			}
			if !accept(c) {
				return &object.Bool{Value: false}, nil
			}
		}
		return &object.Bool{Value: true}, nil
	}
}

func compareValues(a, b object.Value) (int, error) {
	switch av := a.(type) {
	case *object.Num:
		bv, ok := b.(*object.Num)
		if !ok {
			return 0, errors.Errorf("cannot compare NUM with %s", b.Type())
		}
		switch {
		case av.Value < bv.Value:
			return -1, nil
		case av.Value > bv.Value:
			return 1, nil
		default:
			return 0, nil
		}
	case *object.Str:
		bv, ok := b.(*object.Str)
		if !ok {
			return 0, errors.Errorf("cannot compare STR with %s", b.Type())
		}
		switch {
		case av.Value < bv.Value:
			return -1, nil
		case av.Value > bv.Value:
			return 1, nil
		default:
			return 0, nil
		}
	case *object.Bool:
		bv, ok := b.(*object.Bool)
		if !ok {
			return 0, errors.Errorf("cannot compare BOOL with %s", b.Type())
		}
		if av.Value == bv.Value {
			return 0, nil
		}
		if !av.Value {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, errors.Errorf("%s is not comparable", a.Type())
	}
}

func truthy(v object.Value) bool {
	b, ok := v.(*object.Bool)
	if !ok {
		return true
	}
	return b.Value
}
