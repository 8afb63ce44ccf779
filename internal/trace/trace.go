// Package trace implements the side-table of traced callables described
// in spec §4.7: a process-wide registry consulted by the evaluator's call
// protocol, plus the entry/exit printing wrapper around a normal call.
package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"fexl/internal/ast"
	"fexl/internal/object"
)

var (
	mu     sync.Mutex
	traced = map[object.Callable]bool{}
)

// Register marks c as traceable and returns it unchanged. Idempotent.
func Register(c object.Callable) object.Callable {
	mu.Lock()
	defer mu.Unlock()
	traced[c] = true
	return c
}

// IsTraced reports whether c was previously passed to Register.
func IsTraced(c object.Callable) bool {
	mu.Lock()
	defer mu.Unlock()
	return traced[c]
}

// Call prints the bit-exact entry/exit trace format specified by spec §6
// around invoking fn, which must perform the actual call and return its
// result. rawArgs are the caller's argument expressions exactly as
// written — printed before any per-type argument evaluation, so tracing
// composes with fexprs and macros whose callees never evaluate their
// arguments at all.
func Call(out io.Writer, name string, rawArgs []ast.Expr, fn func() object.Value) object.Value {
	fmt.Fprintf(out, "Calling function: %s with arguments: %s\n", name, formatTuple(rawArgs))
	result := fn()
	fmt.Fprintf(out, "Function %s returned: %s\n", name, inspect(result))
	return result
}

// formatTuple renders argument expressions the way a host single-element
// tuple prints, e.g. "(1,)" — spec §6 requires this bit-exact.
func formatTuple(args []ast.Expr) string {
	if len(args) == 0 {
		return "()"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func inspect(v object.Value) string {
	if v == nil {
		return ""
	}
	return v.Inspect()
}
