package evaluator

import "github.com/pkg/errors"

// Kind names one of the error kinds spec §7 enumerates. The REPL layer
// prints the flat error string; Kind lets tests distinguish failure
// classes without parsing messages.
type Kind string

const (
	KindUnboundSymbol  Kind = "UnboundSymbol"
	KindBadCallable    Kind = "BadCallable"
	KindInvalidGlobal  Kind = "InvalidGlobal"
	KindArityMismatch  Kind = "ArityMismatch"
	KindTypeMismatch   Kind = "TypeMismatch"
	KindMalformedAST   Kind = "MalformedAST"
)

// Error wraps an evaluation failure with the kind that produced it. The
// underlying cause carries a pkg/errors stack trace.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

func wrapErr(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}

func unboundSymbol(name string) *Error {
	return newErr(KindUnboundSymbol, "unbound symbol: %s", name)
}
