// Package upolserr defines the shared error taxonomy used across the
// dsp/upols packages: a partitioned-convolution engine propagates a small,
// closed set of failure kinds rather than ad-hoc error strings, so that
// hosts can branch on Code without parsing messages.
package upolserr

import "fmt"

// Code identifies the kind of failure reported by a dsp/upols operation.
// There is no Ok value: success is the absence of an error, as everywhere
// else in this module.
type Code int

const (
	// InvalidArgument covers construction-time or mutator-time misuse:
	// sizes exceeding maxima, unknown backend names, duplicated routing
	// identity, interpolants with the wrong cardinality, out-of-range
	// indices, or size mismatches in bulk updates.
	InvalidArgument Code = iota + 1

	// AlignmentError reports that a buffer did not satisfy the declared
	// element alignment. Only checked when built with the upolsdebug tag.
	AlignmentError

	// ArithmeticError reports that a vector primitive failed internally
	// (e.g. a dispatched SIMD kernel rejected its inputs).
	ArithmeticError

	// LogicError reports that an internal invariant was violated; it
	// should not occur in correct use of the public API.
	LogicError
)

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "InvalidArgument"
	case AlignmentError:
		return "AlignmentError"
	case ArithmeticError:
		return "ArithmeticError"
	case LogicError:
		return "LogicError"
	default:
		return "Unknown"
	}
}

// Error pairs a Code with a descriptive message and an optional wrapped cause.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upols: %s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("upols: %s: %s", e.Code, e.Msg)
}

// Unwrap allows errors.Is/As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a new *Error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// Newf returns a new *Error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new *Error with the given code, message, and cause.
func Wrap(code Code, msg string, err error) error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{Code: code, Msg: msg, Err: err}
}

// Is reports whether err carries the given Code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
