package report

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a compile error.  The kind decides how callers react:
// eg. a scope lookup walking outward recovers from `NotFound` but never from
// `MalformedArgument`.
type ErrorKind int

// Enumeration of error kinds.
const (
	// MalformedArgument is a violated constraint of the input program or of
	// an analysis entry point: incompatible redeclarations, illegal
	// bit-fields, conflicting storage classes, etc.
	MalformedArgument ErrorKind = iota

	// NotFound is a lookup miss: identifier, tag or named structure.
	NotFound

	// NotConstant indicates that an expression required to be a constant
	// expression is not one.
	NotConstant

	// NotImplemented is a syntactically valid construct which is not
	// supported.
	NotImplemented

	// StaticAssertionFailed is raised by a `_Static_assert` that evaluated to
	// zero.  The message is the assertion's message.
	StaticAssertionFailed

	// AlreadyExists is raised when inserting into a flat scope which already
	// holds the key.
	AlreadyExists
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedArgument:
		return "malformed argument"
	case NotFound:
		return "not found"
	case NotConstant:
		return "not constant"
	case NotImplemented:
		return "not implemented"
	case StaticAssertionFailed:
		return "static assertion failed"
	default:
		// AlreadyExists
		return "already exists"
	}
}

// CompileError is a compilation error that occurs in a context in which the
// file is known by the error handler and thus doesn't need to be passed along
// with the error.
type CompileError struct {
	// The kind of the error.
	Kind ErrorKind

	// The error message.
	Message string

	// The span over which the error occurs.  This may be nil if the error is
	// not attributable to any source text.
	Span *TextSpan
}

func (ce *CompileError) Error() string {
	return ce.Message
}

// Raise creates a new compile error.
func Raise(kind ErrorKind, span *TextSpan, msg string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(msg, args...), Span: span}
}

// IsKind returns whether err is (or wraps) a compile error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var cerr *CompileError
	if errors.As(err, &cerr) {
		return cerr.Kind == kind
	}

	return false
}

// WithSpan attaches a span to a compile error which does not have one yet.  It
// is used when an error raised by a span-less helper (eg. a scope insertion)
// bubbles up to a node which knows its position.  Errors which are not compile
// errors are returned unchanged.
func WithSpan(err error, span *TextSpan) error {
	var cerr *CompileError
	if errors.As(err, &cerr) && cerr.Span == nil {
		return &CompileError{Kind: cerr.Kind, Message: cerr.Message, Span: span}
	}

	return err
}

// -----------------------------------------------------------------------------

// ICE is an internal compiler error.  These result from a violated contract
// inside csem itself (eg. computing the composite of incompatible types) and
// are raised with `panic`.
type ICE struct {
	Message string
}

func (ice *ICE) Error() string {
	return "internal compiler error: " + ice.Message
}

// Assert panics with an internal compiler error if the condition does not hold.
func Assert(cond bool, msg string, args ...interface{}) {
	if !cond {
		panic(&ICE{Message: fmt.Sprintf(msg, args...)})
	}
}
