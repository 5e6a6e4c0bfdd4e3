package report

import (
	"errors"
	"fmt"
)

// Diagnostics accumulates the compile errors and warnings of one translation
// unit.  The analyzer records errors here instead of printing them so that
// sibling declarations can continue to be analyzed after one of them fails.
type Diagnostics struct {
	Errors   []*CompileError
	Warnings []*CompileError
}

// Add records an error.  Compile errors (wrapped or not) are stored as is; any other error is
// wrapped as a malformed argument with no position.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}

	var cerr *CompileError
	if errors.As(err, &cerr) {
		d.Errors = append(d.Errors, cerr)
	} else {
		d.Errors = append(d.Errors, &CompileError{Kind: MalformedArgument, Message: err.Error()})
	}
}

// Warn records a warning.  Warnings never fail the translation unit.
func (d *Diagnostics) Warn(span *TextSpan, msg string, args ...interface{}) {
	d.Warnings = append(d.Warnings, &CompileError{Message: fmt.Sprintf(msg, args...), Span: span})
}

// Any returns whether any error has been recorded.
func (d *Diagnostics) Any() bool {
	return len(d.Errors) > 0
}

// Count returns the number of recorded errors of the given kind.
func (d *Diagnostics) Count(kind ErrorKind) int {
	n := 0
	for _, cerr := range d.Errors {
		if cerr.Kind == kind {
			n++
		}
	}

	return n
}

// Flush reports every recorded error and warning against the given source
// file and clears both lists.
func (d *Diagnostics) Flush(absPath, reprPath string) {
	for _, cerr := range d.Errors {
		ReportCompileError(absPath, reprPath, cerr.Span, "%s", cerr.Message)
	}

	for _, warn := range d.Warnings {
		ReportCompileWarning(absPath, reprPath, warn.Span, "%s", warn.Message)
	}

	d.Errors = nil
	d.Warnings = nil
}
