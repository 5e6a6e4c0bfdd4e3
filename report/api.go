package report

import (
	"fmt"
	"os"
	"time"
)

// NOTE: All report functions will only display if the appropriate log level is
// set.  Most report functions will simply fail silently if below their
// appropriate log level.

// ReportCompileError reports a compilation error: ie. erroneous input code. The
// absPath is the absolute path to the erroneous source file. The reprPath is
// the path displayed to the user.  The span may be nil in which case no
// position information will be printed.
func ReportCompileError(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r := reporter()
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++

	if r.logLevel > LogLevelSilent {
		displayCompileMessage(true, absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// ReportCompileWarning reports a compilation warning.  The arguments are of the
// same form as those to ReportCompileError.
func ReportCompileWarning(absPath, reprPath string, span *TextSpan, message string, args ...interface{}) {
	r := reporter()
	r.m.Lock()
	defer r.m.Unlock()

	r.warningCount++

	if r.logLevel >= LogLevelWarn {
		displayCompileMessage(false, absPath, reprPath, span, fmt.Sprintf(message, args...))
	}
}

// ReportStdError reports a non-fatal, standard Go error.
func ReportStdError(reprPath string, err error) {
	r := reporter()
	r.m.Lock()
	defer r.m.Unlock()

	r.errorCount++

	if r.logLevel > LogLevelSilent {
		displayStdError(reprPath, err)
	}
}

// ReportFatal reports a fatal error.  These are errors that should cause all
// compilation to stop immediately.  However, they are expected errors that
// generally result from invalid configuration of some form: a missing target
// file, an unreadable input, etc.
func ReportFatal(message string, args ...interface{}) {
	r := reporter()
	if r.logLevel > LogLevelSilent {
		r.m.Lock()
		displayFatal(fmt.Sprintf(message, args...))
		r.m.Unlock()
	}

	os.Exit(1)
}

// ReportICE reports an internal compiler error.  These errors are always
// displayed regardless of log level.
func ReportICE(message string, args ...interface{}) {
	r := reporter()
	r.m.Lock()
	defer r.m.Unlock()

	displayICE(fmt.Sprintf(message, args...))

	os.Exit(-1)
}

// ReportPhase reports the completion of a phase of analysis.  It is only
// displayed at the verbose log level.
func ReportPhase(phase string) {
	r := reporter()
	if r.logLevel == LogLevelVerbose {
		r.m.Lock()
		defer r.m.Unlock()

		displayPhase(phase, time.Since(r.startTime))
	}
}

// ReportFinished displays the concluding message: the number of errors and
// warnings reported.
func ReportFinished() {
	r := reporter()
	if r.logLevel == LogLevelVerbose {
		r.m.Lock()
		defer r.m.Unlock()

		displayFinished(r.errorCount == 0, r.errorCount, r.warningCount)
	}
}

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	r := reporter()
	r.m.Lock()
	defer r.m.Unlock()

	return r.errorCount > 0
}

// -----------------------------------------------------------------------------

// CatchErrors catches any errors thrown by a `panic` during a stage of
// compilation. In effect, this handler determines when any errors
// "unrecoverable" within a given subsection of the compiler should stop
// bubbling.
// NB: This function must ALWAYS be deferred.
func CatchErrors(absPath, reprPath string) {
	if x := recover(); x != nil {
		switch v := x.(type) {
		case *CompileError:
			ReportCompileError(absPath, reprPath, v.Span, "%s", v.Message)
		case *ICE:
			ReportICE("%s", v.Message)
		case error:
			ReportStdError(reprPath, v)
		default:
			ReportICE("%v", x)
		}
	}
}
