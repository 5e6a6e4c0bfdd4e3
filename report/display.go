package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// DisplayInfoMessage prints an informational message to the user.
func DisplayInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// DisplayErrorMessage prints an error that occurred outside of analysis, such
// as a command line usage error.
func DisplayErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	fmt.Print("\n")
	ErrorStyleBG.Print("internal compiler error")
	ErrorColorFG.Println(" " + message)
	fmt.Print("This error was not supposed to happen: it is a bug in csem.\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	ErrorStyleBG.Print("fatal error")
	ErrorColorFG.Println(" " + message)
	fmt.Println()
}

// displayCompileMessage displays a compilation error or warning.
func displayCompileMessage(isError bool, absPath, reprPath string, span *TextSpan, message string) {
	if isError {
		ErrorStyleBG.Print("error")
	} else {
		WarnStyleBG.Print("warning")
	}

	if span == nil {
		fmt.Printf(" %s: %s\n\n", reprPath, message)
	} else {
		fmt.Printf(" %s:%d:%d: %s\n\n", reprPath, span.StartLine+1, span.StartCol+1, message)

		if absPath != "" {
			displaySourceText(absPath, span)
		}
	}
}

// displayStdError displays a standard Go error.
func displayStdError(reprPath string, err error) {
	ErrorStyleBG.Print("error")
	fmt.Printf(" %s: %s\n\n", reprPath, err)
}

// displayPhase displays a completed phase along with the time elapsed since
// the reporter was initialized.
func displayPhase(phase string, elapsed time.Duration) {
	SuccessStyleBG.Print("Done")
	fmt.Printf(" %-12s ", phase)
	InfoColorFG.Println(fmt.Sprintf("(%.3fs)", elapsed.Seconds()))
}

// displayFinished displays the closing message of a run.
func displayFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
// Files that cannot be read are silently skipped: the message itself has
// already been printed.
func displaySourceText(absPath string, span *TextSpan) {
	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := 0
		for _, c := range line {
			if c == ' ' {
				lineIndent++
			} else {
				break
			}
		}

		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// Underlining starts at the start column on the first line and at the
		// indentation on every other line.
		carretPrefixCount := 0
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		}

		// Underlining stops at the end column on the last line.
		carretSuffixCount := 0
		if i == len(lines)-1 {
			carretSuffixCount = len(line) - span.EndCol - 1
		}

		carretCount := len(line) - carretSuffixCount - carretPrefixCount - minIndent
		if carretPrefixCount < 0 || carretCount <= 0 {
			fmt.Println()
			continue
		}

		fmt.Print(strings.Repeat(" ", carretPrefixCount))
		ErrorColorFG.Println(strings.Repeat("^", carretCount))
	}

	fmt.Println()
}
