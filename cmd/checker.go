package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"csem/ast"
	"csem/common"
	"csem/generate"
	"csem/report"
	"csem/target"
	"csem/walk"

	"github.com/pkg/errors"
)

// Checker represents the state of a single `check` run: one translation unit
// analyzed for one target.
type Checker struct {
	// unitAbsPath is the absolute path to the AST interchange file.
	unitAbsPath string

	// srcAbsPath is the absolute path to the C source the unit was parsed
	// from.  It is only used to display source text next to errors and may be
	// empty.
	srcAbsPath string

	// reprPath is the path displayed to the user in error messages.
	reprPath string

	env *target.Environment
	gc  *walk.GlobalContext
}

// NewChecker creates a new checker for the unit at the given path.  The
// source path may be empty.
func NewChecker(unitRelPath, srcRelPath string, env *target.Environment) (*Checker, error) {
	unitAbsPath, err := filepath.Abs(unitRelPath)
	if err != nil {
		return nil, errors.Wrap(err, "error calculating absolute path")
	}

	c := &Checker{unitAbsPath: unitAbsPath, reprPath: unitRelPath, env: env}

	if srcRelPath != "" {
		if c.srcAbsPath, err = filepath.Abs(srcRelPath); err != nil {
			return nil, errors.Wrap(err, "error calculating absolute path")
		}

		c.reprPath = srcRelPath
	}

	return c, nil
}

// Analyze decodes and analyzes the translation unit and reports every error
// encountered.  It returns whether the unit is free of errors.
func (c *Checker) Analyze() bool {
	f, err := os.Open(c.unitAbsPath)
	if err != nil {
		report.ReportStdError(c.reprPath, errors.Wrap(err, "failed to open translation unit"))
		return false
	}
	defer f.Close()

	tu, err := ast.DecodeTranslationUnit(f)
	if err != nil {
		report.ReportStdError(c.reprPath, err)
		return false
	}

	report.ReportPhase("Decoding")

	c.gc = walk.NewGlobalContext(nil, c.env)
	w := walk.NewWalker(c.gc)

	func() {
		defer report.CatchErrors(c.srcAbsPath, c.reprPath)
		w.AnalyzeTranslationUnit(tu)
	}()

	w.Diagnostics().Flush(c.srcAbsPath, c.reprPath)
	report.ReportPhase("Analysis")

	return !report.AnyErrors()
}

// Generate writes the LLVM IR of the analyzed unit to the given path.  The
// analysis phase must be run before this.
func (c *Checker) Generate(outPath string) {
	mod, err := generate.Module(c.gc, filepath.Base(c.sourceName()))
	if err != nil {
		report.ReportStdError(c.reprPath, err)
		return
	}

	file, err := os.Create(outPath)
	if err != nil {
		report.ReportFatal("failed to create output file: %s", err)
	}
	defer file.Close()

	if _, err := mod.WriteTo(file); err != nil {
		report.ReportFatal("failed to write LLVM module to file: %s", err)
	}

	report.ReportPhase("Generation")
}

// Free releases the analyzed translation unit.
func (c *Checker) Free() {
	if c.gc != nil {
		c.gc.Free()
	}
}

// sourceName is the name of the C source of the unit: the source path if one
// was given and otherwise the unit path with its interchange extension
// replaced.
func (c *Checker) sourceName() string {
	if c.srcAbsPath != "" {
		return c.srcAbsPath
	}

	return strings.TrimSuffix(c.unitAbsPath, common.UnitFileExtension) + ".c"
}
