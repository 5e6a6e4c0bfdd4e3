package cmd

import (
	"os"

	"csem/common"
	"csem/report"
	"csem/target"

	"github.com/ComedicChimera/olive"
	"github.com/pterm/pterm"
)

// Execute is the main entry point for the `csem` CLI utility
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("csem", "csem checks the semantics of C translation units", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	checkCmd := cli.AddSubcommand("check", "analyze a translation unit and report errors", true)
	checkCmd.AddPrimaryArg("unit-path", "the path to the AST interchange file of the unit", true)
	checkCmd.AddStringArg("target", "t", "the target file or preset to analyze for", false)
	checkCmd.AddStringArg("source", "s", "the C source the unit was parsed from", false)
	checkCmd.AddStringArg("emit-ll", "o", "the path to write the LLVM IR of the unit to", false)

	targetCmd := cli.AddSubcommand("target", "print the data model of a target", true)
	targetCmd.AddStringArg("target", "t", "the target file or preset to print", false)

	cli.AddSubcommand("version", "print the csem version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.DisplayErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		if !execCheckCommand(subResult, result.Arguments["loglevel"].(string)) {
			os.Exit(1)
		}
	case "target":
		execTargetCommand(subResult)
	case "version":
		report.DisplayInfoMessage("csem version", common.CsemVersion)
	}
}

// execCheckCommand executes the check subcommand.  It returns whether the unit
// was free of errors.
func execCheckCommand(result *olive.ArgParseResult, loglevel string) bool {
	report.InitReporter(report.LogLevelFromName(loglevel))

	env, err := loadTarget(result)
	if err != nil {
		report.ReportFatal("%s", err)
	}

	unitPath, _ := result.PrimaryArg()
	c, err := NewChecker(unitPath, stringArg(result, "source"), env)
	if err != nil {
		report.ReportFatal("%s", err)
	}
	defer c.Free()

	ok := c.Analyze()
	if outPath := stringArg(result, "emit-ll"); ok && outPath != "" {
		c.Generate(outPath)
	}

	report.ReportFinished()
	return ok && !report.AnyErrors()
}

// execTargetCommand executes the target subcommand.
func execTargetCommand(result *olive.ArgParseResult) {
	env, err := loadTarget(result)
	if err != nil {
		report.DisplayErrorMessage("Target Error", err)
		os.Exit(1)
	}

	report.DisplayInfoMessage("target", env.String())
	if err := pterm.DefaultTable.WithHasHeader().WithData(env.LayoutTable()).Render(); err != nil {
		report.DisplayErrorMessage("Display Error", err)
	}
}

// -----------------------------------------------------------------------------

// loadTarget loads the environment selected by the `target` argument: either a
// preset name or the path to a target file.  The default preset is used if
// no target is given.
func loadTarget(result *olive.ArgParseResult) (*target.Environment, error) {
	name := stringArg(result, "target")
	if name == "" {
		return target.Default(), nil
	}

	if env, err := target.Preset(name); err == nil {
		return env, nil
	}

	return target.LoadEnvironment(name)
}

// stringArg returns the value of an optional string argument: empty if the
// argument was not given.
func stringArg(result *olive.ArgParseResult, name string) string {
	if val, ok := result.Arguments[name]; ok {
		return val.(string)
	}

	return ""
}
