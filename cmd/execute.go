package cmd

import (
	"fmt"
	"io"
	"os"

	"toyc/common"
	"toyc/report"

	"github.com/ComedicChimera/olive"
)

// Execute runs the main `toyc` application and returns the process exit
// code: 0 on success, 1 on any reject or fatal error.
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("toyc", "toyc is a compiler for the ToyC language", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false,
		[]string{"silent", "error", "warning", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	compileCmd := cli.AddSubcommand("compile", "compile a ToyC source file", true)
	compileCmd.AddPrimaryArg("file", "the source file to compile; stdin when omitted", false)
	compileCmd.AddFlag("opt", "O", "run the optimization pipeline over the generated IR")
	compileCmd.AddFlag("dump-ir", "d", "write the IR dump")
	compileCmd.AddStringArg("out", "o", "the file the IR dump is written to instead of stdout", false)
	compileCmd.AddFlag("dump-passes", "dp", "write the IR dump after every optimization pass")

	lexCmd := cli.AddSubcommand("lex", "dump the token stream of a ToyC source file", true)
	lexCmd.AddPrimaryArg("file", "the source file to lex; stdin when omitted", false)

	parseCmd := cli.AddSubcommand("parse", "parse a ToyC source file and report accept or reject", true)
	parseCmd.AddPrimaryArg("file", "the source file to parse; stdin when omitted", false)
	parseCmd.AddFlag("ast", "a", "dump the AST when the program is accepted")

	cli.AddSubcommand("version", "print the ToyC version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	// process the inputed command line
	loglevel := report.LogLevelFromName(result.Arguments["loglevel"].(string))

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "compile":
		return execCompileCommand(subResult, loglevel)
	case "lex":
		return execLexCommand(subResult, loglevel)
	case "parse":
		return execParseCommand(subResult, loglevel)
	case "version":
		report.PrintInfoMessage("ToyC Version", common.ToycVersion)
	}

	return 0
}

// readSource loads the source text from the primary argument, or from
// stdin when no file was given.
func readSource(result *olive.ArgParseResult) (string, error) {
	if path, ok := result.PrimaryArg(); ok {
		buff, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}

		return string(buff), nil
	}

	buff, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}

	return string(buff), nil
}

// printParseResult writes the accept/reject protocol to stdout: `accept` on
// an empty error list, otherwise `reject` followed by the error lines, one
// per line.
func printParseResult(rep *report.Reporter) {
	if rep.ShouldProceed() {
		fmt.Println("accept")
		return
	}

	fmt.Println("reject")
	for _, line := range rep.ErrorLines() {
		fmt.Println(line)
	}
}
