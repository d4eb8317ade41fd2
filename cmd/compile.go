package cmd

import (
	"os"

	"toyc/config"
	"toyc/ir"
	"toyc/opt"
	"toyc/report"
	"toyc/sem"
	"toyc/syntax"

	"github.com/ComedicChimera/olive"
	"github.com/alecthomas/repr"
)

// execCompileCommand executes the compile subcommand and handles all errors
func execCompileCommand(result *olive.ArgParseResult, loglevel int) int {
	src, err := readSource(result)
	if err != nil {
		report.PrintErrorMessage("File Error", err)
		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return 1
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		report.PrintErrorMessage("Config Error", err)
		return 1
	}

	rep := report.NewReporter(loglevel)
	unit, ok := parseSource(src, cfg, rep)
	if !ok {
		return 1
	}

	instrs, err := ir.NewGenerator().Generate(unit)
	if err != nil {
		report.PrintErrorMessage("IR Error", err)
		return 1
	}

	if result.HasFlag("opt") {
		instrs = opt.Optimize(instrs, opt.Config{
			SupportsShift: cfg.SupportsShift,
			Disabled:      cfg.DisabledPasses,
			DumpAfter:     result.HasFlag("dump-passes"),
		}, rep)
	}

	if result.HasFlag("dump-ir") {
		w := os.Stdout

		if outVal, hasOut := result.Arguments["out"]; hasOut {
			f, err := os.Create(outVal.(string))
			if err != nil {
				report.PrintErrorMessage("File Error", err)
				return 1
			}
			defer f.Close()

			w = f
		}

		ir.WriteDump(w, instrs)
	}

	return 0
}

// execLexCommand executes the lex subcommand: it tokenizes the source and
// writes the token dump to stdout.  Lexical errors still reject.
func execLexCommand(result *olive.ArgParseResult, loglevel int) int {
	src, err := readSource(result)
	if err != nil {
		report.PrintErrorMessage("File Error", err)
		return 1
	}

	rep := report.NewReporter(loglevel)
	toks := syntax.NewLexer(src, rep).Tokenize()

	syntax.WriteTokenDump(os.Stdout, toks)

	if !rep.ShouldProceed() {
		return 1
	}
	return 0
}

// execParseCommand executes the parse subcommand: it runs the front end and
// writes the accept/reject protocol to stdout.
func execParseCommand(result *olive.ArgParseResult, loglevel int) int {
	src, err := readSource(result)
	if err != nil {
		report.PrintErrorMessage("File Error", err)
		return 1
	}

	workDir, err := os.Getwd()
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return 1
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		report.PrintErrorMessage("Config Error", err)
		return 1
	}

	rep := report.NewReporter(loglevel)
	unit, ok := parseSource(src, cfg, rep)
	if !ok {
		return 1
	}

	if result.HasFlag("ast") {
		repr.New(os.Stdout, repr.Indent("  ")).Println(unit)
	}

	return 0
}

// parseSource runs the front end over the source text and prints the
// accept/reject protocol.  It returns the AST and whether the program was
// accepted.
func parseSource(src string, cfg *config.Config, rep *report.Reporter) (*syntax.CompUnit, bool) {
	toks := syntax.NewLexer(src, rep).Tokenize()
	symbols := sem.NewSymbolTable(cfg.WordSize)
	unit := syntax.NewParser(toks, symbols, rep).Parse()

	printParseResult(rep)
	return unit, rep.ShouldProceed()
}
