package opt

import (
	"fmt"
	"os"

	"toyc/ir"
	"toyc/report"
)

// Pass is a named rewrite of a function body.  A pass receives the
// instructions between one FUNCTION_BEGIN/FUNCTION_END pair and returns the
// replacement body; it never sees the delimiters and never crosses function
// boundaries.
type Pass struct {
	Name string
	Fn   func(body []*ir.Instruction) []*ir.Instruction
}

// Config controls how the pipeline runs.
type Config struct {
	// SupportsShift enables the strength reduction pass, which emits SHL.
	SupportsShift bool

	// Disabled lists pass names to skip.
	Disabled []string

	// DumpAfter prints the instruction stream after each pass.
	DumpAfter bool
}

// Pipeline returns the standard pass order.
func Pipeline(cfg Config) []Pass {
	passes := []Pass{
		{"fold", Fold},
		{"constprop", PropagateConstants},
		{"copyprop", PropagateCopies},
		{"algebraic", Algebraic},
	}

	if cfg.SupportsShift {
		passes = append(passes, Pass{"strength", ReduceStrength})
	}

	passes = append(passes,
		Pass{"cse", EliminateCommonSubexprs},
		Pass{"licm", HoistLoopInvariants},
		Pass{"dce", EliminateDeadCode},
		Pass{"cflow", SimplifyControlFlow},
	)

	if len(cfg.Disabled) > 0 {
		skip := make(map[string]bool, len(cfg.Disabled))
		for _, name := range cfg.Disabled {
			skip[name] = true
		}

		kept := passes[:0]
		for _, p := range passes {
			if !skip[p.Name] {
				kept = append(kept, p)
			}
		}
		passes = kept
	}

	return passes
}

// Optimize runs the pipeline over the instruction stream.  Every pass is
// idempotent but the pipeline as a whole is not: a later pass can expose
// work for an earlier one, so the pipeline is applied twice, which reaches
// a fixed point on this pass set.
func Optimize(instrs []*ir.Instruction, cfg Config, rep *report.Reporter) []*ir.Instruction {
	passes := Pipeline(cfg)

	for round := 0; round < 2; round++ {
		for _, pass := range passes {
			instrs = eachFunction(instrs, pass.Fn)

			if cfg.DumpAfter {
				fmt.Fprintf(os.Stderr, "-- after %s (round %d) --\n", pass.Name, round+1)
				ir.WriteDump(os.Stderr, instrs)
			}
		}
	}

	if rep != nil && rep.Verbose() {
		report.PrintInfoMessage("Optimizer", fmt.Sprintf("%d instructions after %d passes", len(instrs), len(passes)))
	}

	return instrs
}

// eachFunction applies fn to every function body in the stream, leaving the
// FUNCTION_BEGIN/FUNCTION_END delimiters in place.
func eachFunction(instrs []*ir.Instruction, fn func([]*ir.Instruction) []*ir.Instruction) []*ir.Instruction {
	out := make([]*ir.Instruction, 0, len(instrs))

	for i := 0; i < len(instrs); i++ {
		in := instrs[i]
		out = append(out, in)

		if in.Op != ir.OpFunctionBegin {
			continue
		}

		end := i + 1
		for end < len(instrs) && instrs[end].Op != ir.OpFunctionEnd {
			end++
		}

		out = append(out, fn(instrs[i+1:end])...)
		if end < len(instrs) {
			out = append(out, instrs[end])
		}
		i = end
	}

	return out
}
