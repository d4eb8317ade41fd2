package opt

import "toyc/ir"

// HoistLoopInvariants moves loop-invariant computations into a preheader
// block inserted in front of each natural loop header.  An instruction is
// hoistable when it is pure, defines a temporary with exactly one
// definition in the function, and reads only names that are never defined
// inside the loop.  Entry edges into the header are retargeted to the
// preheader; the back edge keeps jumping to the header itself.
func HoistLoopInvariants(body []*ir.Instruction) []*ir.Instruction {
	done := make(map[string]bool)

	for {
		g := BuildGraph("", body)

		var loop *Loop
		for _, l := range g.NaturalLoops() {
			if label := g.Blocks[l.Header].Label; label != "" && !done[label] {
				done[label] = true
				loop = l
				break
			}
		}
		if loop == nil {
			return body
		}

		body = hoistLoop(g, loop)
	}
}

// hoistLoop performs the motion for a single loop and returns the rebuilt
// function body.
func hoistLoop(g *Graph, loop *Loop) []*ir.Instruction {
	defCount := make(map[string]int)
	for _, blk := range g.Blocks {
		for _, n := range blocksDefs(blk) {
			defCount[n]++
		}
	}

	loopDefs := make(map[string]bool)
	for id := range loop.Blocks {
		for _, n := range blocksDefs(g.Blocks[id]) {
			loopDefs[n] = true
		}
	}

	// Collect hoistable instructions to a fixed point: hoisting one
	// instruction can make another's operands invariant.
	hoisted := make(map[*ir.Instruction]bool)
	var order []*ir.Instruction

	for changed := true; changed; {
		changed = false

		for id := 0; id < len(g.Blocks); id++ {
			if !loop.Blocks[id] {
				continue
			}

			for _, in := range g.Blocks[id].Instrs {
				if hoisted[in] || !hoistable(in, loopDefs, defCount) {
					continue
				}

				hoisted[in] = true
				order = append(order, in)
				delete(loopDefs, in.Dest.Name)
				changed = true
			}
		}
	}

	if len(order) == 0 {
		return g.Flatten()
	}

	headerLabel := g.Blocks[loop.Header].Label
	pre := ir.NamedLabel(headerLabel + "_pre")

	var out []*ir.Instruction
	for _, blk := range g.Blocks {
		if blk.ID == loop.Header {
			out = append(out, &ir.Instruction{Op: ir.OpLabel, Dest: pre})
			out = append(out, order...)
		}

		for _, in := range blk.Instrs {
			if hoisted[in] {
				continue
			}

			// Entry edges jump to the preheader instead; jumps from inside
			// the loop are the back edges and keep their target.
			if !loop.Blocks[blk.ID] &&
				(in.Op == ir.OpGoto || in.Op == ir.OpIfGoto) &&
				in.Dest.Name == headerLabel {
				out = append(out, &ir.Instruction{Op: in.Op, Dest: pre, Src1: in.Src1})
				continue
			}

			out = append(out, in)
		}
	}

	return out
}

// blocksDefs returns the names defined by a block's instructions.
func blocksDefs(blk *BasicBlock) []string {
	var names []string
	for _, in := range blk.Instrs {
		if name := destName(in); name != "" {
			names = append(names, name)
		}
	}

	return names
}

// hoistable reports whether the instruction can move to the preheader.
// Division and modulo are held back unless the divisor is a nonzero
// constant, since the preheader executes even when the loop body does not.
func hoistable(in *ir.Instruction, loopDefs map[string]bool, defCount map[string]int) bool {
	if !in.IsComputation() && in.Op != ir.OpAssign {
		return false
	}
	if in.Dest == nil || in.Dest.Kind != ir.OperandTemp || defCount[in.Dest.Name] != 1 {
		return false
	}

	if in.Op == ir.OpDiv || in.Op == ir.OpMod {
		if !in.Src2.IsConst() || in.Src2.Value == 0 {
			return false
		}
	}

	for _, o := range []*ir.Operand{in.Src1, in.Src2} {
		if o.IsName() && loopDefs[o.Name] {
			return false
		}
	}

	return true
}
