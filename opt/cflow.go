package opt

import "toyc/ir"

// SimplifyControlFlow cleans up the jump structure of a function body:
//
//   - IF_GOTO on a constant condition becomes an unconditional GOTO or
//     disappears, depending on the constant.
//   - Blocks unreachable from the function entry are removed.
//   - A label immediately following another label is fused into it.
//   - A GOTO whose target is the very next label is dropped.
//   - Labels no jump refers to are dropped.
//
// Each step can expose more work for the others, so the pass iterates
// until the body stops changing.
func SimplifyControlFlow(body []*ir.Instruction) []*ir.Instruction {
	for {
		n := len(body)

		body = resolveConstBranches(body)
		body = dropUnreachable(body)
		body = fuseAdjacentLabels(body)
		body = dropJumpsToNext(body)
		body = dropUnusedLabels(body)

		if len(body) == n {
			return body
		}
	}
}

func resolveConstBranches(body []*ir.Instruction) []*ir.Instruction {
	out := body[:0]

	for _, in := range body {
		if in.Op == ir.OpIfGoto && in.Src1.IsConst() {
			if in.Src1.Value == 0 {
				continue
			}

			in = &ir.Instruction{Op: ir.OpGoto, Dest: in.Dest}
		}

		out = append(out, in)
	}

	return out
}

func dropUnreachable(body []*ir.Instruction) []*ir.Instruction {
	g := BuildGraph("", body)
	reachable := g.Reachable()

	var out []*ir.Instruction
	for _, blk := range g.Blocks {
		if reachable[blk.ID] {
			out = append(out, blk.Instrs...)
		}
	}

	return out
}

func fuseAdjacentLabels(body []*ir.Instruction) []*ir.Instruction {
	// Map every label in a run of consecutive LABELs to the first one.
	alias := make(map[string]string)
	for i := 1; i < len(body); i++ {
		if body[i].Op == ir.OpLabel && body[i-1].Op == ir.OpLabel {
			target := body[i-1].Dest.Name
			if canonical, ok := alias[target]; ok {
				target = canonical
			}
			alias[body[i].Dest.Name] = target
		}
	}

	if len(alias) == 0 {
		return body
	}

	out := body[:0]
	for _, in := range body {
		switch in.Op {
		case ir.OpLabel:
			if _, fused := alias[in.Dest.Name]; fused {
				continue
			}
		case ir.OpGoto, ir.OpIfGoto:
			if canonical, ok := alias[in.Dest.Name]; ok {
				in = &ir.Instruction{Op: in.Op, Dest: ir.NamedLabel(canonical), Src1: in.Src1}
			}
		}

		out = append(out, in)
	}

	return out
}

func dropJumpsToNext(body []*ir.Instruction) []*ir.Instruction {
	out := body[:0]

	for i, in := range body {
		if in.Op == ir.OpGoto && i+1 < len(body) &&
			body[i+1].Op == ir.OpLabel && body[i+1].Dest.Name == in.Dest.Name {
			continue
		}

		out = append(out, in)
	}

	return out
}

func dropUnusedLabels(body []*ir.Instruction) []*ir.Instruction {
	referenced := make(map[string]bool)
	for _, in := range body {
		if in.Op == ir.OpGoto || in.Op == ir.OpIfGoto {
			referenced[in.Dest.Name] = true
		}
	}

	out := body[:0]
	for _, in := range body {
		if in.Op == ir.OpLabel && !referenced[in.Dest.Name] {
			continue
		}

		out = append(out, in)
	}

	return out
}
