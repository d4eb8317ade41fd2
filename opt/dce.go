package opt

import "toyc/ir"

// EliminateDeadCode removes definitions whose results are never used.
// Liveness is solved backward over the CFG to a fixed point, then each
// block is swept backward dropping pure definitions of dead names.  The
// sweep repeats until nothing is removed so chains of dead definitions
// disappear in one pass.
func EliminateDeadCode(body []*ir.Instruction) []*ir.Instruction {
	for {
		g := BuildGraph("", body)
		liveIn := solveLiveness(g)

		removed := false
		var out []*ir.Instruction

		for _, blk := range g.Blocks {
			live := make(map[string]bool)
			for _, s := range blk.Succs {
				for n := range liveIn[s] {
					live[n] = true
				}
			}

			kept := make([]*ir.Instruction, 0, len(blk.Instrs))
			for i := len(blk.Instrs) - 1; i >= 0; i-- {
				in := blk.Instrs[i]
				dest := destName(in)

				if dest != "" && !in.HasSideEffects() && !live[dest] {
					removed = true
					continue
				}

				if dest != "" {
					delete(live, dest)
				}
				for _, o := range []*ir.Operand{in.Src1, in.Src2} {
					if o.IsName() {
						live[o.Name] = true
					}
				}

				kept = append(kept, in)
			}

			for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
				kept[i], kept[j] = kept[j], kept[i]
			}
			out = append(out, kept...)
		}

		body = out
		if !removed {
			return body
		}
	}
}

// solveLiveness computes the live-in name set of every block.
func solveLiveness(g *Graph) []map[string]bool {
	liveIn := make([]map[string]bool, len(g.Blocks))
	for i := range liveIn {
		liveIn[i] = make(map[string]bool)
	}

	changed := true
	for changed {
		changed = false

		for id := len(g.Blocks) - 1; id >= 0; id-- {
			blk := g.Blocks[id]

			live := make(map[string]bool)
			for _, s := range blk.Succs {
				for n := range liveIn[s] {
					live[n] = true
				}
			}

			for i := len(blk.Instrs) - 1; i >= 0; i-- {
				in := blk.Instrs[i]

				if dest := destName(in); dest != "" {
					delete(live, dest)
				}
				for _, o := range []*ir.Operand{in.Src1, in.Src2} {
					if o.IsName() {
						live[o.Name] = true
					}
				}
			}

			if len(live) != len(liveIn[id]) || !sameSet(live, liveIn[id]) {
				liveIn[id] = live
				changed = true
			}
		}
	}

	return liveIn
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !b[n] {
			return false
		}
	}

	return true
}
