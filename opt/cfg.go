package opt

import "toyc/ir"

// BasicBlock is a maximal straight-line instruction run.  Blocks live in an
// indexed arena and reference each other by index, so the cyclic
// predecessor/successor structure needs no pointer ownership.
type BasicBlock struct {
	ID       int
	Label    string // label name when the block starts at a LABEL
	FuncName string
	Instrs   []*ir.Instruction
	Preds    []int
	Succs    []int
}

// Graph is the control flow graph of a single function body.  Block 0 is
// the function entry.
type Graph struct {
	FuncName string
	Blocks   []*BasicBlock
}

// BuildGraph splits a function body (the instructions between the
// FUNCTION_BEGIN/FUNCTION_END delimiters) into basic blocks and connects
// them.  Leaders are the first instruction, every LABEL, and every
// instruction following a GOTO, IF_GOTO, or RETURN.  Edges are the
// fall-through for normal instructions, both arms for IF_GOTO, the target
// only for GOTO, and none for RETURN.
func BuildGraph(funcName string, body []*ir.Instruction) *Graph {
	g := &Graph{FuncName: funcName}

	leader := make([]bool, len(body))
	if len(body) > 0 {
		leader[0] = true
	}

	for i, in := range body {
		switch in.Op {
		case ir.OpLabel:
			leader[i] = true
		case ir.OpGoto, ir.OpIfGoto, ir.OpReturn:
			if i+1 < len(body) {
				leader[i+1] = true
			}
		}
	}

	for i := 0; i < len(body); {
		j := i + 1
		for j < len(body) && !leader[j] {
			j++
		}

		blk := &BasicBlock{
			ID:       len(g.Blocks),
			FuncName: funcName,
			Instrs:   body[i:j],
		}
		if body[i].Op == ir.OpLabel {
			blk.Label = body[i].Dest.Name
		}

		g.Blocks = append(g.Blocks, blk)
		i = j
	}

	byLabel := make(map[string]int)
	for _, blk := range g.Blocks {
		if blk.Label != "" {
			byLabel[blk.Label] = blk.ID
		}
	}

	for _, blk := range g.Blocks {
		last := blk.Instrs[len(blk.Instrs)-1]

		switch last.Op {
		case ir.OpGoto:
			if target, ok := byLabel[last.Dest.Name]; ok {
				g.addEdge(blk.ID, target)
			}
		case ir.OpIfGoto:
			if target, ok := byLabel[last.Dest.Name]; ok {
				g.addEdge(blk.ID, target)
			}
			if blk.ID+1 < len(g.Blocks) {
				g.addEdge(blk.ID, blk.ID+1)
			}
		case ir.OpReturn:
			// No successors.
		default:
			if blk.ID+1 < len(g.Blocks) {
				g.addEdge(blk.ID, blk.ID+1)
			}
		}
	}

	return g
}

func (g *Graph) addEdge(from, to int) {
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}

// Flatten reassembles the instruction vector from the block arena in block
// order.
func (g *Graph) Flatten() []*ir.Instruction {
	var out []*ir.Instruction
	for _, blk := range g.Blocks {
		out = append(out, blk.Instrs...)
	}

	return out
}

// Reachable returns the set of block IDs reachable from the entry block.
func (g *Graph) Reachable() map[int]bool {
	seen := make(map[int]bool)
	if len(g.Blocks) == 0 {
		return seen
	}

	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[id] {
			continue
		}
		seen[id] = true

		stack = append(stack, g.Blocks[id].Succs...)
	}

	return seen
}

// -----------------------------------------------------------------------------

// reversePostOrder returns the reachable block IDs in reverse post-order
// starting from the entry block.
func (g *Graph) reversePostOrder() []int {
	visited := make([]bool, len(g.Blocks))
	var order []int

	var dfs func(id int)
	dfs = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, s := range g.Blocks[id].Succs {
			dfs(s)
		}
		order = append(order, id)
	}

	if len(g.Blocks) > 0 {
		dfs(0)
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order
}

// Dominators computes the immediate dominator of every reachable block
// using Cooper, Harvey, and Kennedy's iterative algorithm.  The entry block
// and unreachable blocks get -1.
func (g *Graph) Dominators() []int {
	idom := make([]int, len(g.Blocks))
	for i := range idom {
		idom[i] = -1
	}

	rpo := g.reversePostOrder()
	if len(rpo) == 0 {
		return idom
	}

	rpoNum := make([]int, len(g.Blocks))
	for i := range rpoNum {
		rpoNum[i] = -1
	}
	for i, id := range rpo {
		rpoNum[id] = i
	}

	// The entry dominates itself as a sentinel during iteration.
	entry := rpo[0]
	idom[entry] = entry

	intersect := func(b1, b2 int) int {
		for b1 != b2 {
			for rpoNum[b1] > rpoNum[b2] {
				b1 = idom[b1]
			}
			for rpoNum[b2] > rpoNum[b1] {
				b2 = idom[b2]
			}
		}
		return b1
	}

	changed := true
	for changed {
		changed = false

		for _, id := range rpo[1:] {
			newIdom := -1
			for _, p := range g.Blocks[id].Preds {
				if idom[p] != -1 {
					if newIdom == -1 {
						newIdom = p
					} else {
						newIdom = intersect(p, newIdom)
					}
				}
			}

			if newIdom != -1 && idom[id] != newIdom {
				idom[id] = newIdom
				changed = true
			}
		}
	}

	idom[entry] = -1
	return idom
}

// dominates reports whether block a dominates block b under the given
// immediate dominator relation.
func dominates(idom []int, a, b int) bool {
	for b != -1 {
		if a == b {
			return true
		}
		b = idom[b]
	}

	return false
}

// -----------------------------------------------------------------------------

// Loop is a natural loop: the set of blocks dominated by the header that
// can reach the back-edge tail without leaving the loop.
type Loop struct {
	Header int
	Tail   int
	Blocks map[int]bool
}

// NaturalLoops finds every natural loop in the graph by locating back-edges
// u→v where v dominates u, then walking predecessors backward from u until
// v.  Loops sharing a header are merged.
func (g *Graph) NaturalLoops() []*Loop {
	idom := g.Dominators()
	reachable := g.Reachable()

	byHeader := make(map[int]*Loop)
	var loops []*Loop

	for _, blk := range g.Blocks {
		if !reachable[blk.ID] {
			continue
		}

		for _, succ := range blk.Succs {
			if !dominates(idom, succ, blk.ID) {
				continue
			}

			header, tail := succ, blk.ID
			loop := byHeader[header]
			if loop == nil {
				loop = &Loop{Header: header, Tail: tail, Blocks: map[int]bool{header: true}}
				byHeader[header] = loop
				loops = append(loops, loop)
			}

			// Walk backward from the tail collecting the loop body.
			stack := []int{tail}
			for len(stack) > 0 {
				id := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if loop.Blocks[id] {
					continue
				}
				loop.Blocks[id] = true

				stack = append(stack, g.Blocks[id].Preds...)
			}
		}
	}

	return loops
}
