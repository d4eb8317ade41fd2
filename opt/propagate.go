package opt

import "toyc/ir"

// The propagation passes run a forward dataflow over the function CFG.
// Facts live in a three-level lattice per name: absent means "no assignment
// seen yet" (top), a present entry is a known fact, and bottom means the
// name is assigned but not to anything usable.  Block inputs are the meet
// of their predecessors' outputs and the system is iterated to a fixed
// point before any rewriting happens.
//
// Operands are shared between instructions, so rewrites always install a
// fresh operand instead of mutating one in place.

// destName returns the name defined by the instruction, or "".
func destName(in *ir.Instruction) string {
	switch {
	case in.IsComputation(), in.Op == ir.OpAssign, in.Op == ir.OpCall:
		if in.Dest != nil && in.Dest.IsName() {
			return in.Dest.Name
		}
	}

	return ""
}

// -----------------------------------------------------------------------------
// Constant propagation.

type constFact struct {
	bottom bool
	value  int32
}

type constState map[string]constFact

func (s constState) clone() constState {
	out := make(constState, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

func (s constState) equal(o constState) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}

	return true
}

// meetConst intersects a predecessor's output into the accumulated input.
func meetConst(acc, pred constState) {
	for k, pv := range pred {
		av, ok := acc[k]
		if !ok {
			acc[k] = pv
		} else if av.bottom || pv.bottom || av.value != pv.value {
			acc[k] = constFact{bottom: true}
		}
	}
}

// transferConst applies one instruction to the state.
func transferConst(state constState, in *ir.Instruction) {
	dest := destName(in)
	if dest == "" {
		return
	}

	switch {
	case in.Op == ir.OpAssign:
		src := resolveConst(state, in.Src1)
		if src.IsConst() {
			state[dest] = constFact{value: src.Value}
		} else {
			state[dest] = constFact{bottom: true}
		}
	case in.IsComputation():
		probe := &ir.Instruction{
			Op:   in.Op,
			Src1: resolveConst(state, in.Src1),
			Src2: resolveConst(state, in.Src2),
		}
		if value, ok := evalConst(probe); ok {
			state[dest] = constFact{value: value}
		} else {
			state[dest] = constFact{bottom: true}
		}
	default:
		state[dest] = constFact{bottom: true}
	}
}

// resolveConst maps a name operand to its constant operand when the state
// knows its value, and returns the operand unchanged otherwise.
func resolveConst(state constState, o *ir.Operand) *ir.Operand {
	if o != nil && o.IsName() {
		if fact, ok := state[o.Name]; ok && !fact.bottom {
			return ir.Const(fact.value)
		}
	}

	return o
}

// PropagateConstants replaces every use of a name that provably holds a
// single constant value with that constant.  Uses include computation
// sources, assignment sources, IF_GOTO conditions, PARAM arguments, and
// RETURN values.
func PropagateConstants(body []*ir.Instruction) []*ir.Instruction {
	g := BuildGraph("", body)
	outs := solveForward(g,
		func() dataflowState { return make(constState) },
		func(acc, pred dataflowState) { meetConst(acc.(constState), pred.(constState)) },
		func(state dataflowState, in *ir.Instruction) { transferConst(state.(constState), in) },
		func(a, b dataflowState) bool { return a.(constState).equal(b.(constState)) },
		func(s dataflowState) dataflowState { return s.(constState).clone() },
	)

	for _, blk := range g.Blocks {
		state := outs.inOf(g, blk.ID).(constState)

		for _, in := range blk.Instrs {
			in.Src1 = resolveConst(state, in.Src1)
			in.Src2 = resolveConst(state, in.Src2)
			transferConst(state, in)
		}
	}

	return g.Flatten()
}

// -----------------------------------------------------------------------------
// Copy propagation.

type copyFact struct {
	bottom bool
	source *ir.Operand
}

type copyState map[string]copyFact

func (s copyState) clone() copyState {
	out := make(copyState, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

func (s copyState) equal(o copyState) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}

	return true
}

func meetCopy(acc, pred copyState) {
	for k, pv := range pred {
		av, ok := acc[k]
		if !ok {
			acc[k] = pv
		} else if av.bottom || pv.bottom || av.source.Name != pv.source.Name {
			acc[k] = copyFact{bottom: true}
		}
	}
}

// transferCopy applies one instruction to the copy state.  A plain
// name-to-name assignment records a copy; any other definition of a name
// kills both its own entry and every entry that named it as a source.
func transferCopy(state copyState, in *ir.Instruction) {
	dest := destName(in)
	if dest == "" {
		return
	}

	for k, v := range state {
		if !v.bottom && v.source.Name == dest {
			state[k] = copyFact{bottom: true}
		}
	}

	if in.Op == ir.OpAssign && in.Src1.IsName() {
		source := in.Src1
		if fact, ok := state[source.Name]; ok && !fact.bottom {
			source = fact.source
		}
		state[dest] = copyFact{source: source}
	} else {
		state[dest] = copyFact{bottom: true}
	}
}

func resolveCopy(state copyState, o *ir.Operand) *ir.Operand {
	if o != nil && o.IsName() {
		if fact, ok := state[o.Name]; ok && !fact.bottom {
			return fact.source
		}
	}

	return o
}

// PropagateCopies rewrites uses of a name that provably holds the same
// value as another name to use the original name directly, making the copy
// dead.
func PropagateCopies(body []*ir.Instruction) []*ir.Instruction {
	g := BuildGraph("", body)
	outs := solveForward(g,
		func() dataflowState { return make(copyState) },
		func(acc, pred dataflowState) { meetCopy(acc.(copyState), pred.(copyState)) },
		func(state dataflowState, in *ir.Instruction) { transferCopy(state.(copyState), in) },
		func(a, b dataflowState) bool { return a.(copyState).equal(b.(copyState)) },
		func(s dataflowState) dataflowState { return s.(copyState).clone() },
	)

	for _, blk := range g.Blocks {
		state := outs.inOf(g, blk.ID).(copyState)

		for _, in := range blk.Instrs {
			in.Src1 = resolveCopy(state, in.Src1)
			in.Src2 = resolveCopy(state, in.Src2)
			transferCopy(state, in)
		}
	}

	return g.Flatten()
}

// -----------------------------------------------------------------------------
// Generic forward solver.

type dataflowState interface{}

type forwardOuts struct {
	out   []dataflowState
	fresh func() dataflowState
	meet  func(acc, pred dataflowState)
	clone func(dataflowState) dataflowState
}

// inOf computes the block input as the meet of its predecessors' outputs.
func (f *forwardOuts) inOf(g *Graph, id int) dataflowState {
	blk := g.Blocks[id]
	if len(blk.Preds) == 0 {
		return f.fresh()
	}

	acc := f.clone(f.out[blk.Preds[0]])
	for _, p := range blk.Preds[1:] {
		f.meet(acc, f.out[p])
	}

	return acc
}

// solveForward iterates the transfer function over the reachable blocks in
// reverse post-order until the block outputs stabilize.
func solveForward(
	g *Graph,
	fresh func() dataflowState,
	meet func(acc, pred dataflowState),
	transfer func(state dataflowState, in *ir.Instruction),
	equal func(a, b dataflowState) bool,
	clone func(dataflowState) dataflowState,
) *forwardOuts {
	f := &forwardOuts{
		out:   make([]dataflowState, len(g.Blocks)),
		fresh: fresh,
		meet:  meet,
		clone: clone,
	}
	for i := range f.out {
		f.out[i] = fresh()
	}

	rpo := g.reversePostOrder()

	changed := true
	for changed {
		changed = false

		for _, id := range rpo {
			state := f.inOf(g, id)
			for _, in := range g.Blocks[id].Instrs {
				transfer(state, in)
			}

			if !equal(state, f.out[id]) {
				f.out[id] = state
				changed = true
			}
		}
	}

	return f
}
