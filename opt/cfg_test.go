package opt

import (
	"testing"

	"toyc/ir"
)

// loopBody is the canonical counting-loop body used across the CFG tests:
//
//	0: ASSIGN i, 0        block 0
//	1: LABEL L1           block 1 (header)
//	2: LT t1, i, 10
//	3: NOT t2, t1
//	4: IF_GOTO L2, t2
//	5: ADD t3, i, 1       block 2 (body, back edge)
//	6: ASSIGN i, t3
//	7: GOTO L1
//	8: LABEL L2           block 3 (exit)
//	9: RETURN i
func loopBody() []*ir.Instruction {
	i := ir.Var("i")
	return []*ir.Instruction{
		{Op: ir.OpAssign, Dest: i, Src1: ir.Const(0)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLt, Dest: ir.Temp(1), Src1: i, Src2: ir.Const(10)},
		{Op: ir.OpNot, Dest: ir.Temp(2), Src1: ir.Temp(1)},
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L2"), Src1: ir.Temp(2)},
		{Op: ir.OpAdd, Dest: ir.Temp(3), Src1: i, Src2: ir.Const(1)},
		{Op: ir.OpAssign, Dest: i, Src1: ir.Temp(3)},
		{Op: ir.OpGoto, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L2")},
		{Op: ir.OpReturn, Src1: i},
	}
}

func TestBuildGraphBlocks(t *testing.T) {
	g := BuildGraph("main", loopBody())

	if len(g.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(g.Blocks))
	}

	wantLens := []int{1, 4, 3, 2}
	for i, want := range wantLens {
		if len(g.Blocks[i].Instrs) != want {
			t.Errorf("block %d has %d instructions, want %d", i, len(g.Blocks[i].Instrs), want)
		}
	}

	if g.Blocks[1].Label != "L1" || g.Blocks[3].Label != "L2" {
		t.Errorf("block labels = %q, %q, want L1, L2", g.Blocks[1].Label, g.Blocks[3].Label)
	}
}

func TestBuildGraphEdges(t *testing.T) {
	g := BuildGraph("main", loopBody())

	wantSuccs := [][]int{{1}, {3, 2}, {1}, nil}
	for i, want := range wantSuccs {
		got := g.Blocks[i].Succs
		if len(got) != len(want) {
			t.Errorf("block %d Succs = %v, want %v", i, got, want)
			continue
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("block %d Succs = %v, want %v", i, got, want)
			}
		}
	}

	if len(g.Blocks[1].Preds) != 2 {
		t.Errorf("header Preds = %v, want entry and back edge", g.Blocks[1].Preds)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	body := loopBody()
	got := BuildGraph("main", body).Flatten()

	if len(got) != len(body) {
		t.Fatalf("flattened to %d instructions, want %d", len(got), len(body))
	}
	for i := range body {
		if got[i] != body[i] {
			t.Errorf("instruction %d reordered", i)
		}
	}
}

func TestDominators(t *testing.T) {
	g := BuildGraph("main", loopBody())
	idom := g.Dominators()

	want := []int{-1, 0, 1, 1}
	for i := range want {
		if idom[i] != want[i] {
			t.Errorf("idom[%d] = %d, want %d", i, idom[i], want[i])
		}
	}

	if !dominates(idom, 1, 2) {
		t.Error("header must dominate the loop body")
	}
	if dominates(idom, 2, 3) {
		t.Error("loop body must not dominate the exit")
	}
}

func TestNaturalLoops(t *testing.T) {
	g := BuildGraph("main", loopBody())
	loops := g.NaturalLoops()

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}

	loop := loops[0]
	if loop.Header != 1 || loop.Tail != 2 {
		t.Errorf("loop header/tail = %d/%d, want 1/2", loop.Header, loop.Tail)
	}
	if !loop.Blocks[1] || !loop.Blocks[2] || loop.Blocks[0] || loop.Blocks[3] {
		t.Errorf("loop blocks = %v, want {1, 2}", loop.Blocks)
	}
}

func TestReachable(t *testing.T) {
	// Code after an unconditional jump over it is unreachable.
	body := []*ir.Instruction{
		{Op: ir.OpGoto, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(1)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpReturn, Src1: ir.Const(0)},
	}

	g := BuildGraph("main", body)
	reachable := g.Reachable()

	if !reachable[0] || !reachable[2] {
		t.Error("entry and jump target must be reachable")
	}
	if reachable[1] {
		t.Error("skipped block reported reachable")
	}
}
