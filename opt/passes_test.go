package opt

import (
	"strings"
	"testing"

	"toyc/ir"
)

func dump(instrs []*ir.Instruction) string {
	var sb strings.Builder
	ir.WriteDump(&sb, instrs)
	return sb.String()
}

func countOp(instrs []*ir.Instruction, op ir.OpCode) int {
	n := 0
	for _, in := range instrs {
		if in.Op == op {
			n++
		}
	}

	return n
}

// -----------------------------------------------------------------------------

func TestFold(t *testing.T) {
	tests := []struct {
		in   *ir.Instruction
		want string
	}{
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Const(2), Src2: ir.Const(3)}, "ASSIGN t1, 5"},
		{&ir.Instruction{Op: ir.OpSub, Dest: ir.Temp(1), Src1: ir.Const(2), Src2: ir.Const(3)}, "ASSIGN t1, -1"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: ir.Const(4), Src2: ir.Const(5)}, "ASSIGN t1, 20"},
		{&ir.Instruction{Op: ir.OpDiv, Dest: ir.Temp(1), Src1: ir.Const(7), Src2: ir.Const(2)}, "ASSIGN t1, 3"},
		{&ir.Instruction{Op: ir.OpMod, Dest: ir.Temp(1), Src1: ir.Const(7), Src2: ir.Const(2)}, "ASSIGN t1, 1"},
		{&ir.Instruction{Op: ir.OpNeg, Dest: ir.Temp(1), Src1: ir.Const(5)}, "ASSIGN t1, -5"},
		{&ir.Instruction{Op: ir.OpNot, Dest: ir.Temp(1), Src1: ir.Const(0)}, "ASSIGN t1, 1"},
		{&ir.Instruction{Op: ir.OpNot, Dest: ir.Temp(1), Src1: ir.Const(7)}, "ASSIGN t1, 0"},
		{&ir.Instruction{Op: ir.OpLt, Dest: ir.Temp(1), Src1: ir.Const(1), Src2: ir.Const(2)}, "ASSIGN t1, 1"},
		{&ir.Instruction{Op: ir.OpAnd, Dest: ir.Temp(1), Src1: ir.Const(3), Src2: ir.Const(0)}, "ASSIGN t1, 0"},
		{&ir.Instruction{Op: ir.OpOr, Dest: ir.Temp(1), Src1: ir.Const(0), Src2: ir.Const(9)}, "ASSIGN t1, 1"},

		// Two's-complement 32-bit wraparound.
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Const(2147483647), Src2: ir.Const(1)}, "ASSIGN t1, -2147483648"},

		// Division and modulo by zero stay untouched.
		{&ir.Instruction{Op: ir.OpDiv, Dest: ir.Temp(1), Src1: ir.Const(7), Src2: ir.Const(0)}, "DIV t1, 7, 0"},
		{&ir.Instruction{Op: ir.OpMod, Dest: ir.Temp(1), Src1: ir.Const(7), Src2: ir.Const(0)}, "MOD t1, 7, 0"},

		// Non-constant operands stay untouched.
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Var("x"), Src2: ir.Const(3)}, "ADD t1, x, 3"},
	}

	for _, test := range tests {
		got := Fold([]*ir.Instruction{test.in})
		if got[0].String() != test.want {
			t.Errorf("Fold = %q, want %q", got[0].String(), test.want)
		}
	}
}

func TestFoldIdempotent(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Const(2), Src2: ir.Const(3)},
		{Op: ir.OpMul, Dest: ir.Temp(2), Src1: ir.Var("x"), Src2: ir.Const(3)},
	}

	once := dump(Fold(body))
	twice := dump(Fold(body))
	if once != twice {
		t.Errorf("second fold changed the body:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func TestPropagateConstants(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpAssign, Dest: ir.Temp(1), Src1: ir.Const(5)},
		{Op: ir.OpAdd, Dest: ir.Temp(2), Src1: ir.Temp(1), Src2: ir.Var("x")},
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L1"), Src1: ir.Temp(1)},
		{Op: ir.OpParam, Src1: ir.Temp(1)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpReturn, Src1: ir.Temp(1)},
	}

	got := dump(PropagateConstants(body))
	want := "ASSIGN t1, 5\n" +
		"ADD t2, 5, x\n" +
		"IF_GOTO L1, 5\n" +
		"PARAM 5\n" +
		"LABEL L1\n" +
		"RETURN 5\n"
	if got != want {
		t.Errorf("mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPropagateConstantsMeet(t *testing.T) {
	// x is 1 on one path and 2 on the other: no substitution after the
	// join.  y is 7 on both paths and substitutes.
	x, y := ir.Var("x"), ir.Var("y")
	body := []*ir.Instruction{
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L1"), Src1: ir.Var("c")},
		{Op: ir.OpAssign, Dest: x, Src1: ir.Const(1)},
		{Op: ir.OpAssign, Dest: y, Src1: ir.Const(7)},
		{Op: ir.OpGoto, Dest: ir.NamedLabel("L2")},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpAssign, Dest: x, Src1: ir.Const(2)},
		{Op: ir.OpAssign, Dest: y, Src1: ir.Const(7)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L2")},
		{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: x, Src2: y},
		{Op: ir.OpReturn, Src1: ir.Temp(1)},
	}

	got := PropagateConstants(body)

	var add *ir.Instruction
	for _, in := range got {
		if in.Op == ir.OpAdd {
			add = in
		}
	}

	if add.Src1.IsConst() {
		t.Errorf("x substituted to %s despite disagreeing paths", add.Src1)
	}
	if !add.Src2.IsConst() || add.Src2.Value != 7 {
		t.Errorf("y = %s, want the agreed constant 7", add.Src2)
	}
}

func TestPropagateCopies(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpAssign, Dest: ir.Var("a"), Src1: ir.Var("x")},
		{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Var("a"), Src2: ir.Const(1)},
		{Op: ir.OpAssign, Dest: ir.Var("b"), Src1: ir.Var("a")},
		{Op: ir.OpReturn, Src1: ir.Var("b")},
	}

	got := dump(PropagateCopies(body))
	want := "ASSIGN a, x\n" +
		"ADD t1, x, 1\n" +
		"ASSIGN b, x\n" +
		"RETURN x\n"
	if got != want {
		t.Errorf("mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPropagateCopiesKilledByRedefinition(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpAssign, Dest: ir.Var("a"), Src1: ir.Var("x")},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(9)},
		{Op: ir.OpReturn, Src1: ir.Var("a")},
	}

	got := PropagateCopies(body)
	if got[2].Src1.Name != "a" {
		t.Errorf("RETURN uses %s; the copy source was redefined", got[2].Src1)
	}
}

func TestAlgebraic(t *testing.T) {
	x := ir.Var("x")
	tests := []struct {
		in   *ir.Instruction
		want string
	}{
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(0)}, "ASSIGN t1, x"},
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: ir.Const(0), Src2: x}, "ASSIGN t1, x"},
		{&ir.Instruction{Op: ir.OpSub, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(0)}, "ASSIGN t1, x"},
		{&ir.Instruction{Op: ir.OpSub, Dest: ir.Temp(1), Src1: x, Src2: x}, "ASSIGN t1, 0"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(1)}, "ASSIGN t1, x"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(0)}, "ASSIGN t1, 0"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: ir.Const(0), Src2: x}, "ASSIGN t1, 0"},
		{&ir.Instruction{Op: ir.OpDiv, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(1)}, "ASSIGN t1, x"},

		// No identity applies.
		{&ir.Instruction{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(2)}, "ADD t1, x, 2"},
		{&ir.Instruction{Op: ir.OpDiv, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(0)}, "DIV t1, x, 0"},
	}

	for _, test := range tests {
		got := Algebraic([]*ir.Instruction{test.in})
		if got[0].String() != test.want {
			t.Errorf("Algebraic = %q, want %q", got[0].String(), test.want)
		}
	}
}

func TestReduceStrength(t *testing.T) {
	x := ir.Var("x")
	tests := []struct {
		in   *ir.Instruction
		want string
	}{
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(8)}, "SHL t1, x, 3"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: ir.Const(4), Src2: x}, "SHL t1, x, 2"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(6)}, "MUL t1, x, 6"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: x, Src2: ir.Const(1)}, "MUL t1, x, 1"},
		{&ir.Instruction{Op: ir.OpMul, Dest: ir.Temp(1), Src1: ir.Const(2), Src2: ir.Const(4)}, "MUL t1, 2, 4"},
	}

	for _, test := range tests {
		got := ReduceStrength([]*ir.Instruction{test.in})
		if got[0].String() != test.want {
			t.Errorf("ReduceStrength = %q, want %q", got[0].String(), test.want)
		}
	}
}

func TestEliminateCommonSubexprs(t *testing.T) {
	a, b := ir.Var("a"), ir.Var("b")
	body := []*ir.Instruction{
		{Op: ir.OpMul, Dest: ir.Temp(1), Src1: a, Src2: b},
		{Op: ir.OpMul, Dest: ir.Temp(2), Src1: a, Src2: b},
		{Op: ir.OpAdd, Dest: ir.Temp(3), Src1: ir.Temp(1), Src2: ir.Temp(2)},
	}

	got := EliminateCommonSubexprs(body)
	if got[1].String() != "ASSIGN t2, t1" {
		t.Errorf("repeat = %q, want ASSIGN t2, t1", got[1].String())
	}
}

func TestCSECommutativeCanonicalization(t *testing.T) {
	a, b := ir.Var("a"), ir.Var("b")
	body := []*ir.Instruction{
		{Op: ir.OpAdd, Dest: ir.Temp(1), Src1: a, Src2: b},
		{Op: ir.OpAdd, Dest: ir.Temp(2), Src1: b, Src2: a},
		{Op: ir.OpSub, Dest: ir.Temp(3), Src1: a, Src2: b},
		{Op: ir.OpSub, Dest: ir.Temp(4), Src1: b, Src2: a},
	}

	got := EliminateCommonSubexprs(body)
	if got[1].String() != "ASSIGN t2, t1" {
		t.Errorf("commuted add = %q, want ASSIGN t2, t1", got[1].String())
	}
	if got[3].Op != ir.OpSub {
		t.Errorf("commuted sub rewritten to %q; SUB is not commutative", got[3].String())
	}
}

func TestCSEKilledByRedefinition(t *testing.T) {
	a, b := ir.Var("a"), ir.Var("b")
	body := []*ir.Instruction{
		{Op: ir.OpMul, Dest: ir.Temp(1), Src1: a, Src2: b},
		{Op: ir.OpAssign, Dest: a, Src1: ir.Const(9)},
		{Op: ir.OpMul, Dest: ir.Temp(2), Src1: a, Src2: b},
	}

	got := EliminateCommonSubexprs(body)
	if got[2].Op != ir.OpMul {
		t.Errorf("second MUL rewritten to %q despite operand redefinition", got[2].String())
	}
}

func TestCSELocalOnly(t *testing.T) {
	// The same expression in different blocks is not eliminated.
	a, b := ir.Var("a"), ir.Var("b")
	body := []*ir.Instruction{
		{Op: ir.OpMul, Dest: ir.Temp(1), Src1: a, Src2: b},
		{Op: ir.OpGoto, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpMul, Dest: ir.Temp(2), Src1: a, Src2: b},
	}

	got := EliminateCommonSubexprs(body)
	if got[3].Op != ir.OpMul {
		t.Errorf("cross-block expression rewritten to %q", got[3].String())
	}
}

func TestEliminateDeadCode(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpAssign, Dest: ir.Temp(1), Src1: ir.Const(5)},
		{Op: ir.OpAdd, Dest: ir.Temp(2), Src1: ir.Temp(1), Src2: ir.Const(1)},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(3)},
		{Op: ir.OpReturn, Src1: ir.Var("x")},
	}

	got := dump(EliminateDeadCode(body))
	want := "ASSIGN x, 3\nRETURN x\n"
	if got != want {
		t.Errorf("mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDeadCodeKeepsCalls(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpParam, Src1: ir.Const(1)},
		{Op: ir.OpCall, Dest: ir.Temp(1), Src1: ir.Func("f")},
		{Op: ir.OpReturn, Src1: ir.Const(0)},
	}

	got := EliminateDeadCode(body)
	if countOp(got, ir.OpCall) != 1 || countOp(got, ir.OpParam) != 1 {
		t.Errorf("call sequence removed despite side effects:\n%s", dump(got))
	}
}

func TestDeadCodeLoopCarried(t *testing.T) {
	// i is only used to compute itself and the loop condition: the
	// condition keeps it live, so nothing may be removed.
	got := EliminateDeadCode(loopBody())
	if len(got) != len(loopBody()) {
		t.Errorf("removed loop-carried instructions:\n%s", dump(got))
	}
}

func TestHoistLoopInvariants(t *testing.T) {
	// t4 = n * n is invariant; the preheader must execute it once, before
	// the header.
	i, n := ir.Var("i"), ir.Var("n")
	body := []*ir.Instruction{
		{Op: ir.OpAssign, Dest: i, Src1: ir.Const(0)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLt, Dest: ir.Temp(1), Src1: i, Src2: ir.Const(10)},
		{Op: ir.OpNot, Dest: ir.Temp(2), Src1: ir.Temp(1)},
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L2"), Src1: ir.Temp(2)},
		{Op: ir.OpMul, Dest: ir.Temp(4), Src1: n, Src2: n},
		{Op: ir.OpAdd, Dest: ir.Temp(3), Src1: i, Src2: ir.Temp(4)},
		{Op: ir.OpAssign, Dest: i, Src1: ir.Temp(3)},
		{Op: ir.OpGoto, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L2")},
		{Op: ir.OpReturn, Src1: i},
	}

	got := HoistLoopInvariants(body)

	mul, header := -1, -1
	for idx, in := range got {
		if in.Op == ir.OpMul {
			mul = idx
		}
		if in.Op == ir.OpLabel && in.Dest.Name == "L1" {
			header = idx
		}
	}

	if mul == -1 {
		t.Fatal("invariant MUL disappeared")
	}
	if mul > header {
		t.Errorf("MUL at %d still inside the loop (header at %d)", mul, header)
	}
	if countOp(got, ir.OpMul) != 1 {
		t.Errorf("MUL duplicated:\n%s", dump(got))
	}
}

func TestHoistLeavesVariantCode(t *testing.T) {
	got := HoistLoopInvariants(loopBody())

	// ADD t3, i, 1 depends on the loop-carried i and must stay put.
	if dump(got) != dump(loopBody()) {
		t.Errorf("variant code moved:\n%s", dump(got))
	}
}

func TestSimplifyControlFlowConstBranch(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L1"), Src1: ir.Const(1)},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(2)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpReturn, Src1: ir.Const(0)},
	}

	got := dump(SimplifyControlFlow(body))

	// A taken constant branch skips the assignment; the jump to the very
	// next label then collapses away entirely.
	if strings.Contains(got, "ASSIGN") {
		t.Errorf("skipped block survived:\n%s", got)
	}
	if strings.Contains(got, "IF_GOTO") || strings.Contains(got, "GOTO") {
		t.Errorf("constant branch not fully collapsed:\n%s", got)
	}
}

func TestSimplifyControlFlowFalseBranch(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L1"), Src1: ir.Const(0)},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(2)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpReturn, Src1: ir.Var("x")},
	}

	got := dump(SimplifyControlFlow(body))
	if strings.Contains(got, "IF_GOTO") {
		t.Errorf("never-taken branch survived:\n%s", got)
	}
	if !strings.Contains(got, "ASSIGN x, 2") {
		t.Errorf("fall-through code removed:\n%s", got)
	}
}

func TestSimplifyControlFlowFusesLabels(t *testing.T) {
	body := []*ir.Instruction{
		{Op: ir.OpIfGoto, Dest: ir.NamedLabel("L2"), Src1: ir.Var("c")},
		{Op: ir.OpAssign, Dest: ir.Var("x"), Src1: ir.Const(1)},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L1")},
		{Op: ir.OpLabel, Dest: ir.NamedLabel("L2")},
		{Op: ir.OpReturn, Src1: ir.Var("x")},
	}

	got := SimplifyControlFlow(body)

	if countOp(got, ir.OpLabel) != 1 {
		t.Fatalf("adjacent labels not fused:\n%s", dump(got))
	}
	if got[0].Dest.Name != "L1" {
		t.Errorf("jump retargeted to %s, want the fused label L1", got[0].Dest.Name)
	}
}
