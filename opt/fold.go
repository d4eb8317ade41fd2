package opt

import "toyc/ir"

// Fold replaces every pure computation whose operands are all constants
// with an assignment of the evaluated result.  Arithmetic wraps in 32 bits;
// division or modulo by a constant zero is left untouched.
func Fold(body []*ir.Instruction) []*ir.Instruction {
	for _, in := range body {
		if !in.IsComputation() {
			continue
		}

		if value, ok := evalConst(in); ok {
			in.Op = ir.OpAssign
			in.Src1 = ir.Const(value)
			in.Src2 = nil
		}
	}

	return body
}

// evalConst evaluates a pure computation over constant operands.
func evalConst(in *ir.Instruction) (int32, bool) {
	if in.Src1 == nil || !in.Src1.IsConst() {
		return 0, false
	}
	a := in.Src1.Value

	// Unary computations carry no second operand.
	switch in.Op {
	case ir.OpNeg:
		return -a, true
	case ir.OpNot:
		return boolToInt(a == 0), true
	}

	if in.Src2 == nil || !in.Src2.IsConst() {
		return 0, false
	}
	b := in.Src2.Value

	switch in.Op {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ir.OpShl:
		if b < 0 || b > 31 {
			return 0, false
		}
		return a << uint(b), true
	case ir.OpLt:
		return boolToInt(a < b), true
	case ir.OpGt:
		return boolToInt(a > b), true
	case ir.OpLe:
		return boolToInt(a <= b), true
	case ir.OpGe:
		return boolToInt(a >= b), true
	case ir.OpEq:
		return boolToInt(a == b), true
	case ir.OpNe:
		return boolToInt(a != b), true
	case ir.OpAnd:
		return boolToInt(a != 0 && b != 0), true
	case ir.OpOr:
		return boolToInt(a != 0 || b != 0), true
	}

	return 0, false
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}

	return 0
}
