package opt

import "toyc/ir"

// Algebraic rewrites computations with known identities into plain
// assignments:
//
//	x + 0 = 0 + x = x
//	x - 0 = x
//	x * 1 = 1 * x = x
//	x * 0 = 0 * x = 0
//	x / 1 = x
//	x - x = 0
func Algebraic(body []*ir.Instruction) []*ir.Instruction {
	for _, in := range body {
		switch in.Op {
		case ir.OpAdd:
			if constIs(in.Src2, 0) {
				assignFrom(in, in.Src1)
			} else if constIs(in.Src1, 0) {
				assignFrom(in, in.Src2)
			}
		case ir.OpSub:
			if constIs(in.Src2, 0) {
				assignFrom(in, in.Src1)
			} else if sameName(in.Src1, in.Src2) {
				assignFrom(in, ir.Const(0))
			}
		case ir.OpMul:
			if constIs(in.Src1, 0) || constIs(in.Src2, 0) {
				assignFrom(in, ir.Const(0))
			} else if constIs(in.Src2, 1) {
				assignFrom(in, in.Src1)
			} else if constIs(in.Src1, 1) {
				assignFrom(in, in.Src2)
			}
		case ir.OpDiv:
			if constIs(in.Src2, 1) {
				assignFrom(in, in.Src1)
			}
		}
	}

	return body
}

func constIs(o *ir.Operand, v int32) bool {
	return o.IsConst() && o.Value == v
}

func sameName(a, b *ir.Operand) bool {
	return a.IsName() && b.IsName() && a.Name == b.Name
}

// assignFrom rewrites the instruction in place into `ASSIGN dest, src`.
func assignFrom(in *ir.Instruction, src *ir.Operand) {
	in.Op = ir.OpAssign
	in.Src1 = src
	in.Src2 = nil
}
