package opt

import "toyc/ir"

// ReduceStrength replaces multiplication by a constant power of two with a
// left shift.  The pass only runs when the target declares shift support,
// so SHL never reaches a backend that cannot encode it.
func ReduceStrength(body []*ir.Instruction) []*ir.Instruction {
	for _, in := range body {
		if in.Op != ir.OpMul {
			continue
		}

		value, other := in.Src1, in.Src2
		if !value.IsConst() {
			value, other = other, value
		}
		if !value.IsConst() || other.IsConst() {
			continue
		}

		if shift, ok := log2(value.Value); ok {
			in.Op = ir.OpShl
			in.Src1 = other
			in.Src2 = ir.Const(shift)
		}
	}

	return body
}

// log2 returns k when v == 2^k for some k >= 1.
func log2(v int32) (int32, bool) {
	if v < 2 || v&(v-1) != 0 {
		return 0, false
	}

	var k int32
	for v > 1 {
		v >>= 1
		k++
	}

	return k, true
}
