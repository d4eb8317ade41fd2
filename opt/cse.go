package opt

import (
	"strconv"

	"toyc/ir"
)

// availExpr is a computation whose value is still held by holder.
type availExpr struct {
	holder   *ir.Operand
	operands []string
}

// EliminateCommonSubexprs removes repeated computations within each basic
// block.  A computation is keyed by its op code and operand spellings,
// canonicalized for commutative ops; a repeat becomes an assignment from
// the earlier result.  Redefining any name kills every expression that
// reads it or is held by it.
func EliminateCommonSubexprs(body []*ir.Instruction) []*ir.Instruction {
	g := BuildGraph("", body)

	for _, blk := range g.Blocks {
		avail := make(map[string]availExpr)

		for _, in := range blk.Instrs {
			if in.IsComputation() && in.Dest.IsName() {
				key, names := exprKey(in)

				if prev, ok := avail[key]; ok {
					assignFrom(in, prev.holder)
				} else {
					killName(avail, in.Dest.Name)
					avail[key] = availExpr{holder: in.Dest, operands: names}
					continue
				}
			}

			if dest := destName(in); dest != "" {
				killName(avail, dest)
			}
		}
	}

	return g.Flatten()
}

// exprKey builds the lookup key and the list of operand names the
// expression depends on.
func exprKey(in *ir.Instruction) (string, []string) {
	k1 := operandKey(in.Src1)
	k2 := operandKey(in.Src2)
	if in.IsCommutative() && k2 < k1 {
		k1, k2 = k2, k1
	}

	var names []string
	if in.Src1.IsName() {
		names = append(names, in.Src1.Name)
	}
	if in.Src2.IsName() {
		names = append(names, in.Src2.Name)
	}

	return in.Op.String() + "|" + k1 + "|" + k2, names
}

func operandKey(o *ir.Operand) string {
	switch {
	case o == nil:
		return ""
	case o.IsConst():
		return "c" + strconv.FormatInt(int64(o.Value), 10)
	default:
		return "n" + o.Name
	}
}

// killName drops every available expression that reads or is held by the
// given name.
func killName(avail map[string]availExpr, name string) {
	for key, expr := range avail {
		if expr.holder.Name == name {
			delete(avail, key)
			continue
		}

		for _, operand := range expr.operands {
			if operand == name {
				delete(avail, key)
				break
			}
		}
	}
}
