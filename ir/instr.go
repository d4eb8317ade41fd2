package ir

import (
	"fmt"
	"io"
	"strings"
)

// OpCode is the integer code designating an instruction.
type OpCode int

// Enumeration of instruction op codes.
const (
	// Arithmetic.
	OpAdd OpCode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	// Logical and relational.
	OpNot
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr

	// Shift (emitted by strength reduction only, and only for targets that
	// support it).
	OpShl

	// Control flow.
	OpGoto
	OpIfGoto
	OpLabel

	// Call sequence.
	OpParam
	OpCall
	OpReturn

	// Data movement.
	OpAssign

	// Function delimiters.
	OpFunctionBegin
	OpFunctionEnd
)

// displayTable converts an op code into its dump spelling.
var displayTable = [...]string{
	OpAdd: "ADD",
	OpSub: "SUB",
	OpMul: "MUL",
	OpDiv: "DIV",
	OpMod: "MOD",
	OpNeg: "NEG",

	OpNot: "NOT",
	OpLt:  "LT",
	OpGt:  "GT",
	OpLe:  "LE",
	OpGe:  "GE",
	OpEq:  "EQ",
	OpNe:  "NE",
	OpAnd: "AND",
	OpOr:  "OR",

	OpShl: "SHL",

	OpGoto:   "GOTO",
	OpIfGoto: "IF_GOTO",
	OpLabel:  "LABEL",

	OpParam:  "PARAM",
	OpCall:   "CALL",
	OpReturn: "RETURN",

	OpAssign: "ASSIGN",

	OpFunctionBegin: "FUNCTION_BEGIN",
	OpFunctionEnd:   "FUNCTION_END",
}

// String returns the dump spelling of the op code.
func (op OpCode) String() string {
	return displayTable[op]
}

// -----------------------------------------------------------------------------

// Instruction is a single three-address instruction.  Unused operand slots
// are nil.  For jumps the target label is stored in Dest; IF_GOTO branches
// to Dest when Src1 is nonzero.
type Instruction struct {
	Op   OpCode
	Dest *Operand
	Src1 *Operand
	Src2 *Operand
}

// HasSideEffects returns whether the instruction must be preserved
// regardless of whether its destination is used.
func (in *Instruction) HasSideEffects() bool {
	switch in.Op {
	case OpCall, OpParam, OpReturn, OpGoto, OpIfGoto, OpLabel,
		OpFunctionBegin, OpFunctionEnd:
		return true
	default:
		return false
	}
}

// IsComputation returns whether the instruction is a pure binary or unary
// computation producing Dest from Src1 (and possibly Src2).
func (in *Instruction) IsComputation() bool {
	switch in.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg,
		OpNot, OpLt, OpGt, OpLe, OpGe, OpEq, OpNe, OpAnd, OpOr, OpShl:
		return true
	default:
		return false
	}
}

// IsCommutative returns whether swapping Src1 and Src2 preserves meaning.
func (in *Instruction) IsCommutative() bool {
	switch in.Op {
	case OpAdd, OpMul, OpEq, OpNe, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// String renders the instruction in the dump format: the op code followed
// by the present operands in dest, src1, src2 order.
func (in *Instruction) String() string {
	sb := strings.Builder{}
	sb.WriteString(in.Op.String())

	var operands []string
	for _, o := range []*Operand{in.Dest, in.Src1, in.Src2} {
		if o != nil {
			operands = append(operands, o.String())
		}
	}

	if len(operands) > 0 {
		sb.WriteRune(' ')
		sb.WriteString(strings.Join(operands, ", "))
	}

	return sb.String()
}

// WriteDump writes the IR dump, one instruction per line.
func WriteDump(w io.Writer, instrs []*Instruction) {
	for _, in := range instrs {
		fmt.Fprintln(w, in.String())
	}
}
