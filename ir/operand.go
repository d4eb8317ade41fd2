package ir

import "strconv"

// OperandKind distinguishes the kinds of values an instruction can
// reference.
type OperandKind int

const (
	OperandVar   OperandKind = iota // a scoped source variable or parameter
	OperandTemp                     // a compiler-generated temporary (tN)
	OperandLabel                    // a jump target (LN)
	OperandConst                    // an integer literal
	OperandFunc                     // a function name
)

// Operand is a single value referenced by an IR instruction.
type Operand struct {
	Kind OperandKind

	// Name is the textual name for variables, temporaries, labels, and
	// functions.
	Name string

	// Value is the literal value of a constant operand.
	Value int32
}

// Var creates a variable operand.
func Var(name string) *Operand {
	return &Operand{Kind: OperandVar, Name: name}
}

// Temp creates a temporary operand tN.
func Temp(n int) *Operand {
	return &Operand{Kind: OperandTemp, Name: "t" + strconv.Itoa(n)}
}

// Label creates a label operand LN.
func Label(n int) *Operand {
	return &Operand{Kind: OperandLabel, Name: "L" + strconv.Itoa(n)}
}

// NamedLabel creates a label operand with an explicit name.
func NamedLabel(name string) *Operand {
	return &Operand{Kind: OperandLabel, Name: name}
}

// Const creates a constant operand.
func Const(v int32) *Operand {
	return &Operand{Kind: OperandConst, Value: v}
}

// Func creates a function-name operand.
func Func(name string) *Operand {
	return &Operand{Kind: OperandFunc, Name: name}
}

// IsConst returns whether the operand is a constant (nil-safe).
func (o *Operand) IsConst() bool {
	return o != nil && o.Kind == OperandConst
}

// IsName returns whether the operand names a variable or temporary
// (nil-safe).
func (o *Operand) IsName() bool {
	return o != nil && (o.Kind == OperandVar || o.Kind == OperandTemp)
}

// String returns the dump spelling of the operand.
func (o *Operand) String() string {
	if o.Kind == OperandConst {
		return strconv.FormatInt(int64(o.Value), 10)
	}

	return o.Name
}
