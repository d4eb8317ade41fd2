package ir

import (
	"fmt"

	"toyc/syntax"
)

// binOpTable maps binary operator token kinds to their op codes.  The
// short-circuit operators are handled separately.
var binOpTable = map[int]OpCode{
	syntax.TOK_PLUS:  OpAdd,
	syntax.TOK_MINUS: OpSub,
	syntax.TOK_STAR:  OpMul,
	syntax.TOK_DIV:   OpDiv,
	syntax.TOK_MOD:   OpMod,
	syntax.TOK_LT:    OpLt,
	syntax.TOK_GT:    OpGt,
	syntax.TOK_LTEQ:  OpLe,
	syntax.TOK_GTEQ:  OpGe,
	syntax.TOK_EQ:    OpEq,
	syntax.TOK_NEQ:   OpNe,
}

// genExpr lowers an expression and returns the operand holding its value.
func (g *Generator) genExpr(expr syntax.Expr) (*Operand, error) {
	switch e := expr.(type) {
	case *syntax.NumberLit:
		return Const(e.Value), nil
	case *syntax.VarRef:
		return g.lookupVar(e.Name)
	case *syntax.Unary:
		return g.genUnary(e)
	case *syntax.Binary:
		return g.genBinary(e)
	case *syntax.Call:
		return g.genCall(e)
	default:
		return nil, fmt.Errorf("ir: unknown expression %T", expr)
	}
}

// genUnary lowers `-x` to NEG and `!x` to NOT; unary `+` is the identity.
func (g *Generator) genUnary(e *syntax.Unary) (*Operand, error) {
	operand, err := g.genExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case syntax.TOK_PLUS:
		return operand, nil
	case syntax.TOK_MINUS:
		t := g.newTemp()
		g.emit(OpNeg, t, operand, nil)
		return t, nil
	case syntax.TOK_NOT:
		t := g.newTemp()
		g.emit(OpNot, t, operand, nil)
		return t, nil
	default:
		return nil, fmt.Errorf("ir: unknown unary operator %d", e.Op)
	}
}

// genBinary lowers a binary operator application.  `&&` and `||` lower to
// short-circuit branch structures; everything else evaluates both sides and
// emits a single three-address computation.
func (g *Generator) genBinary(e *syntax.Binary) (*Operand, error) {
	switch e.Op {
	case syntax.TOK_LAND:
		return g.genShortCircuitAnd(e)
	case syntax.TOK_LOR:
		return g.genShortCircuitOr(e)
	}

	op, ok := binOpTable[e.Op]
	if !ok {
		return nil, fmt.Errorf("ir: unknown binary operator %d", e.Op)
	}

	lhs, err := g.genExpr(e.Lhs)
	if err != nil {
		return nil, err
	}

	rhs, err := g.genExpr(e.Rhs)
	if err != nil {
		return nil, err
	}

	t := g.newTemp()
	g.emit(op, t, lhs, rhs)
	return t, nil
}

// genShortCircuitAnd lowers `a && b` so that b is never evaluated when a is
// falsy:
//
//	<lhs>
//	NOT t, lhs
//	IF_GOTO L_false, t
//	<rhs>
//	ASSIGN r, rhs
//	GOTO L_end
//	LABEL L_false
//	ASSIGN r, 0
//	LABEL L_end
func (g *Generator) genShortCircuitAnd(e *syntax.Binary) (*Operand, error) {
	lhs, err := g.genExpr(e.Lhs)
	if err != nil {
		return nil, err
	}

	result := g.newTemp()
	falseLabel := g.newLabel()
	endLabel := g.newLabel()

	inv := g.newTemp()
	g.emit(OpNot, inv, lhs, nil)
	g.emit(OpIfGoto, falseLabel, inv, nil)

	rhs, err := g.genExpr(e.Rhs)
	if err != nil {
		return nil, err
	}

	g.emit(OpAssign, result, rhs, nil)
	g.emit(OpGoto, endLabel, nil, nil)
	g.emit(OpLabel, falseLabel, nil, nil)
	g.emit(OpAssign, result, Const(0), nil)
	g.emit(OpLabel, endLabel, nil, nil)

	return result, nil
}

// genShortCircuitOr lowers `a || b` with the inverted branch: b is never
// evaluated when a is truthy.
func (g *Generator) genShortCircuitOr(e *syntax.Binary) (*Operand, error) {
	lhs, err := g.genExpr(e.Lhs)
	if err != nil {
		return nil, err
	}

	result := g.newTemp()
	trueLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(OpIfGoto, trueLabel, lhs, nil)

	rhs, err := g.genExpr(e.Rhs)
	if err != nil {
		return nil, err
	}

	g.emit(OpAssign, result, rhs, nil)
	g.emit(OpGoto, endLabel, nil, nil)
	g.emit(OpLabel, trueLabel, nil, nil)
	g.emit(OpAssign, result, Const(1), nil)
	g.emit(OpLabel, endLabel, nil, nil)

	return result, nil
}

// genCall lowers `f(args)`: arguments are evaluated left-to-right, passed
// with PARAM in order, and the call result lands in a fresh temporary.
func (g *Generator) genCall(e *syntax.Call) (*Operand, error) {
	args := make([]*Operand, 0, len(e.Args))
	for _, arg := range e.Args {
		a, err := g.genExpr(arg)
		if err != nil {
			return nil, err
		}

		args = append(args, a)
	}

	for _, a := range args {
		g.emit(OpParam, nil, a, nil)
	}

	t := g.newTemp()
	g.emit(OpCall, t, Func(e.Callee), nil)
	g.usedFuncs[e.Callee] = true
	return t, nil
}
