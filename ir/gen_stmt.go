package ir

import (
	"fmt"

	"toyc/syntax"
)

// genStmt lowers a single statement.
func (g *Generator) genStmt(stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.Block:
		return g.genBlock(s)
	case *syntax.EmptyStmt:
		return nil
	case *syntax.ExprStmt:
		_, err := g.genExpr(s.X)
		return err
	case *syntax.VarDecl:
		return g.genVarDecl(s)
	case *syntax.Assign:
		return g.genAssign(s)
	case *syntax.If:
		return g.genIf(s)
	case *syntax.While:
		return g.genWhile(s)
	case *syntax.Break:
		if len(g.breakLabels) == 0 {
			return fmt.Errorf("ir: `break` outside of a loop on line %d", s.Line)
		}

		g.emit(OpGoto, g.breakLabels[len(g.breakLabels)-1], nil, nil)
		return nil
	case *syntax.Continue:
		if len(g.continueLabels) == 0 {
			return fmt.Errorf("ir: `continue` outside of a loop on line %d", s.Line)
		}

		g.emit(OpGoto, g.continueLabels[len(g.continueLabels)-1], nil, nil)
		return nil
	case *syntax.Return:
		return g.genReturn(s)
	default:
		return fmt.Errorf("ir: unknown statement %T", stmt)
	}
}

// genVarDecl lowers `int name = init;`: the initializer is evaluated, the
// name is bound to a fresh scoped operand, and the value is stored.
func (g *Generator) genVarDecl(s *syntax.VarDecl) error {
	init, err := g.genExpr(s.Init)
	if err != nil {
		return err
	}

	dest := g.defineVar(s.Name)
	g.emit(OpAssign, dest, init, nil)
	return nil
}

// genAssign lowers `name = value;` against the resolved scoped operand.
func (g *Generator) genAssign(s *syntax.Assign) error {
	value, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}

	dest, err := g.lookupVar(s.Name)
	if err != nil {
		return err
	}

	g.emit(OpAssign, dest, value, nil)
	return nil
}

// genIf lowers a conditional:
//
//	<cond>
//	NOT t, cond
//	IF_GOTO L_else, t
//	<then>
//	GOTO L_end
//	LABEL L_else
//	<else>
//	LABEL L_end
func (g *Generator) genIf(s *syntax.If) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}

	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	inv := g.newTemp()
	g.emit(OpNot, inv, cond, nil)
	g.emit(OpIfGoto, elseLabel, inv, nil)

	if err := g.genStmt(s.Then); err != nil {
		return err
	}

	g.emit(OpGoto, endLabel, nil, nil)
	g.emit(OpLabel, elseLabel, nil, nil)

	if s.Else != nil {
		if err := g.genStmt(s.Else); err != nil {
			return err
		}
	}

	g.emit(OpLabel, endLabel, nil, nil)
	return nil
}

// genWhile lowers a loop:
//
//	LABEL L_top
//	<cond>
//	NOT t, cond
//	IF_GOTO L_exit, t
//	<body>
//	GOTO L_top
//	LABEL L_exit
//
// L_top and L_exit are the targets of `continue` and `break` for the
// duration of the body.
func (g *Generator) genWhile(s *syntax.While) error {
	topLabel := g.newLabel()
	exitLabel := g.newLabel()

	g.emit(OpLabel, topLabel, nil, nil)

	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}

	inv := g.newTemp()
	g.emit(OpNot, inv, cond, nil)
	g.emit(OpIfGoto, exitLabel, inv, nil)

	g.continueLabels = append(g.continueLabels, topLabel)
	g.breakLabels = append(g.breakLabels, exitLabel)

	err = g.genStmt(s.Body)

	g.continueLabels = g.continueLabels[:len(g.continueLabels)-1]
	g.breakLabels = g.breakLabels[:len(g.breakLabels)-1]

	if err != nil {
		return err
	}

	g.emit(OpGoto, topLabel, nil, nil)
	g.emit(OpLabel, exitLabel, nil, nil)
	return nil
}

// genReturn lowers `return;` and `return expr;`.
func (g *Generator) genReturn(s *syntax.Return) error {
	if s.Value == nil {
		g.emit(OpReturn, nil, nil, nil)
		return nil
	}

	value, err := g.genExpr(s.Value)
	if err != nil {
		return err
	}

	g.emit(OpReturn, nil, value, nil)
	return nil
}
