package ir

import (
	"fmt"
	"sort"
	"strconv"

	"toyc/sem"
	"toyc/syntax"
)

// Generator lowers an accepted AST into a linear three-address instruction
// stream.  Expression results are threaded through the recursive walk as
// return values; temporaries are named tN and labels LN with monotone
// counters.  A generator is used for exactly one compilation.
type Generator struct {
	instrs []*Instruction

	// scopes maps source names to their scoped IR operands, innermost last.
	// Scope IDs increase monotonically so that the mangled operand name
	// `name_scopeK` is unique across the whole unit.
	scopes      []*genScope
	nextScopeID int

	tempCount  int
	labelCount int

	// breakLabels and continueLabels are the targets of `break` and
	// `continue` for the enclosing loops, innermost last.
	breakLabels    []*Operand
	continueLabels []*Operand

	// usedFuncs records every callee referenced by the unit.
	usedFuncs map[string]bool

	// curFunc is the function currently being lowered.
	curFunc *syntax.FuncDef
}

type genScope struct {
	id   int
	vars map[string]*Operand
}

// NewGenerator creates a generator with an open global scope.
func NewGenerator() *Generator {
	g := &Generator{usedFuncs: make(map[string]bool)}
	g.enterScope()
	return g
}

// Generate lowers the whole compilation unit and returns the instruction
// stream.  It fails only on structural violations that parsing cannot
// produce on an accepted unit (eg. `break` outside a loop).
func (g *Generator) Generate(unit *syntax.CompUnit) ([]*Instruction, error) {
	for _, fn := range unit.Funcs {
		if err := g.genFuncDef(fn); err != nil {
			return nil, err
		}
	}

	return g.instrs, nil
}

// UsedFunctions returns the sorted set of called function names.
func (g *Generator) UsedFunctions() []string {
	names := make([]string, 0, len(g.usedFuncs))
	for name := range g.usedFuncs {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------

// genFuncDef lowers a single function definition.  Every function is
// bracketed by FUNCTION_BEGIN/FUNCTION_END; if some path through the body
// can fall off the end, a default return is appended (`RETURN 0` for `int`,
// bare `RETURN` for `void`).
func (g *Generator) genFuncDef(fn *syntax.FuncDef) error {
	g.curFunc = fn
	g.emit(OpFunctionBegin, Func(fn.Name), nil, nil)

	g.enterScope()
	for _, param := range fn.Params {
		g.defineVar(param.Name)
	}

	if err := g.genBlock(fn.Body); err != nil {
		return err
	}

	if !allPathsReturn(fn.Body) {
		if fn.ReturnType == sem.TypeInt {
			g.emit(OpReturn, nil, Const(0), nil)
		} else {
			g.emit(OpReturn, nil, nil, nil)
		}
	}

	g.exitScope()
	g.emit(OpFunctionEnd, Func(fn.Name), nil, nil)
	g.curFunc = nil
	return nil
}

// genBlock lowers a block inside a fresh scope.
func (g *Generator) genBlock(block *syntax.Block) error {
	g.enterScope()
	defer g.exitScope()

	for _, stmt := range block.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// emit appends an instruction to the stream.
func (g *Generator) emit(op OpCode, dest, src1, src2 *Operand) {
	g.instrs = append(g.instrs, &Instruction{Op: op, Dest: dest, Src1: src1, Src2: src2})
}

// newTemp allocates a fresh temporary operand.
func (g *Generator) newTemp() *Operand {
	g.tempCount++
	return Temp(g.tempCount)
}

// newLabel allocates a fresh label operand.
func (g *Generator) newLabel() *Operand {
	g.labelCount++
	return Label(g.labelCount)
}

// -----------------------------------------------------------------------------

// enterScope pushes a new variable scope with a unit-unique ID.
func (g *Generator) enterScope() {
	g.scopes = append(g.scopes, &genScope{
		id:   g.nextScopeID,
		vars: make(map[string]*Operand),
	})
	g.nextScopeID++
}

// exitScope pops the innermost variable scope.
func (g *Generator) exitScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

// defineVar binds a source name in the innermost scope to its scoped IR
// operand and returns the operand.
func (g *Generator) defineVar(name string) *Operand {
	sc := g.scopes[len(g.scopes)-1]
	op := Var(name + "_scope" + strconv.Itoa(sc.id))
	sc.vars[name] = op
	return op
}

// lookupVar resolves a source name through the scope stack inner-to-outer.
func (g *Generator) lookupVar(name string) (*Operand, error) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if op, ok := g.scopes[i].vars[name]; ok {
			return op, nil
		}
	}

	return nil, fmt.Errorf("ir: unresolved variable `%s`", name)
}
