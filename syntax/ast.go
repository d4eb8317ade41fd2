package syntax

import "toyc/sem"

// The AST is a closed variant set: consumers dispatch over it with
// exhaustive type switches.  Nodes record the source line of their leading
// token for diagnostics.

// CompUnit is the root of the AST: an ordered sequence of function
// definitions.
type CompUnit struct {
	Funcs []*FuncDef
}

// FuncDef represents a single function definition.
type FuncDef struct {
	ReturnType sem.DataType
	Name       string
	Params     []Param
	Body       *Block

	// Line is the line of the return type keyword.
	Line int
}

// Param is a single `int` parameter.
type Param struct {
	Name string
	Line int
}

// -----------------------------------------------------------------------------

// Stmt is implemented by all statement nodes.
type Stmt interface {
	stmt()
}

// Block is a brace-delimited statement sequence introducing a new scope.
type Block struct {
	Stmts []Stmt
}

// EmptyStmt is a lone `;`.
type EmptyStmt struct{}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr
}

// VarDecl declares a local variable with a mandatory initializer.
type VarDecl struct {
	Name string
	Init Expr
	Line int
}

// Assign assigns to a previously declared variable.
type Assign struct {
	Name  string
	Value Expr
	Line  int
}

// If is a conditional with an optional else branch.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

// While is a pre-tested loop.
type While struct {
	Cond Expr
	Body Stmt
}

// Break exits the innermost enclosing loop.
type Break struct {
	Line int
}

// Continue jumps to the condition of the innermost enclosing loop.
type Continue struct {
	Line int
}

// Return returns from the enclosing function, optionally with a value.
type Return struct {
	Value Expr // nil for a bare return
	Line  int
}

func (*Block) stmt()     {}
func (*EmptyStmt) stmt() {}
func (*ExprStmt) stmt()  {}
func (*VarDecl) stmt()   {}
func (*Assign) stmt()    {}
func (*If) stmt()        {}
func (*While) stmt()     {}
func (*Break) stmt()     {}
func (*Continue) stmt()  {}
func (*Return) stmt()    {}

// -----------------------------------------------------------------------------

// Expr is implemented by all expression nodes.
type Expr interface {
	expr()
}

// NumberLit is an integer literal.
type NumberLit struct {
	Value int32
	Line  int
}

// VarRef is a reference to a variable or parameter.
type VarRef struct {
	Name string
	Line int
}

// Unary is a unary operator application.  Op is a token kind: TOK_PLUS,
// TOK_MINUS, or TOK_NOT.
type Unary struct {
	Op      int
	Operand Expr
	Line    int
}

// Binary is a binary operator application.  Op is a token kind.
type Binary struct {
	Op       int
	Lhs, Rhs Expr
	Line     int
}

// Call is a function call expression.
type Call struct {
	Callee string
	Args   []Expr
	Line   int
}

func (*NumberLit) expr() {}
func (*VarRef) expr()    {}
func (*Unary) expr()     {}
func (*Binary) expr()    {}
func (*Call) expr()      {}
