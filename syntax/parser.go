package syntax

import (
	"fmt"

	"toyc/report"
	"toyc/sem"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse as well as any
// semantic actions they perform during parsing.

// Parser is the recursive-descent parser for a ToyC compilation unit.  It
// performs syntax analysis, AST generation, and the integrated semantic
// checks: scope and declaration rules, return/type consistency, and the
// `main` discipline.  All parsing functions assume that they begin with the
// parser centered on the first token of their production and must consume
// all tokens (including the last) of their production, leaving the parser on
// the next token.  The parser never aborts: on a mismatch it records the
// current line and synchronizes at the next statement boundary.
type Parser struct {
	toks []Token
	pos  int

	// tok is the current token the parser is positioned on.
	tok Token

	rep     *report.Reporter
	symbols *sem.SymbolTable

	// curFunc is the function whose body is being parsed.  Calls to it are
	// legal before it is fully defined (self-recursion).
	curFunc *sem.Symbol
}

// NewParser creates a new parser over a lexed token sequence.  The sequence
// must be terminated by an EOF token.
func NewParser(toks []Token, symbols *sem.SymbolTable, rep *report.Reporter) *Parser {
	p := &Parser{
		toks:    toks,
		rep:     rep,
		symbols: symbols,
	}
	p.tok = toks[0]
	return p
}

// Parse parses the whole token stream and returns the AST.  The result is
// meaningful even when errors were reported, but IR generation must only
// run on an accepted unit.
func (p *Parser) Parse() *CompUnit {
	unit := p.parseCompUnit()
	p.checkMain()
	return unit
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.  The parser parks on EOF.
func (p *Parser) next() {
	if p.pos+1 < len(p.toks) {
		p.pos++
	}

	p.tok = p.toks[p.pos]
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// match consumes the current token if it is of the given kind.
func (p *Parser) match(kind int) bool {
	if p.got(kind) {
		p.next()
		return true
	}

	return false
}

// -----------------------------------------------------------------------------

// reject reports an unexpected token error on the current token.
func (p *Parser) reject() {
	var msg string
	switch p.tok.Kind {
	case TOK_EOF:
		msg = "unexpected end of file"
	case TOK_UNKNOWN:
		msg = fmt.Sprintf("unknown character `%s`", p.tok.Value)
	default:
		msg = fmt.Sprintf("unexpected token: `%s`", p.tok.Value)
	}

	p.rep.ReportError(report.ErrKindSyntax, p.tok.Line, msg)
}

// errorOn records a compile error of the given kind on a specific line.
func (p *Parser) errorOn(kind, line int, msg string, a ...interface{}) {
	p.rep.ReportError(kind, line, fmt.Sprintf(msg, a...))
}

// syncToStmt performs panic-mode recovery: it discards tokens until the
// next synchronization point (`;`, `}`, or a statement starter).  A `;`
// sync point is consumed so the parser cannot loop on it.
func (p *Parser) syncToStmt() {
	for !p.got(TOK_EOF) && !p.got(TOK_SEMI) && !p.got(TOK_RBRACE) && !p.tok.IsStmtStart() {
		p.next()
	}

	if p.got(TOK_SEMI) {
		p.next()
	}
}

// -----------------------------------------------------------------------------

// comp_unit := func_def+ ;
func (p *Parser) parseCompUnit() *CompUnit {
	unit := &CompUnit{}

	for !p.got(TOK_EOF) {
		if p.got(TOK_INT) || p.got(TOK_VOID) {
			if fn, ok := p.parseFuncDef(); ok {
				unit.Funcs = append(unit.Funcs, fn)
			}

			// A failed definition reported its own error; the definition
			// parser always consumes the leading type token, so the loop
			// makes progress either way.
			continue
		}

		// Recover at the next plausible top-level definition.
		p.reject()
		for !p.got(TOK_EOF) && !p.got(TOK_INT) && !p.got(TOK_VOID) {
			p.next()
		}
	}

	return unit
}

// func_def := ('int' | 'void') 'IDENT' '(' [param {',' param}] ')' block ;
//
// Semantic actions: the function is registered in the global scope before
// its body is parsed so that recursive calls resolve; a redefinition of the
// name is an error on the name's line.  The body is parsed inside a fresh
// scope holding the parameters.
func (p *Parser) parseFuncDef() (*FuncDef, bool) {
	if !p.got(TOK_INT) && !p.got(TOK_VOID) {
		return nil, false
	}

	retType := sem.TypeInt
	if p.got(TOK_VOID) {
		retType = sem.TypeVoid
	}

	declLine := p.tok.Line
	p.next()

	if !p.got(TOK_IDENT) {
		p.reject()
		p.syncToStmt()
		return nil, false
	}

	fnName := p.tok.Value
	fnNameLine := p.tok.Line
	p.next()

	if !p.match(TOK_LPAREN) {
		p.reject()
		p.syncToStmt()
		return nil, false
	}

	var params []Param
	if !p.got(TOK_RPAREN) {
		for {
			param, ok := p.parseParam()
			if !ok {
				p.reject()
				p.syncToStmt()
				break
			}

			params = append(params, param)

			if p.match(TOK_COMMA) {
				continue
			}

			break
		}
	}

	if !p.match(TOK_RPAREN) {
		p.reject()
	}

	paramTypes := make([]sem.DataType, len(params))
	for i := range paramTypes {
		paramTypes[i] = sem.TypeInt
	}

	sym, ok := p.symbols.DefineFunction(fnName, retType, paramTypes, declLine)
	if !ok {
		p.errorOn(report.ErrKindDefinition, fnNameLine, "function `%s` redefined", fnName)
		sym = p.symbols.LookupFunction(fnName)
	}

	// Parameters live in their own scope wrapping the body block.
	p.curFunc = sym
	p.symbols.EnterScope()
	for _, param := range params {
		if _, ok := p.symbols.DefineParameter(param.Name, param.Line); !ok {
			p.rep.ReportWarning(param.Line, fmt.Sprintf("duplicate parameter name `%s`", param.Name))
		}
	}

	body, bodyOk := p.parseBlock()

	p.symbols.ExitScope()
	p.curFunc = nil

	fn := &FuncDef{
		ReturnType: retType,
		Name:       fnName,
		Params:     params,
		Body:       body,
		Line:       declLine,
	}

	return fn, bodyOk
}

// param := 'int' 'IDENT' ;
func (p *Parser) parseParam() (Param, bool) {
	if !p.match(TOK_INT) {
		return Param{}, false
	}

	if !p.got(TOK_IDENT) {
		return Param{}, false
	}

	param := Param{Name: p.tok.Value, Line: p.tok.Line}
	p.next()
	return param, true
}

// block := '{' {stmt} '}' ;
//
// Semantic actions: a block pushes a fresh scope for its statements.
func (p *Parser) parseBlock() (*Block, bool) {
	if !p.match(TOK_LBRACE) {
		p.reject()
		return &Block{}, false
	}

	p.symbols.EnterScope()
	defer p.symbols.ExitScope()

	block := &Block{}
	for !p.got(TOK_RBRACE) && !p.got(TOK_EOF) {
		start := p.pos
		stmt, ok := p.parseStmt()
		if !ok {
			p.syncToStmt()

			// The offending token can itself be a sync point; skip it so
			// the loop always makes progress.
			if p.pos == start && !p.got(TOK_RBRACE) {
				p.next()
			}
		}

		// A nil statement parsed with errors and contributes no node.
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	if !p.match(TOK_RBRACE) {
		p.reject()
		return block, false
	}

	return block, true
}

// -----------------------------------------------------------------------------

// checkMain enforces the `main` discipline: the program must define an
// `int main()` with no parameters.  A missing `main` reports line 1; a bad
// signature reports the declaration line.
func (p *Parser) checkMain() {
	mainSym := p.symbols.LookupFunction("main")
	if mainSym == nil {
		p.rep.ReportError(report.ErrKindMain, 1, "program defines no `main` function")
		return
	}

	if mainSym.Type != sem.TypeInt || len(mainSym.ParamTypes) != 0 {
		p.errorOn(report.ErrKindMain, mainSym.DeclLine, "`main` must be declared as `int main()`")
	}
}
