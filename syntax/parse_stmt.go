package syntax

import (
	"toyc/report"
	"toyc/sem"
)

// stmt := block | ';' | expr ';' | 'IDENT' '=' expr ';'
//       | 'int' 'IDENT' '=' expr ';'
//       | 'if' '(' expr ')' stmt ['else' stmt]
//       | 'while' '(' expr ')' stmt
//       | 'break' ';' | 'continue' ';' | 'return' [expr] ';' ;
//
// A statement parser that reports an error and synchronizes on its own
// returns (nil, true): the error is handled and the statement contributes
// no AST node.  A false result means the caller must synchronize.
func (p *Parser) parseStmt() (Stmt, bool) {
	switch p.tok.Kind {
	case TOK_LBRACE:
		return p.parseBlock()
	case TOK_SEMI:
		p.next()
		return &EmptyStmt{}, true
	case TOK_INT:
		return p.parseVarDecl()
	case TOK_IF:
		return p.parseIfStmt()
	case TOK_WHILE:
		return p.parseWhileStmt()
	case TOK_BREAK:
		line := p.tok.Line
		p.next()
		if !p.match(TOK_SEMI) {
			p.reject()
			p.syncToStmt()
		}
		return &Break{Line: line}, true
	case TOK_CONTINUE:
		line := p.tok.Line
		p.next()
		if !p.match(TOK_SEMI) {
			p.reject()
			p.syncToStmt()
		}
		return &Continue{Line: line}, true
	case TOK_RETURN:
		return p.parseReturnStmt()
	case TOK_IDENT:
		return p.parseAssignOrExprStmt()
	case TOK_VOID:
		// `void` never opens a statement; consuming it here keeps the
		// recovery loop moving, since `void` is itself a sync point.
		p.reject()
		p.next()
		p.syncToStmt()
		return nil, true
	}

	// Anything else must open an expression statement.
	if expr, ok := p.parseExpr(); ok {
		if !p.match(TOK_SEMI) {
			p.reject()
			p.syncToStmt()
			return nil, true
		}

		return &ExprStmt{X: expr}, true
	}

	p.reject()
	return nil, false
}

// var_decl := 'int' 'IDENT' '=' expr ';' ;
//
// Semantic actions: the initializer is mandatory; the name is declared in
// the innermost scope.  A redeclaration in the same scope keeps the first
// declaration and warns.
func (p *Parser) parseVarDecl() (Stmt, bool) {
	p.next() // 'int'

	if !p.got(TOK_IDENT) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	name := p.tok.Value
	nameLine := p.tok.Line
	p.next()

	if !p.match(TOK_ASSIGN) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	init, ok := p.parseExpr()
	if !ok {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	if !p.match(TOK_SEMI) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	if _, ok := p.symbols.DefineVariable(name, nameLine); !ok {
		p.rep.ReportWarning(nameLine, "variable `"+name+"` already declared in this scope")
	}

	return &VarDecl{Name: name, Init: init, Line: nameLine}, true
}

// if_stmt := 'if' '(' expr ')' stmt ['else' stmt] ;
//
// An `else` binds to the nearest unmatched `if`.
func (p *Parser) parseIfStmt() (Stmt, bool) {
	p.next() // 'if'

	if !p.match(TOK_LPAREN) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	cond, ok := p.parseExpr()
	if !ok {
		p.reject()
		p.syncToStmt()
		cond = &NumberLit{Value: 0, Line: p.tok.Line}
	}

	if !p.match(TOK_RPAREN) {
		p.reject()
		p.syncToStmt()
	}

	thenStmt, ok := p.parseStmt()
	if !ok {
		p.syncToStmt()
	}
	if thenStmt == nil {
		thenStmt = &EmptyStmt{}
	}

	var elseStmt Stmt
	if p.match(TOK_ELSE) {
		elseStmt, ok = p.parseStmt()
		if !ok {
			p.syncToStmt()
		}
		if elseStmt == nil {
			elseStmt = &EmptyStmt{}
		}
	}

	return &If{Cond: cond, Then: thenStmt, Else: elseStmt}, true
}

// while_stmt := 'while' '(' expr ')' stmt ;
func (p *Parser) parseWhileStmt() (Stmt, bool) {
	p.next() // 'while'

	if !p.match(TOK_LPAREN) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	cond, ok := p.parseExpr()
	if !ok {
		p.reject()
		p.syncToStmt()
		cond = &NumberLit{Value: 0, Line: p.tok.Line}
	}

	if !p.match(TOK_RPAREN) {
		p.reject()
		p.syncToStmt()
	}

	body, ok := p.parseStmt()
	if !ok {
		p.syncToStmt()
	}
	if body == nil {
		body = &EmptyStmt{}
	}

	return &While{Cond: cond, Body: body}, true
}

// return_stmt := 'return' [expr] ';' ;
//
// Semantic actions: in an `int` function the return value is mandatory; in
// a `void` function it is forbidden.
func (p *Parser) parseReturnStmt() (Stmt, bool) {
	line := p.tok.Line
	p.next() // 'return'

	var value Expr
	if !p.got(TOK_SEMI) {
		var ok bool
		value, ok = p.parseExpr()
		if !ok {
			p.reject()
			p.syncToStmt()
			return nil, true
		}
	}

	if !p.match(TOK_SEMI) {
		p.reject()
		p.syncToStmt()
	}

	if p.curFunc != nil {
		if p.curFunc.Type == sem.TypeInt && value == nil {
			p.errorOn(report.ErrKindReturn, line, "`int` function `%s` must return a value", p.curFunc.Name)
		} else if p.curFunc.Type == sem.TypeVoid && value != nil {
			p.errorOn(report.ErrKindReturn, line, "`void` function `%s` cannot return a value", p.curFunc.Name)
		}
	}

	return &Return{Value: value, Line: line}, true
}

// parseAssignOrExprStmt disambiguates `IDENT '=' expr ';'` from an
// expression statement beginning with an identifier.  The parser commits to
// assignment iff the token after the identifier is `=`; otherwise it backs
// up to the identifier and parses a full expression.  This needs exactly
// one token of saved state.
func (p *Parser) parseAssignOrExprStmt() (Stmt, bool) {
	save := p.pos
	name := p.tok.Value
	nameLine := p.tok.Line
	p.next()

	if p.got(TOK_ASSIGN) {
		p.next()

		value, ok := p.parseExpr()
		if !ok {
			p.reject()
			p.syncToStmt()
			return nil, true
		}

		if !p.match(TOK_SEMI) {
			p.reject()
			p.syncToStmt()
			return nil, true
		}

		// A function name does not resolve as an assignment target.
		if sym := p.symbols.Lookup(name); sym == nil || sym.Kind == sem.KindFunction {
			p.errorOn(report.ErrKindName, nameLine, "assignment to undeclared variable `%s`", name)
		}

		return &Assign{Name: name, Value: value, Line: nameLine}, true
	}

	// Not an assignment: rewind and parse as an expression statement.
	p.pos = save
	p.tok = p.toks[p.pos]

	expr, ok := p.parseExpr()
	if !ok {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	if !p.match(TOK_SEMI) {
		p.reject()
		p.syncToStmt()
		return nil, true
	}

	return &ExprStmt{X: expr}, true
}
