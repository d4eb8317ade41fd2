package syntax

import (
	"toyc/report"
	"toyc/sem"
)

// All binary operators are left-associative; the grammar levels run from
// lowest precedence (`||`) to highest (`*` `/` `%`).

// expr := lor_expr ;
func (p *Parser) parseExpr() (Expr, bool) {
	return p.parseLOrExpr()
}

// lor_expr := land_expr {'||' land_expr} ;
func (p *Parser) parseLOrExpr() (Expr, bool) {
	lhs, ok := p.parseLAndExpr()
	if !ok {
		return nil, false
	}

	for p.got(TOK_LOR) {
		opLine := p.tok.Line
		p.next()

		rhs, ok := p.parseLAndExpr()
		if !ok {
			return nil, false
		}

		lhs = &Binary{Op: TOK_LOR, Lhs: lhs, Rhs: rhs, Line: opLine}
	}

	return lhs, true
}

// land_expr := rel_expr {'&&' rel_expr} ;
func (p *Parser) parseLAndExpr() (Expr, bool) {
	lhs, ok := p.parseRelExpr()
	if !ok {
		return nil, false
	}

	for p.got(TOK_LAND) {
		opLine := p.tok.Line
		p.next()

		rhs, ok := p.parseRelExpr()
		if !ok {
			return nil, false
		}

		lhs = &Binary{Op: TOK_LAND, Lhs: lhs, Rhs: rhs, Line: opLine}
	}

	return lhs, true
}

// rel_expr := add_expr {('<' | '>' | '<=' | '>=' | '==' | '!=') add_expr} ;
func (p *Parser) parseRelExpr() (Expr, bool) {
	lhs, ok := p.parseAddExpr()
	if !ok {
		return nil, false
	}

	for p.got(TOK_LT) || p.got(TOK_GT) || p.got(TOK_LTEQ) || p.got(TOK_GTEQ) ||
		p.got(TOK_EQ) || p.got(TOK_NEQ) {
		op := p.tok.Kind
		opLine := p.tok.Line
		p.next()

		rhs, ok := p.parseAddExpr()
		if !ok {
			return nil, false
		}

		lhs = &Binary{Op: op, Lhs: lhs, Rhs: rhs, Line: opLine}
	}

	return lhs, true
}

// add_expr := mul_expr {('+' | '-') mul_expr} ;
func (p *Parser) parseAddExpr() (Expr, bool) {
	lhs, ok := p.parseMulExpr()
	if !ok {
		return nil, false
	}

	for p.got(TOK_PLUS) || p.got(TOK_MINUS) {
		op := p.tok.Kind
		opLine := p.tok.Line
		p.next()

		rhs, ok := p.parseMulExpr()
		if !ok {
			return nil, false
		}

		lhs = &Binary{Op: op, Lhs: lhs, Rhs: rhs, Line: opLine}
	}

	return lhs, true
}

// mul_expr := unary_expr {('*' | '/' | '%') unary_expr} ;
func (p *Parser) parseMulExpr() (Expr, bool) {
	lhs, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}

	for p.got(TOK_STAR) || p.got(TOK_DIV) || p.got(TOK_MOD) {
		op := p.tok.Kind
		opLine := p.tok.Line
		p.next()

		rhs, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}

		lhs = &Binary{Op: op, Lhs: lhs, Rhs: rhs, Line: opLine}
	}

	return lhs, true
}

// unary_expr := ('+' | '-' | '!') unary_expr | primary_expr ;
func (p *Parser) parseUnaryExpr() (Expr, bool) {
	if p.got(TOK_PLUS) || p.got(TOK_MINUS) || p.got(TOK_NOT) {
		op := p.tok.Kind
		opLine := p.tok.Line
		p.next()

		operand, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}

		return &Unary{Op: op, Operand: operand, Line: opLine}, true
	}

	return p.parsePrimaryExpr()
}

// primary_expr := 'IDENT' | 'IDENT' '(' [expr {',' expr}] ')'
//               | 'NUMBER' | '(' expr ')' ;
//
// Semantic actions: a variable reference must resolve in the scope chain; a
// callee must be a declared function or the function currently being parsed
// (self-recursion).
func (p *Parser) parsePrimaryExpr() (Expr, bool) {
	switch p.tok.Kind {
	case TOK_IDENT:
		name := p.tok.Value
		line := p.tok.Line
		p.next()

		if p.match(TOK_LPAREN) {
			return p.parseCallArgs(name, line)
		}

		// A function name does not resolve as a variable; only a call may
		// use it.
		if sym := p.symbols.Lookup(name); sym == nil || sym.Kind == sem.KindFunction {
			p.errorOn(report.ErrKindName, line, "use of undeclared variable `%s`", name)
		}

		return &VarRef{Name: name, Line: line}, true
	case TOK_INTLIT:
		// Literals reduce modulo 2^32 so out-of-range values wrap exactly
		// like the arithmetic that computes them.  The lexeme is all digits.
		var v uint32
		for _, c := range p.tok.Value {
			v = v*10 + uint32(c-'0')
		}

		line := p.tok.Line
		p.next()
		return &NumberLit{Value: int32(v), Line: line}, true
	case TOK_LPAREN:
		p.next()

		expr, ok := p.parseExpr()
		if !ok {
			p.reject()
			return nil, false
		}

		if !p.match(TOK_RPAREN) {
			p.reject()
			return nil, false
		}

		return expr, true
	}

	return nil, false
}

// parseCallArgs parses the argument list of a call whose callee name and
// opening paren have already been consumed.
func (p *Parser) parseCallArgs(callee string, line int) (Expr, bool) {
	var args []Expr

	if !p.got(TOK_RPAREN) {
		for {
			arg, ok := p.parseExpr()
			if !ok {
				p.reject()
				return nil, false
			}

			args = append(args, arg)

			if p.match(TOK_COMMA) {
				continue
			}

			break
		}
	}

	if !p.match(TOK_RPAREN) {
		p.reject()
		return nil, false
	}

	fnSym := p.symbols.LookupFunction(callee)
	selfCall := p.curFunc != nil && p.curFunc.Name == callee
	if fnSym == nil && !selfCall {
		p.errorOn(report.ErrKindName, line, "call to undeclared function `%s`", callee)
	} else if fnSym != nil && len(args) != len(fnSym.ParamTypes) {
		p.rep.ReportWarning(line, "call to `"+callee+"` with wrong number of arguments")
	}

	return &Call{Callee: callee, Args: args, Line: line}, true
}
