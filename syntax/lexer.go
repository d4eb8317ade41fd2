package syntax

import (
	"fmt"
	"io"
	"strings"

	"toyc/report"
)

// Lexer is responsible for tokenizing a ToyC source string.  It performs a
// single left-to-right pass with one character of lookahead (two for `*/`)
// and never fails fatally: unrecognized characters are emitted as Unknown
// tokens.
type Lexer struct {
	text string
	pos  int
	line int

	rep *report.Reporter
}

// NewLexer creates a new lexer for the given source text.
func NewLexer(src string, rep *report.Reporter) *Lexer {
	return &Lexer{
		text: src,
		line: 1,
		rep:  rep,
	}
}

// Tokenize lexes the whole source into a token sequence terminated by an
// EOF token.
func (l *Lexer) Tokenize() []Token {
	var toks []Token

	for {
		l.skipWhitespaceAndComments()

		c, ok := l.peek()
		if !ok {
			break
		}

		switch {
		case isIdentStart(c):
			toks = append(toks, l.lexIdentOrKeyword())
		case isDigit(c):
			toks = append(toks, l.lexNumber())
		default:
			toks = append(toks, l.lexPunctOrOper())
		}
	}

	return append(toks, Token{Kind: TOK_EOF, Line: l.line})
}

// -----------------------------------------------------------------------------

// skipWhitespaceAndComments advances past whitespace, line comments, and
// block comments.  An unclosed block comment is a lexical error recorded on
// the line where the comment opened; the rest of the input is discarded.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		c, ok := l.peek()
		if !ok {
			return
		}

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.get()
		case l.startsWith("//"):
			for {
				c, ok := l.peek()
				if !ok || c == '\n' {
					break
				}

				l.get()
			}
		case l.startsWith("/*"):
			openLine := l.line
			l.get()
			l.get()

			closed := false
			for l.pos < len(l.text) {
				if l.startsWith("*/") {
					l.get()
					l.get()
					closed = true
					break
				}

				l.get()
			}

			if !closed {
				l.rep.ReportError(report.ErrKindLex, openLine, "unclosed block comment")
			}
		default:
			return
		}
	}
}

// lexIdentOrKeyword lexes the maximal identifier run and classifies it as a
// keyword if it is in the keyword set.
func (l *Lexer) lexIdentOrKeyword() Token {
	startLine := l.line
	start := l.pos

	for {
		c, ok := l.peek()
		if !ok || !isIdentStart(c) && !isDigit(c) {
			break
		}

		l.get()
	}

	lexeme := l.text[start:l.pos]
	if kind, ok := keywordPatterns[lexeme]; ok {
		return Token{Kind: kind, Value: lexeme, Line: startLine}
	}

	return Token{Kind: TOK_IDENT, Value: lexeme, Line: startLine}
}

// lexNumber lexes the maximal digit run.  A leading minus is never consumed
// here: unary minus is a parser concern.
func (l *Lexer) lexNumber() Token {
	startLine := l.line
	start := l.pos

	for {
		c, ok := l.peek()
		if !ok || !isDigit(c) {
			break
		}

		l.get()
	}

	return Token{Kind: TOK_INTLIT, Value: l.text[start:l.pos], Line: startLine}
}

// lexPunctOrOper lexes a punctuator or operator, preferring the longest
// match: two-character operators are attempted before their one-character
// prefixes.
func (l *Lexer) lexPunctOrOper() Token {
	startLine := l.line

	if l.pos+2 <= len(l.text) {
		pair := l.text[l.pos : l.pos+2]
		if kind, ok := symbolPatterns[pair]; ok {
			l.get()
			l.get()
			return Token{Kind: kind, Value: pair, Line: startLine}
		}
	}

	c, _ := l.peek()
	l.get()

	if c == '/' {
		return Token{Kind: TOK_DIV, Value: "/", Line: startLine}
	}

	if kind, ok := symbolPatterns[string(c)]; ok {
		return Token{Kind: kind, Value: string(c), Line: startLine}
	}

	return Token{Kind: TOK_UNKNOWN, Value: string(c), Line: startLine}
}

// -----------------------------------------------------------------------------

// peek returns the next character without advancing.
func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.text) {
		return 0, false
	}

	return l.text[l.pos], true
}

// get advances one character, maintaining the line count.
func (l *Lexer) get() byte {
	c := l.text[l.pos]
	l.pos++

	if c == '\n' {
		l.line++
	}

	return c
}

// startsWith returns whether the remaining input begins with s.
func (l *Lexer) startsWith(s string) bool {
	return strings.HasPrefix(l.text[l.pos:], s)
}

// -----------------------------------------------------------------------------

// WriteTokenDump writes the debug token dump: one token per line in the form
// `<index>:<type_label>:"<lexeme>"`.  The trailing EOF token is elided.
func WriteTokenDump(w io.Writer, toks []Token) {
	for i, tok := range toks {
		if tok.Kind == TOK_EOF {
			continue
		}

		fmt.Fprintf(w, "%d:%s:%q\n", i, tok.TypeLabel(), tok.Value)
	}
}

// -----------------------------------------------------------------------------

// isDigit returns whether c is a decimal digit.
func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isIdentStart returns whether c could be the first character of an
// identifier.
func isIdentStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
