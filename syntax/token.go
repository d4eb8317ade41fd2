package syntax

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value (lexeme) of the token.
	Value string

	// The source line on which the token's first character occurs.
	Line int
}

// Enumeration of token kinds.
const (
	TOK_INT = iota
	TOK_VOID
	TOK_IF
	TOK_ELSE
	TOK_WHILE
	TOK_BREAK
	TOK_CONTINUE
	TOK_RETURN

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_MOD

	TOK_ASSIGN

	TOK_LT
	TOK_GT
	TOK_LTEQ
	TOK_GTEQ
	TOK_EQ
	TOK_NEQ

	TOK_LAND
	TOK_LOR
	TOK_NOT

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_COMMA
	TOK_SEMI

	TOK_IDENT
	TOK_INTLIT

	TOK_EOF
	TOK_UNKNOWN
)

// keywordPatterns maps keyword strings (patterns) to their keyword token
// kind.  Keywords are reserved: they can never lex as identifiers.
var keywordPatterns = map[string]int{
	"int":      TOK_INT,
	"void":     TOK_VOID,
	"if":       TOK_IF,
	"else":     TOK_ELSE,
	"while":    TOK_WHILE,
	"break":    TOK_BREAK,
	"continue": TOK_CONTINUE,
	"return":   TOK_RETURN,
}

// symbolPatterns maps punctuator/operator strings (patterns) to their token
// kind.  Two-character patterns take priority over their one-character
// prefixes (longest match).
var symbolPatterns = map[string]int{
	"+": TOK_PLUS,
	"-": TOK_MINUS,
	"*": TOK_STAR,
	// Division is handled together with comment logic.
	"%": TOK_MOD,

	"=":  TOK_ASSIGN,
	"<":  TOK_LT,
	">":  TOK_GT,
	"<=": TOK_LTEQ,
	">=": TOK_GTEQ,
	"==": TOK_EQ,
	"!=": TOK_NEQ,

	"&&": TOK_LAND,
	"||": TOK_LOR,
	"!":  TOK_NOT,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
	",": TOK_COMMA,
	";": TOK_SEMI,
}

// TypeLabel returns the label used for this token in the debug token dump:
// the single-quoted literal for keywords and punctuators, `Ident` for
// identifiers, and `IntConst` for integer literals.
func (t *Token) TypeLabel() string {
	switch t.Kind {
	case TOK_IDENT:
		return "Ident"
	case TOK_INTLIT:
		return "IntConst"
	case TOK_EOF:
		return "EOF"
	case TOK_UNKNOWN:
		return "Unknown"
	default:
		return "'" + t.Value + "'"
	}
}

// IsStmtStart returns whether the token kind can begin a statement.  These
// kinds double as synchronization points for panic-mode error recovery.
func (t *Token) IsStmtStart() bool {
	switch t.Kind {
	case TOK_INT, TOK_VOID, TOK_IF, TOK_WHILE, TOK_RETURN, TOK_BREAK, TOK_CONTINUE:
		return true
	default:
		return false
	}
}
