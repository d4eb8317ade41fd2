package sem

import (
	"fmt"
	"strings"
)

// DataType is one of the two ToyC value types.
type DataType int

const (
	TypeInt DataType = iota
	TypeVoid
)

// String returns the source spelling of the type.
func (t DataType) String() string {
	if t == TypeVoid {
		return "void"
	}

	return "int"
}

// SymbolKind distinguishes the three kinds of named entities.
type SymbolKind int

const (
	KindVariable SymbolKind = iota
	KindParameter
	KindFunction
)

// String returns the display name of the symbol kind.
func (k SymbolKind) String() string {
	switch k {
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	default:
		return "variable"
	}
}

// Symbol is a named entity declared in some scope.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type DataType

	// ScopeID is the unique ID of the scope the symbol was declared in.
	ScopeID int

	// StackOffset is the symbol's frame offset in bytes: positive for
	// parameters, negative for locals, zero for functions.
	StackOffset int

	// ParamTypes is the ordered parameter type list.  Functions only.
	ParamTypes []DataType

	// DeclLine is the source line of the declaration.
	DeclLine int
}

// -----------------------------------------------------------------------------

// scope is a single layer of the scope stack.
type scope struct {
	id      int
	symbols map[string]*Symbol

	// slots counts the stack words handed out in this scope so far.
	slots int
}

// SymbolTable is a stack of scopes.  The outermost scope (ID 0) is the
// global scope and holds all function symbols; every function body and
// nested block pushes a fresh scope.  Scope IDs increase monotonically for
// the lifetime of the table, so a scope ID uniquely identifies one lexical
// scope even after it has been popped.
type SymbolTable struct {
	scopes   []*scope
	nextID   int
	wordSize int
}

// NewSymbolTable creates a symbol table containing only the global scope.
// wordSize is the size in bytes of one stack slot.
func NewSymbolTable(wordSize int) *SymbolTable {
	st := &SymbolTable{wordSize: wordSize}
	st.EnterScope()
	return st
}

// EnterScope pushes a new innermost scope and returns its ID.
func (st *SymbolTable) EnterScope() int {
	sc := &scope{id: st.nextID, symbols: make(map[string]*Symbol)}
	st.nextID++
	st.scopes = append(st.scopes, sc)
	return sc.id
}

// ExitScope pops the innermost scope.  The global scope is never popped.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// CurrentScopeID returns the ID of the innermost scope.
func (st *SymbolTable) CurrentScopeID() int {
	return st.scopes[len(st.scopes)-1].id
}

// -----------------------------------------------------------------------------

// DefineVariable declares a local variable in the innermost scope and
// assigns it the next negative stack offset.  It fails if the name is
// already declared in that scope.
func (st *SymbolTable) DefineVariable(name string, line int) (*Symbol, bool) {
	sc := st.scopes[len(st.scopes)-1]
	if _, ok := sc.symbols[name]; ok {
		return nil, false
	}

	sc.slots++
	sym := &Symbol{
		Name:        name,
		Kind:        KindVariable,
		Type:        TypeInt,
		ScopeID:     sc.id,
		StackOffset: -sc.slots * st.wordSize,
		DeclLine:    line,
	}
	sc.symbols[name] = sym
	return sym, true
}

// DefineParameter declares a parameter in the innermost scope and assigns
// it the next positive stack offset.
func (st *SymbolTable) DefineParameter(name string, line int) (*Symbol, bool) {
	sc := st.scopes[len(st.scopes)-1]
	if _, ok := sc.symbols[name]; ok {
		return nil, false
	}

	sc.slots++
	sym := &Symbol{
		Name:        name,
		Kind:        KindParameter,
		Type:        TypeInt,
		ScopeID:     sc.id,
		StackOffset: sc.slots * st.wordSize,
		DeclLine:    line,
	}
	sc.symbols[name] = sym
	return sym, true
}

// DefineFunction declares a function.  Functions always live in the global
// scope regardless of the current scope depth.
func (st *SymbolTable) DefineFunction(name string, ret DataType, paramTypes []DataType, line int) (*Symbol, bool) {
	global := st.scopes[0]
	if _, ok := global.symbols[name]; ok {
		return nil, false
	}

	sym := &Symbol{
		Name:       name,
		Kind:       KindFunction,
		Type:       ret,
		ScopeID:    global.id,
		ParamTypes: paramTypes,
		DeclLine:   line,
	}
	global.symbols[name] = sym
	return sym, true
}

// Lookup resolves a name by walking the scope stack inner-to-outer.  The
// innermost match shadows outer ones.
func (st *SymbolTable) Lookup(name string) *Symbol {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].symbols[name]; ok {
			return sym
		}
	}

	return nil
}

// LookupFunction resolves a name in the global scope only, and only if it
// names a function.
func (st *SymbolTable) LookupFunction(name string) *Symbol {
	if sym, ok := st.scopes[0].symbols[name]; ok && sym.Kind == KindFunction {
		return sym
	}

	return nil
}

// -----------------------------------------------------------------------------

// String renders the live scope stack for debugging.
func (st *SymbolTable) String() string {
	sb := strings.Builder{}

	for _, sc := range st.scopes {
		fmt.Fprintf(&sb, "scope %d:\n", sc.id)

		for _, sym := range sc.symbols {
			if sym.Kind == KindFunction {
				params := make([]string, len(sym.ParamTypes))
				for i, pt := range sym.ParamTypes {
					params[i] = pt.String()
				}

				fmt.Fprintf(&sb, "  %s (%s, %s, params: [%s])\n",
					sym.Name, sym.Kind, sym.Type, strings.Join(params, ", "))
			} else {
				fmt.Fprintf(&sb, "  %s (%s, %s, offset: %d)\n",
					sym.Name, sym.Kind, sym.Type, sym.StackOffset)
			}
		}
	}

	return sb.String()
}
