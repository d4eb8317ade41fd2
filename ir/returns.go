package ir

import "toyc/syntax"

// allPathsReturn reports whether every control-flow path through the
// statement ends in a return.  A block returns iff some prefix statement
// unconditionally returns; a conditional returns iff both branches do; a
// loop never guarantees a return since its body may not execute.
func allPathsReturn(stmt syntax.Stmt) bool {
	switch s := stmt.(type) {
	case *syntax.Return:
		return true
	case *syntax.Block:
		for _, inner := range s.Stmts {
			if allPathsReturn(inner) {
				return true
			}
		}
		return false
	case *syntax.If:
		return s.Else != nil && allPathsReturn(s.Then) && allPathsReturn(s.Else)
	default:
		return false
	}
}
