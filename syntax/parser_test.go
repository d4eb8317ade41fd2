package syntax

import (
	"testing"

	"toyc/report"
	"toyc/sem"
)

// parse runs the front end over the source with a silent reporter.
func parse(t *testing.T, src string) (*CompUnit, *report.Reporter) {
	t.Helper()

	rep := report.NewReporter(report.LogLevelSilent)
	toks := NewLexer(src, rep).Tokenize()
	unit := NewParser(toks, sem.NewSymbolTable(4), rep).Parse()
	return unit, rep
}

// checkReject asserts that the source is rejected with exactly the given
// error lines.
func checkReject(t *testing.T, src string, wantLines []int) {
	t.Helper()

	_, rep := parse(t, src)
	if rep.ShouldProceed() {
		t.Fatalf("program accepted, want reject with lines %v", wantLines)
	}

	got := rep.ErrorLines()
	if len(got) != len(wantLines) {
		t.Fatalf("error lines = %v, want %v", got, wantLines)
	}
	for i := range got {
		if got[i] != wantLines[i] {
			t.Fatalf("error lines = %v, want %v", got, wantLines)
		}
	}
}

// checkAccept asserts that the source parses without errors.
func checkAccept(t *testing.T, src string) *CompUnit {
	t.Helper()

	unit, rep := parse(t, src)
	if !rep.ShouldProceed() {
		t.Fatalf("program rejected with lines %v, want accept", rep.ErrorLines())
	}

	return unit
}

func TestMissingMain(t *testing.T) {
	checkReject(t, "int f() { return 0; }", []int{1})
}

func TestUndeclaredVariable(t *testing.T) {
	checkReject(t, "int main() {\n  x = 1;\n  return 0;\n}", []int{2})
}

func TestFactorial(t *testing.T) {
	unit := checkAccept(t, `
int fact(int n) {
  if (n <= 1) return 1;
  return n * fact(n - 1);
}
int main() { return fact(5); }
`)

	if len(unit.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(unit.Funcs))
	}
	if unit.Funcs[0].Name != "fact" || unit.Funcs[1].Name != "main" {
		t.Errorf("function names = %s, %s", unit.Funcs[0].Name, unit.Funcs[1].Name)
	}
	if len(unit.Funcs[0].Params) != 1 || unit.Funcs[0].Params[0].Name != "n" {
		t.Errorf("fact params = %v, want [n]", unit.Funcs[0].Params)
	}
}

func TestShortCircuitAccepts(t *testing.T) {
	checkAccept(t, `
int foo() { return 1; }
int main() {
  int x = 1;
  if (x || foo()) return 0;
  return 1;
}
`)
}

func TestUndeclaredCallee(t *testing.T) {
	checkReject(t, "int main() {\n  return foo();\n}", []int{2})
}

func TestDuplicateFunction(t *testing.T) {
	checkReject(t, "int f() { return 0; }\nint f() { return 1; }\nint main() { return 0; }", []int{2})
}

func TestReturnMismatch(t *testing.T) {
	// An `int` function must return a value; a `void` function must not.
	checkReject(t, "void f() {\n  return 1;\n}\nint main() { return 0; }", []int{2})
	checkReject(t, "int f() {\n  return;\n}\nint main() { return 0; }", []int{2})
}

func TestVoidReturn(t *testing.T) {
	checkAccept(t, "void f() { return; }\nint main() { return 0; }")
}

func TestBadMainSignature(t *testing.T) {
	checkReject(t, "int main(int x) { return 0; }", []int{1})
	checkReject(t, "void main() { return; }", []int{1})
}

func TestShadowingAccepts(t *testing.T) {
	checkAccept(t, `
int main() {
  int x = 1;
  {
    int x = 2;
    x = 3;
  }
  return x;
}
`)
}

func TestAssignVsExprStmt(t *testing.T) {
	checkAccept(t, `
int main() {
  int x = 1;
  x = 2;
  x + 1;
  return x;
}
`)
}

func TestDanglingElse(t *testing.T) {
	unit := checkAccept(t, `
int main() {
  if (1) if (0) return 1; else return 2;
  return 0;
}
`)

	// The else must bind to the inner if.
	outer := unit.Funcs[0].Body.Stmts[0].(*If)
	if outer.Else != nil {
		t.Error("else bound to the outer if, want inner")
	}

	inner := outer.Then.(*If)
	if inner.Else == nil {
		t.Error("inner if has no else branch")
	}
}

func TestErrorLinesDeduplicated(t *testing.T) {
	// Two errors on the same line collapse to one entry.
	_, rep := parse(t, "int main() {\n  x = y;\n  return 0;\n}")

	lines := rep.ErrorLines()
	for i := 1; i < len(lines); i++ {
		if lines[i] == lines[i-1] {
			t.Fatalf("adjacent duplicate line in %v", lines)
		}
		if lines[i] < lines[i-1] {
			t.Fatalf("error lines not in order: %v", lines)
		}
	}
}

func TestRecoveryFindsLaterErrors(t *testing.T) {
	// A syntax error in one statement must not mask errors further on.
	checkReject(t, `int main() {
  int x = ;
  y = 1;
  return 0;
}`, []int{2, 3})
}

func TestStrayVoidStatementRecovers(t *testing.T) {
	// `void` in statement position is a sync-point token; recovery must
	// consume it and finish the parse instead of spinning on it.
	checkReject(t, "int main() {\n  void x;\n  return 0;\n}", []int{2})
}

func TestFunctionNameAsVariableRejected(t *testing.T) {
	// A function name is not a variable: neither assignable nor readable.
	checkReject(t, "int f() { return 1; }\nint main() {\n  f = 1;\n  return f;\n}", []int{3, 4})
}

func TestLocalShadowsFunctionName(t *testing.T) {
	checkAccept(t, `
int f() { return 1; }
int main() {
  int f = 2;
  f = f + 1;
  return f;
}
`)
}

func TestLiteralWraparound(t *testing.T) {
	cases := []struct {
		lit  string
		want int32
	}{
		{"2147483647", 2147483647},
		{"2147483648", -2147483648},
		{"4294967295", -1},
		{"4294967296", 0},
		{"9223372036854775808", 0},
	}

	for _, c := range cases {
		unit := checkAccept(t, "int main() { return "+c.lit+"; }")

		ret := unit.Funcs[0].Body.Stmts[0].(*Return)
		lit := ret.Value.(*NumberLit)
		if lit.Value != c.want {
			t.Errorf("literal %s = %d, want %d", c.lit, lit.Value, c.want)
		}
	}
}

func TestCallArityWarns(t *testing.T) {
	_, rep := parse(t, "int f(int a) { return a; }\nint main() { return f(); }")

	if !rep.ShouldProceed() {
		t.Fatalf("arity mismatch rejected with lines %v, want accept with warning", rep.ErrorLines())
	}
}
