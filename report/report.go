package report

// Reporter accumulates compilation diagnostics for a single compiler run.
// Every run constructs its own Reporter: no diagnostic state is shared
// between compilations.  The compiler core is single-threaded, so the
// Reporter performs no synchronization of its own.
type Reporter struct {
	// The selected log level.  This must be one of the enumerated log
	// levels below.
	logLevel int

	// lines is the ordered list of error line numbers.  Adjacent duplicates
	// are filtered at insertion time.
	lines []int

	errorCount   int
	warningCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarning        // Displays warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages (default).
)

// LogLevelFromName converts a log level name from the command line into one
// of the enumerated log levels.  Unknown names default to verbose.
func LogLevelFromName(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warning":
		return LogLevelWarning
	default:
		return LogLevelVerbose
	}
}

// NewReporter creates a new reporter with the given log level.
func NewReporter(logLevel int) *Reporter {
	return &Reporter{logLevel: logLevel}
}

// -----------------------------------------------------------------------------

// Enumeration of compile error kinds.
const (
	ErrKindLex        = iota // unknown character or unclosed comment
	ErrKindSyntax            // grammar mismatch
	ErrKindName              // use of an undeclared variable or function
	ErrKindDefinition        // duplicate function definition
	ErrKindReturn            // return value disagrees with return type
	ErrKindMain              // missing `main` or bad `main` signature
)

// errKindLabels maps error kinds to their display labels.
var errKindLabels = map[int]string{
	ErrKindLex:        "Lex",
	ErrKindSyntax:     "Syntax",
	ErrKindName:       "Name",
	ErrKindDefinition: "Definition",
	ErrKindReturn:     "Return",
	ErrKindMain:       "Main",
}

// ReportError records a compile error on the given source line and displays
// it if the log level permits.  The line is appended to the error line list
// unless it equals the immediately preceding entry.
func (r *Reporter) ReportError(kind, line int, msg string) {
	r.errorCount++

	if len(r.lines) == 0 || r.lines[len(r.lines)-1] != line {
		r.lines = append(r.lines, line)
	}

	if r.logLevel >= LogLevelError {
		displayCompileError(errKindLabels[kind], line, msg)
	}
}

// ReportWarning displays a compile warning if the log level permits.
// Warnings never contribute to the error line list.
func (r *Reporter) ReportWarning(line int, msg string) {
	r.warningCount++

	if r.logLevel >= LogLevelWarning {
		displayCompileWarning(line, msg)
	}
}

// -----------------------------------------------------------------------------

// ShouldProceed indicates whether compilation may continue past parsing:
// true iff no errors have been reported.
func (r *Reporter) ShouldProceed() bool {
	return r.errorCount == 0
}

// ErrorCount returns the number of errors reported so far.
func (r *Reporter) ErrorCount() int {
	return r.errorCount
}

// ErrorLines returns the ordered, adjacent-duplicate-filtered list of error
// line numbers.
func (r *Reporter) ErrorLines() []int {
	return r.lines
}

// Verbose indicates whether the reporter was configured at verbose level.
func (r *Reporter) Verbose() bool {
	return r.logLevel == LogLevelVerbose
}
