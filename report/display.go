package report

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console.  This is used
// for driver-level failures (bad usage, I/O, config), not compile errors.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console.
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------
// All rich diagnostic output goes to stderr so that the machine-readable
// protocol on stdout (accept/reject lists, token and IR dumps) stays clean.

// displayCompileError displays a single compile error with its kind label
// and source line.
func displayCompileError(kindLabel string, line int, msg string) {
	fmt.Fprint(os.Stderr, ErrorStyleBG.Sprint(kindLabel+" Error"))
	fmt.Fprintln(os.Stderr, ErrorColorFG.Sprintf(" [line %d] %s", line, msg))
}

// displayCompileWarning displays a single compile warning.
func displayCompileWarning(line int, msg string) {
	fmt.Fprint(os.Stderr, WarnStyleBG.Sprint("Warning"))
	fmt.Fprintln(os.Stderr, WarnColorFG.Sprintf(" [line %d] %s", line, msg))
}
