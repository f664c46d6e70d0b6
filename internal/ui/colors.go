package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color scheme for postinstall
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
)

// InitColors initializes color settings based on environment
func InitColors() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintStep prints a step banner with position in the run
func PrintStep(step, total int, description string) {
	fmt.Fprintln(os.Stdout)
	Highlight.Fprintf(os.Stdout, "[%d/%d] ", step, total)
	Bold.Fprintln(os.Stdout, description)
}

// PrintStepSkipped marks a step satisfied from persisted state
func PrintStepSkipped(step, total int, description string) {
	fmt.Fprintln(os.Stdout)
	Highlight.Fprintf(os.Stdout, "[%d/%d] ", step, total)
	Muted.Fprintf(os.Stdout, "%s (already completed)\n", description)
}

// PrintPackageResult prints one package line: "name ... [OK]" style.
// detail is appended for SKIP/FAIL lines.
func PrintPackageResult(name, status, detail string) {
	var c *color.Color
	switch status {
	case "OK":
		c = Success
	case "SKIP", "DRY":
		c = Warning
	case "FAIL":
		c = Error
	default:
		c = Info
	}

	fmt.Fprintf(os.Stdout, "  %s ... ", name)
	if detail != "" {
		c.Fprintf(os.Stdout, "[%s] %s\n", status, detail)
		return
	}
	c.Fprintf(os.Stdout, "[%s]\n", status)
}

// PrintHeader prints a section header
func PrintHeader(text string) {
	fmt.Fprintln(os.Stdout)
	Bold.Fprintln(os.Stdout, text)
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(key, value string) {
	Bold.Fprintf(os.Stdout, "%s: ", key)
	fmt.Fprintln(os.Stdout, value)
}
