package printer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// SetOutput redirects regular and error output. Nil keeps the current writer.
// Returns a function restoring the previous writers.
func SetOutput(stdout, stderr io.Writer) (restore func()) {
	prevOut, prevErr := out, errOut
	if stdout != nil {
		out = stdout
	}
	if stderr != nil {
		errOut = stderr
	}
	return func() {
		out, errOut = prevOut, prevErr
	}
}

// Out returns the writer regular output goes to.
func Out() io.Writer {
	return out
}

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Fprintf(out, "✓ %s", msg)
	} else {
		green.Fprint(out, msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

// Muted prints secondary information in a faint style
func Muted(format string, a ...any) {
	faint.Fprintf(out, format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Fprintf(errOut, "⚠️  %s", msg)
	} else {
		yellow.Fprint(errOut, msg)
	}
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext creates a formatted error with context details
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	// Print title in red to stderr
	red.Fprintf(errOut, "%s\n\n", title)

	// Print explanation
	if explanation != "" {
		fmt.Fprintf(errOut, "%s\n", explanation)
	}

	// Print context details, sorted for stable output
	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(errOut, "\n")
		for _, key := range keys {
			fmt.Fprintf(errOut, "  %s: %s\n", key, context[key])
		}
	}

	// Print suggestions
	if len(suggestions) > 0 {
		fmt.Fprintf(errOut, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(errOut, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(errOut, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(errOut, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return &ReportedError{Title: title}
}

// ReportedError is returned by Error and ErrorWithContext once the message
// has been printed.
type ReportedError struct {
	Title string
}

func (e *ReportedError) Error() string {
	return e.Title
}

// IsReported reports whether err was already printed for the user.
func IsReported(err error) bool {
	var re *ReportedError
	return errors.As(err, &re)
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Fprintf(out, "→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Fprintln(out, a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

// Swatch renders a two-cell block in the given #RRGGBB color. Strings that
// are not hex colors render as two spaces.
func Swatch(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "  "
	}
	return color.BgRGB(r, g, b).Sprint("  ")
}

func parseHex(hex string) (int, int, int, bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
