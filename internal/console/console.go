// Package console formats one-line status messages for the terminal.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// colorEnabled is decided once: stderr must be a terminal and NO_COLOR unset.
var colorEnabled = detectColor(os.Stderr)

func detectColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetColor forces colored output on or off.
func SetColor(on bool) { colorEnabled = on }

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

func render(style lipgloss.Style, prefix, msg string) string {
	if !colorEnabled {
		return prefix + " " + msg
	}
	return style.Render(prefix) + " " + msg
}

// FormatSuccessMessage prefixes msg with a check mark.
func FormatSuccessMessage(msg string) string { return render(successStyle, "✓", msg) }

// FormatInfoMessage prefixes msg with an info marker.
func FormatInfoMessage(msg string) string { return render(infoStyle, "ℹ", msg) }

// FormatWarningMessage prefixes msg with a warning marker.
func FormatWarningMessage(msg string) string { return render(warningStyle, "⚠", msg) }

// FormatErrorMessage prefixes msg with a cross.
func FormatErrorMessage(msg string) string { return render(errorStyle, "✗", msg) }

// Faint dims s when color is enabled.
func Faint(s string) string {
	if !colorEnabled {
		return s
	}
	return faintStyle.Render(s)
}
