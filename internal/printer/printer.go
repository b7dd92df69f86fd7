// Package printer renders styled console output for pkgmeta commands.
package printer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/indaco/pkgmeta/internal/tui"
)

// Style definitions for consistent console output across the application.
var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
	keyStyle     = lipgloss.NewStyle().Bold(true).Width(32)
)

// Destinations for the Print functions. When nil, the current os.Stdout
// and os.Stderr are used.
var (
	Out    io.Writer
	ErrOut io.Writer
)

func stdout() io.Writer {
	if Out != nil {
		return Out
	}
	return os.Stdout
}

func stderr() io.Writer {
	if ErrOut != nil {
		return ErrOut
	}
	return os.Stderr
}

// Configure picks the color profile. Color is disabled when noColor is set,
// when NO_COLOR is present in the environment, or when stdout is not a
// terminal.
func Configure(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		noColor = true
	}
	if noColor || !tui.IsTTY() {
		SetNoColor()
	}
}

// SetNoColor strips all styling from rendered text.
func SetNoColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Render functions return styled strings without printing.

// Faint returns text with faint styling.
func Faint(text string) string {
	return faintStyle.Render(text)
}

// Bold returns text with bold styling.
func Bold(text string) string {
	return boldStyle.Render(text)
}

// Success returns text with success (green) styling.
func Success(text string) string {
	return successStyle.Render(text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning returns text with warning (yellow) styling.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info returns text with info (cyan) styling.
func Info(text string) string {
	return infoStyle.Render(text)
}

// KeyValue renders a padded key followed by its value.
func KeyValue(key, value string) string {
	return keyStyle.Render(key) + value
}

// Print functions output styled text with a newline.

// PrintFaint prints text with faint styling.
func PrintFaint(text string) {
	fmt.Fprintln(stdout(), Faint(text))
}

// PrintBold prints text with bold styling.
func PrintBold(text string) {
	fmt.Fprintln(stdout(), Bold(text))
}

// PrintSuccess prints text with success (green) styling.
func PrintSuccess(text string) {
	fmt.Fprintln(stdout(), Success(text))
}

// PrintError prints text with error (red) styling to ErrOut.
func PrintError(text string) {
	fmt.Fprintln(stderr(), Error(text))
}

// PrintWarning prints text with warning (yellow) styling.
func PrintWarning(text string) {
	fmt.Fprintln(stdout(), Warning(text))
}

// PrintInfo prints text with info (cyan) styling.
func PrintInfo(text string) {
	fmt.Fprintln(stdout(), Info(text))
}

// suggester matches errors that carry a fix-it hint.
type suggester interface {
	Suggestion() string
}

// PrintFailure prints err in red, followed by its suggestion when the
// error chain carries one.
func PrintFailure(err error) {
	if err == nil {
		return
	}
	PrintError("Error: " + err.Error())

	var s suggester
	if errors.As(err, &s) {
		if hint := strings.TrimSpace(s.Suggestion()); hint != "" {
			fmt.Fprintln(stderr())
			fmt.Fprintln(stderr(), Faint(hint))
		}
	}
}
