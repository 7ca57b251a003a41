package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor follows the NO_COLOR and CLICOLOR conventions; without
// either, color is used only on a terminal.
func ShouldUseColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji is false under CE_NO_EMOJI or when stdout is not a terminal.
func ShouldUseEmoji() bool {
	if os.Getenv("CE_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// DisableColor forces plain output, as for --json or --no-color.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// HasDarkBackground reports the terminal background as termenv sees it.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// TerminalWidth returns the stdout width, or fallback when unknown.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
