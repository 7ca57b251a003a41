// Package ui provides terminal styling for ce CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
var (
	ColorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	ColorOwner = lipgloss.AdaptiveColor{Light: "#a37acc", Dark: "#d2a6ff"}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	OwnerStyle  = lipgloss.NewStyle().Foreground(ColorOwner)

	// CategoryStyle for section headers
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	TitleStyle    = lipgloss.NewStyle().Bold(true)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconFork = "⑂"
)

const SeparatorLight = "──────────────────────────────────────────"

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }
func RenderOwner(s string) string  { return OwnerStyle.Render("@" + s) }
func RenderTitle(s string) string  { return TitleStyle.Render(s) }

// RenderCategory renders a section header in uppercase with accent color.
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color.
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// RenderID styles a recipe id; roots are bold.
func RenderID(id string, root bool) string {
	if root {
		return AccentStyle.Bold(true).Render(id)
	}
	return AccentStyle.Render(id)
}

// RenderDepth renders a fork depth badge such as "v3". The root is "root".
func RenderDepth(depth int) string {
	if depth == 0 {
		return MutedStyle.Render("root")
	}
	return MutedStyle.Render(fmt.Sprintf("v%d", depth))
}

// RenderWarnLine prefixes s with the warning icon.
func RenderWarnLine(s string) string {
	return WarnStyle.Render(icon(IconWarn, "!")) + " " + s
}

// RenderPassLine prefixes s with the pass icon.
func RenderPassLine(s string) string {
	return PassStyle.Render(icon(IconPass, "ok")) + " " + s
}

func icon(emoji, plain string) string {
	if ShouldUseEmoji() {
		return emoji
	}
	return plain
}
