package ui

import (
	"charm.land/glamour/v2"
)

// maxReadableWidth caps markdown wrapping on wide terminals.
const maxReadableWidth = 100

// RenderMarkdown renders recipe instructions with glamour. Plain text comes
// back unchanged when color is off or rendering fails.
func RenderMarkdown(markdown string) string {
	if !ShouldUseColor() {
		return markdown
	}

	wrapWidth := min(TerminalWidth(80), maxReadableWidth)

	style := "light"
	if HasDarkBackground() {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
