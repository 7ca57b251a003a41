package ui

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TruncateSimple cuts text to maxLen runes with a "..." suffix.
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// FirstLine returns the first line of text, marking that more follows.
func FirstLine(text string) string {
	line, rest, found := strings.Cut(strings.TrimSpace(text), "\n")
	if found && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(line) + " …"
	}
	return strings.TrimSpace(line)
}

// TruncateLines keeps the first and last contextLines of text when it has
// more than maxLines lines, with a muted marker in between.
func TruncateLines(text string, maxLines, contextLines int) string {
	lines := strings.Split(text, "\n")
	if text == "" || len(lines) <= maxLines {
		return text
	}
	if contextLines < 1 || maxLines < contextLines*2+1 {
		return strings.Join(lines[:maxLines], "\n") + "\n..."
	}

	hidden := len(lines) - 2*contextLines
	var b strings.Builder
	b.WriteString(strings.Join(lines[:contextLines], "\n"))
	b.WriteString("\n")
	b.WriteString(RenderMuted("... (" + strconv.Itoa(hidden) + " lines hidden) ..."))
	b.WriteString("\n")
	b.WriteString(strings.Join(lines[len(lines)-contextLines:], "\n"))
	return b.String()
}

// WrapText wraps text at word boundaries to fit within maxWidth.
// Existing line breaks are kept.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, maxWidth)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var b strings.Builder
	width := 0
	for _, word := range strings.Fields(line) {
		n := utf8.RuneCountInString(word)
		switch {
		case width == 0:
			// A word longer than the line still gets a line of its own.
		case width+1+n <= maxWidth:
			b.WriteString(" ")
			width++
		default:
			b.WriteString("\n")
			width = 0
		}
		b.WriteString(word)
		width += n
	}
	return b.String()
}
