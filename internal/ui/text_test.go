package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateSimple(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short text unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncate with ellipsis", "hello world", 8, "hello..."},
		{"very short maxLen", "hello world", 3, "..."},
		{"empty string", "", 10, ""},
		{"unicode chars", "crème brûlée", 8, "crème..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateSimple(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateSimple(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Soak beans", FirstLine("Soak beans"))
	assert.Equal(t, "Soak beans …", FirstLine("Soak beans\nSimmer 2h"))
	assert.Equal(t, "Soak beans", FirstLine("  Soak beans  \n\n"))
	assert.Equal(t, "", FirstLine(""))
}

func TestTruncateLines(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "step")
	}
	text := strings.Join(lines, "\n")

	assert.Equal(t, text, TruncateLines(text, 20, 3))

	got := TruncateLines(text, 10, 3)
	assert.Contains(t, got, "14 lines hidden")
	assert.Equal(t, 7, strings.Count(got, "\n")+1)

	got = TruncateLines(text, 4, 3)
	assert.Equal(t, "step\nstep\nstep\nstep\n...", got)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "stir well", 20, "stir well"},
		{"wraps", "stir the pot gently until thick", 12, "stir the pot\ngently until\nthick"},
		{"long word alone", "supercalifragilistic mix", 10, "supercalifragilistic\nmix"},
		{"keeps breaks", "a b\nc d", 80, "a b\nc d"},
		{"default width", strings.Repeat("x ", 50), 0, strings.TrimSpace(strings.Repeat("x ", 40)) + "\n" + strings.TrimSpace(strings.Repeat("x ", 10))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.in, tt.width))
		})
	}
}
