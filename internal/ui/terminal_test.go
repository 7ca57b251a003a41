package ui

import (
	"os"
	"testing"
)

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		cliColor      string
		cliColorForce string
		wantColor     bool
	}{
		{name: "NO_COLOR disables color", noColor: "1", wantColor: false},
		{name: "CLICOLOR=0 disables color", cliColor: "0", wantColor: false},
		{name: "CLICOLOR_FORCE enables color even in non-TTY", cliColorForce: "1", wantColor: true},
		{name: "NO_COLOR takes precedence over CLICOLOR_FORCE", noColor: "1", cliColorForce: "1", wantColor: false},
		{name: "CLICOLOR_FORCE=0 is ignored", cliColorForce: "0", wantColor: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetForTest(t, "NO_COLOR", "CLICOLOR", "CLICOLOR_FORCE")
			if tt.noColor != "" {
				t.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.cliColor != "" {
				t.Setenv("CLICOLOR", tt.cliColor)
			}
			if tt.cliColorForce != "" {
				t.Setenv("CLICOLOR_FORCE", tt.cliColorForce)
			}

			if got := ShouldUseColor(); got != tt.wantColor {
				t.Errorf("ShouldUseColor() = %v, want %v", got, tt.wantColor)
			}
		})
	}
}

func TestShouldUseEmoji(t *testing.T) {
	t.Setenv("CE_NO_EMOJI", "1")
	if ShouldUseEmoji() {
		t.Error("CE_NO_EMOJI should disable emoji")
	}

	unsetForTest(t, "CE_NO_EMOJI")
	// go test stdout is not a terminal
	if ShouldUseEmoji() != IsTerminal() {
		t.Error("without CE_NO_EMOJI emoji should follow the TTY check")
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	if got := TerminalWidth(72); got != 72 {
		t.Errorf("TerminalWidth(72) = %d", got)
	}
}

// unsetForTest unsets keys for the duration of the test.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}
