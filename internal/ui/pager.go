package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls pager behavior
type PagerOptions struct {
	// NoPager disables pager for this command (--no-pager flag)
	NoPager bool

	// Out receives content that is not paged; defaults to os.Stdout.
	Out io.Writer
}

// shouldUsePager is false for --no-pager, CE_NO_PAGER, a redirected Out,
// or a non-TTY stdout.
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("CE_NO_PAGER") != "" {
		return false
	}
	if opts.Out != nil && opts.Out != io.Writer(os.Stdout) {
		return false
	}
	return IsTerminal()
}

// getPagerCommand returns CE_PAGER, then PAGER, then less.
func getPagerCommand() string {
	if pager := os.Getenv("CE_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// getTerminalHeight returns 0 when stdout is not a TTY.
func getTerminalHeight() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	_, height, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return height
}

func contentHeight(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// ToPager pipes content to a pager when stdout is a terminal and content
// does not fit on one screen; otherwise it writes content to opts.Out.
func ToPager(content string, opts PagerOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if !shouldUsePager(opts) {
		_, err := fmt.Fprint(out, content)
		return err
	}
	if h := getTerminalHeight(); h > 0 && contentHeight(content) <= h-1 {
		_, err := fmt.Fprint(out, content)
		return err
	}

	parts := strings.Fields(getPagerCommand())
	if len(parts) == 0 {
		_, err := fmt.Fprint(out, content)
		return err
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// -R keeps ANSI colors, -F quits when content fits, -X keeps the screen.
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}
