package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/collaboreats/collaboreats/internal/forktree"
	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/storage"
)

// hintError carries an actionable suggestion printed after the error.
type hintError struct {
	err  error
	hint string
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }

// withHint attaches hint to err.
//
//	return withHint(err, "Run 'ce init' to create a database")
func withHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &hintError{err: err, hint: hint}
}

// errorCode classifies err for --json error output.
func errorCode(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, storage.ErrInvalid):
		return "INVALID"
	case errors.Is(err, storage.ErrNotRoot):
		return "NOT_ROOT"
	case errors.Is(err, storage.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, storage.ErrNotInitialized):
		return "NOT_INITIALIZED"
	case errors.Is(err, forktree.ErrIncomplete):
		return "INCOMPLETE_TREE"
	case errors.Is(err, fork.ErrBrokenAncestry), errors.Is(err, fork.ErrMissingRoot):
		return "BROKEN_ANCESTRY"
	}
	return "ERROR"
}

// reportError writes err to stderr, as {"error", "code"} under --json.
func reportError(err error) {
	var he *hintError
	hasHint := errors.As(err, &he)

	if jsonOutput {
		errObj := map[string]string{"error": err.Error(), "code": errorCode(err)}
		if hasHint {
			errObj["hint"] = he.hint
		}
		encoder := json.NewEncoder(os.Stderr)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(errObj) // Best effort: nothing else to report to
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hasHint {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", he.hint)
	}
}

// WarnError writes a warning message to stderr and returns.
// Use this for optional operations that enhance functionality but aren't required.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
