// Package debug holds the CLI's verbosity switches and the append-only
// events.log kept in the project data directory.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	enabled     = os.Getenv("CE_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex

	stderr io.Writer = os.Stderr
	stdout io.Writer = os.Stdout
)

// Enabled reports whether CE_DEBUG or --verbose is on.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetOutput redirects package output; nil restores the process streams.
func SetOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout, stderr = out, errOut
}

func Logf(format string, args ...interface{}) {
	if Enabled() {
		fmt.Fprintf(stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Fprintf(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Fprintln(stdout, args...)
	}
}

// Event codes written to events.log.
const (
	EventCreate  = "recipe.create"
	EventFork    = "recipe.fork"
	EventComment = "recipe.comment"
	EventImport  = "recipe.import"
	EventTree    = "tree.build"
	EventInit    = "store.init"
)

// LogEvent appends a line to <dataDir>/events.log:
//
//	TIMESTAMP|EVENT_CODE|RECIPE_ID|ACTOR|DETAILS
//
// Failures are ignored; the log never interrupts a command.
func LogEvent(dataDir, eventCode, recipeID, actor, details string) {
	if dataDir == "" {
		return
	}
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		return
	}
	if recipeID == "" {
		recipeID = "none"
	}
	if actor == "" {
		actor = "unknown"
	}
	details = strings.ReplaceAll(details, "\n", " ")

	line := fmt.Sprintf("%s|%s|%s|%s|%s\n",
		time.Now().UTC().Format(time.RFC3339), eventCode, recipeID, actor, details)

	logMutex.Lock()
	defer logMutex.Unlock()

	file, err := os.OpenFile(filepath.Join(dataDir, "events.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304
	if err != nil {
		return
	}
	defer file.Close()

	_, _ = file.WriteString(line)
}
