package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/collaboreats/collaboreats/internal/render"
	"github.com/collaboreats/collaboreats/internal/storage/factory"
	"github.com/collaboreats/collaboreats/internal/ui"
)

const watchDebounce = 300 * time.Millisecond

// watchTree redraws the tree whenever the database directory is written to.
// Only file-backed stores can be watched.
func watchTree(ctx context.Context, id string, format render.Format) error {
	backend, opts := factory.OptionsFromConfig()
	if backend == factory.BackendMySQL || backend == factory.BackendMemory || opts.DoltServer {
		return fmt.Errorf("--watch needs a file-backed store, not %s", backend)
	}
	dir := opts.Path
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	// Dolt keeps its chunk files a few directories down.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	sqliteOnly := backend == "" || backend == factory.BackendSQLite

	redraw := func() {
		if ui.IsTerminal() {
			fmt.Print("\033[H\033[2J")
		}
		if err := showTree(ctx, id, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "\nWatching for changes... (Press Ctrl+C to exit)\n")
	}
	redraw()

	// Debounce rapid changes; redraws run on this goroutine only.
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if sqliteOnly && !isSQLiteFile(filepath.Base(event.Name)) {
				continue
			}
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			redraw()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			WarnError("watcher: %v", err)
		}
	}
}

// isSQLiteFile matches the database and its -wal/-shm/-journal siblings.
func isSQLiteFile(name string) bool {
	return strings.HasSuffix(name, ".db") || strings.Contains(name, ".db-")
}
