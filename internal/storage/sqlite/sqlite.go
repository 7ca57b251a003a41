// Package sqlite opens the default, file-backed recipe store using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/sqlstore"
	_ "modernc.org/sqlite"
)

// Config holds SQLite store settings.
type Config struct {
	Path     string // Database file, or ":memory:"
	ReadOnly bool
	IDPrefix string
	IDLength int
	Now      func() time.Time
}

// Dialect describes SQLite to sqlstore.
var Dialect = sqlstore.Dialect{
	Name:         "sqlite",
	MigrationDir: "sqlite",
	IsDuplicate:  isDuplicate,
}

// Open opens (creating if needed) the SQLite database at cfg.Path and
// applies migrations.
func Open(ctx context.Context, cfg Config) (*sqlstore.Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", storage.SQLiteConnString(path, cfg.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory:
	// databases from splitting across pool connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s, err := sqlstore.New(ctx, db, sqlstore.Options{
		Dialect:  Dialect,
		IDPrefix: cfg.IDPrefix,
		IDLength: cfg.IDLength,
		Now:      cfg.Now,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
