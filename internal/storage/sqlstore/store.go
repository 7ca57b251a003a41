// Package sqlstore implements storage.Storage on top of database/sql.
//
// One implementation serves every SQL backend. The sqlite, mysql and dolt
// packages open the connection, pick a Dialect and hand the handle to New.
// All queries use ? placeholders, which every supported driver accepts.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync/atomic"
	"time"

	"github.com/collaboreats/collaboreats/internal/idgen"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/sqlstore/migrations"
)

// Dialect captures what differs between SQL engines.
type Dialect struct {
	Name string

	// MigrationDir is the directory under migrations.FS holding this
	// dialect's schema.
	MigrationDir string

	// IsDuplicate reports whether err is a primary-key violation.
	IsDuplicate func(err error) bool
}

// Options configures a Store.
type Options struct {
	Dialect Dialect

	// Retry enables backoff on transient connection errors. Server
	// connections want it; embedded engines do their own.
	Retry bool

	IDPrefix string
	IDLength int

	// AfterWrite, if set, runs after every successful write with a short
	// description of the change. Versioned backends commit here.
	AfterWrite func(ctx context.Context, message string) error

	// Now overrides the clock, for tests.
	Now func() time.Time

	// MigrationFS overrides the embedded migrations, for tests.
	MigrationFS fs.FS
}

// Store is a storage.Storage backed by a *sql.DB.
type Store struct {
	db     *sql.DB
	opts   Options
	ids    idgen.Generator
	closed atomic.Bool
}

var _ storage.Storage = (*Store)(nil)

// New applies the dialect's migrations to db and returns a store using it.
// The store takes ownership of db and closes it on Close.
func New(ctx context.Context, db *sql.DB, opts Options) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db is required")
	}
	if opts.Dialect.MigrationDir == "" {
		return nil, fmt.Errorf("dialect %q has no migrations", opts.Dialect.Name)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	migrationFS := opts.MigrationFS
	if migrationFS == nil {
		migrationFS = migrations.FS
	}

	s := &Store{db: db, opts: opts}
	s.ids = idgen.Generator{Prefix: opts.IDPrefix, Length: opts.IDLength, Exists: s.exists}

	err := s.withRetry(ctx, func() error {
		return ApplyMigrations(ctx, db, migrationFS, opts.Dialect.MigrationDir)
	})
	if err != nil {
		return nil, fmt.Errorf("run %s migrations: %w", opts.Dialect.Name, err)
	}
	return s, nil
}

// DB exposes the underlying handle for backend-specific queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect name the store was opened with.
func (s *Store) Dialect() string {
	return s.opts.Dialect.Name
}

// Close closes the database handle. It is safe to call more than once.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready() error {
	if s == nil || s.db == nil || s.closed.Load() {
		return storage.ErrNotInitialized
	}
	return nil
}

func (s *Store) now() time.Time {
	return s.opts.Now().UTC()
}

func (s *Store) afterWrite(ctx context.Context, format string, args ...any) error {
	if s.opts.AfterWrite == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if err := s.opts.AfterWrite(ctx, msg); err != nil {
		return fmt.Errorf("after write (%s): %w", msg, err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
