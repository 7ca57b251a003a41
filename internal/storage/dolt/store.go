// Package dolt stores recipes in a Dolt database, so every create, fork and
// comment becomes a commit in the database's own history.
//
// Two connection modes:
//   - Embedded: in-process engine via github.com/dolthub/driver (requires cgo)
//   - Server: a running dolt sql-server over the MySQL protocol
package dolt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/sqlstore"
)

// Config holds Dolt database configuration.
type Config struct {
	Path           string // Database directory (embedded mode)
	Database       string // Database name within Dolt (default: collaboreats)
	CommitterName  string
	CommitterEmail string
	ReadOnly       bool

	IDPrefix string
	IDLength int
	Now      func() time.Time
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "collaboreats"
	}
	if c.CommitterName == "" {
		c.CommitterName = os.Getenv("GIT_AUTHOR_NAME")
		if c.CommitterName == "" {
			c.CommitterName = "collaboreats"
		}
	}
	if c.CommitterEmail == "" {
		c.CommitterEmail = os.Getenv("GIT_AUTHOR_EMAIL")
		if c.CommitterEmail == "" {
			c.CommitterEmail = "collaboreats@local"
		}
	}
}

// Store is a recipe store whose writes are committed to Dolt history.
type Store struct {
	*sqlstore.Store

	committer string
	release   func() error // closes the embedded engine; nil in server mode
}

var _ storage.VersionedStorage = (*Store)(nil)

// Commit records all working-set changes. An empty working set is not an error.
func (s *Store) Commit(ctx context.Context, message string) error {
	return commit(ctx, s.DB(), message, s.committer)
}

func commit(ctx context.Context, db *sql.DB, message, author string) error {
	// Dolt defaults the author to the SQL user; pass one explicitly for
	// deterministic history.
	_, err := db.ExecContext(ctx, "CALL DOLT_COMMIT('-Am', ?, '--author', ?)", message, author)
	if err != nil && !isNothingToCommit(err) {
		return fmt.Errorf("dolt commit: %w", err)
	}
	return nil
}

// Log returns recent commits, newest first.
func (s *Store) Log(ctx context.Context, limit int) ([]storage.CommitInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB().QueryContext(ctx, `
		SELECT commit_hash, committer, email, date, message
		FROM dolt_log
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("dolt log: %w", err)
	}
	defer rows.Close()

	var commits []storage.CommitInfo
	for rows.Next() {
		var c storage.CommitInfo
		if err := rows.Scan(&c.Hash, &c.Committer, &c.Email, &c.Date, &c.Message); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

// Close closes the connection and, in embedded mode, the engine.
func (s *Store) Close() error {
	err := CloseWithTimeout("db", s.Store.Close)
	if s.release != nil {
		if cerr := CloseWithTimeout("embedded connector", s.release); cerr != nil && !errors.Is(cerr, context.Canceled) {
			err = errors.Join(err, cerr)
		}
		s.release = nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func authorString(name, email string) string {
	return fmt.Sprintf("%s <%s>", name, email)
}

func isNothingToCommit(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "nothing to commit")
}

// isDuplicate matches the embedded engine's primary-key violation, which
// does not surface as a MySQL error number.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate primary key") || strings.Contains(msg, "duplicate entry")
}

// CloseTimeout bounds how long Close waits; the embedded engine can hang
// during shutdown.
const CloseTimeout = 5 * time.Second

// CloseWithTimeout runs closeFn, giving up after CloseTimeout.
func CloseWithTimeout(name string, closeFn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- closeFn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(CloseTimeout):
		return fmt.Errorf("%s close timed out after %v", name, CloseTimeout)
	}
}
