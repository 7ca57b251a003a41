package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Server connections use go-sql-driver/mysql, which does not retry on its
// own. Transient errors (stale pool connections, brief network issues,
// server restarts) are retried for up to retryMaxElapsed.
const retryMaxElapsed = 30 * time.Second

func newRetryBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// IsRetryableError returns true if the error is a transient connection error.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, transient := range []string{
		"driver: bad connection",
		"invalid connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"database is read only", // dolt under load, clears after restart
		"lost connection",       // MySQL 2013
		"gone away",             // MySQL 2006
		"i/o timeout",
	} {
		if strings.Contains(errStr, transient) {
			return true
		}
	}
	return false
}

// withRetry executes op, retrying transient errors when the store was
// opened with Retry.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	if !s.opts.Retry {
		return op()
	}

	return backoff.Retry(func() error {
		err := op()
		if err != nil && IsRetryableError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(newRetryBackoff(), ctx))
}

func (s *Store) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := s.withRetry(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return result, err
}

func (s *Store) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	var rows *sql.Rows
	err := s.withRetry(ctx, func() error {
		var queryErr error
		rows, queryErr = s.db.QueryContext(ctx, query, args...)
		return queryErr
	})
	return rows, err
}

// queryRowContext runs a single-row query. The scan function receives the
// *sql.Row and should call .Scan() on it.
func (s *Store) queryRowContext(ctx context.Context, scan func(*sql.Row) error, query string, args ...any) error {
	return s.withRetry(ctx, func() error {
		return scan(s.db.QueryRowContext(ctx, query, args...))
	})
}
