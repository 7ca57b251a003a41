//go:build cgo

package dolt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	embedded "github.com/dolthub/driver"

	"github.com/collaboreats/collaboreats/internal/storage/sqlstore"
)

const embeddedOpenMaxElapsed = 30 * time.Second

func newEmbeddedOpenBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = embeddedOpenMaxElapsed
	return bo
}

// Open opens an embedded Dolt database under cfg.Path, creating the
// directory, database and schema as needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	cfg.applyDefaults()

	if info, err := os.Stat(cfg.Path); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("database path %q is a file, not a directory", cfg.Path)
	}
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	// The driver sets its working directory to the DSN path; a relative path
	// would be applied twice.
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	query := url.Values{}
	query.Set("commitname", cfg.CommitterName)
	query.Set("commitemail", cfg.CommitterEmail)
	initDSN := "file://" + absPath + "?" + query.Encode()
	query.Set("database", cfg.Database)
	dbDSN := "file://" + absPath + "?" + query.Encode()

	if !cfg.ReadOnly {
		err := withEmbeddedDolt(ctx, initDSN, func(ctx context.Context, db *sql.DB) error {
			_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Database))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("create dolt database: %w", err)
		}
	}

	db, connector, err := openEmbeddedConnection(dbDSN)
	if err != nil {
		return nil, err
	}
	// The driver reuses the context of the first Connect for the session, so
	// never open it with a caller context that may be canceled.
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		_ = connector.Close()
		return nil, fmt.Errorf("ping dolt database: %w", err)
	}

	author := authorString(cfg.CommitterName, cfg.CommitterEmail)
	s, err := sqlstore.New(ctx, db, sqlstore.Options{
		Dialect:  sqlstore.Dialect{Name: "dolt", MigrationDir: "mysql", IsDuplicate: isDuplicate},
		IDPrefix: cfg.IDPrefix,
		IDLength: cfg.IDLength,
		Now:      cfg.Now,
		AfterWrite: func(ctx context.Context, message string) error {
			return commit(ctx, db, message, author)
		},
	})
	if err != nil {
		_ = db.Close()
		_ = connector.Close()
		return nil, err
	}
	if !cfg.ReadOnly {
		if err := commit(ctx, db, "schema", author); err != nil {
			_ = s.Close()
			_ = connector.Close()
			return nil, err
		}
	}
	return &Store{Store: s, committer: author, release: connector.Close}, nil
}

func openEmbeddedConnection(dsn string) (*sql.DB, *embedded.Connector, error) {
	openCfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse dolt DSN: %w", err)
	}
	openCfg.BackOff = newEmbeddedOpenBackoff()

	connector, err := embedded.NewConnector(openCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create dolt connector: %w", err)
	}
	db := sql.OpenDB(connector)
	// Embedded Dolt is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, connector, nil
}

// withEmbeddedDolt runs fn against a connector that lives only for the call,
// releasing the engine's filesystem locks afterwards.
func withEmbeddedDolt(ctx context.Context, dsn string, fn func(ctx context.Context, db *sql.DB) error) (err error) {
	db, connector, err := openEmbeddedConnection(dsn)
	if err != nil {
		return err
	}
	defer func() {
		cerr := errors.Join(ignoreContextCanceled(db.Close()), ignoreContextCanceled(connector.Close()))
		err = errors.Join(err, cerr)
	}()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	return fn(ctx, db)
}

func ignoreContextCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
