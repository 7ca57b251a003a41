package dolt

import (
	"context"
	"database/sql"

	"github.com/collaboreats/collaboreats/internal/storage/mysql"
)

// OpenServer connects to a running dolt sql-server. Every write is followed
// by a DOLT_COMMIT authored by the configured committer.
func OpenServer(ctx context.Context, server mysql.Config, cfg Config) (*Store, error) {
	cfg.applyDefaults()
	if server.Database == "" {
		server.Database = cfg.Database
	}
	author := authorString(cfg.CommitterName, cfg.CommitterEmail)

	server.IDPrefix = cfg.IDPrefix
	server.IDLength = cfg.IDLength
	server.Now = cfg.Now
	server.AfterWrite = func(ctx context.Context, db *sql.DB, message string) error {
		return commit(ctx, db, message, author)
	}

	s, err := mysql.Open(ctx, server)
	if err != nil {
		return nil, err
	}
	return &Store{Store: s, committer: author}, nil
}
