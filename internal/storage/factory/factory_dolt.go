package factory

import (
	"context"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/dolt"
)

func init() {
	RegisterBackend(BackendDolt, func(ctx context.Context, opts Options) (storage.Storage, error) {
		cfg := dolt.Config{
			Path:           opts.Path,
			Database:       opts.DoltDatabase,
			CommitterName:  opts.CommitterName,
			CommitterEmail: opts.CommitterEmail,
			ReadOnly:       opts.ReadOnly,
			IDPrefix:       opts.IDPrefix,
			IDLength:       opts.IDLength,
			Now:            opts.Now,
		}
		if opts.DoltServer {
			return dolt.OpenServer(ctx, opts.MySQL, cfg)
		}
		return dolt.Open(ctx, cfg)
	})
}
