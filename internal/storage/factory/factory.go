// Package factory provides functions for creating storage backends based on configuration.
package factory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/collaboreats/collaboreats/internal/config"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/memory"
	"github.com/collaboreats/collaboreats/internal/storage/mysql"
	"github.com/collaboreats/collaboreats/internal/storage/sqlite"
)

// Backend names accepted by the backend config key.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendDolt   = "dolt"
	BackendMemory = "memory"
)

// BackendFactory is a function that creates a storage backend
type BackendFactory func(ctx context.Context, opts Options) (storage.Storage, error)

// backendRegistry holds registered backend factories
var backendRegistry = make(map[string]BackendFactory)

// RegisterBackend registers a storage backend factory
func RegisterBackend(name string, factory BackendFactory) {
	backendRegistry[name] = factory
}

// Backends lists the registered backend names.
func Backends() []string {
	names := make([]string, 0, len(backendRegistry))
	for name := range backendRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configures how the storage backend is opened
type Options struct {
	Path     string // SQLite file or embedded Dolt directory
	ReadOnly bool
	IDPrefix string
	IDLength int
	Now      func() time.Time

	// MySQL is used by the mysql backend and by dolt in server mode.
	MySQL mysql.Config

	// Dolt server mode: connect to dolt sql-server at MySQL instead of
	// opening Path in process.
	DoltServer     bool
	DoltDatabase   string
	CommitterName  string
	CommitterEmail string
}

func init() {
	RegisterBackend(BackendSQLite, func(ctx context.Context, opts Options) (storage.Storage, error) {
		return sqlite.Open(ctx, sqlite.Config{
			Path:     opts.Path,
			ReadOnly: opts.ReadOnly,
			IDPrefix: opts.IDPrefix,
			IDLength: opts.IDLength,
			Now:      opts.Now,
		})
	})
	RegisterBackend(BackendMySQL, func(ctx context.Context, opts Options) (storage.Storage, error) {
		cfg := opts.MySQL
		cfg.IDPrefix = opts.IDPrefix
		cfg.IDLength = opts.IDLength
		cfg.Now = opts.Now
		return mysql.Open(ctx, cfg)
	})
	RegisterBackend(BackendMemory, func(_ context.Context, opts Options) (storage.Storage, error) {
		return memory.New(memory.Options{IDPrefix: opts.IDPrefix, IDLength: opts.IDLength, Now: opts.Now}), nil
	})
}

// New creates a storage backend of the given type.
func New(ctx context.Context, backend string, opts Options) (storage.Storage, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendSQLite
	}
	factory, ok := backendRegistry[backend]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s)", backend, strings.Join(Backends(), ", "))
	}
	return factory(ctx, opts)
}

// OptionsFromConfig maps the loaded configuration onto Options.
func OptionsFromConfig() (string, Options) {
	st := config.Store()
	opts := Options{
		Path:     st.Path,
		IDPrefix: st.IDPrefix,
		IDLength: st.IDLength,
		MySQL: mysql.Config{
			Host:     st.MySQL.Host,
			Port:     st.MySQL.Port,
			User:     st.MySQL.User,
			Password: st.MySQL.Password,
			Database: st.MySQL.Database,
			TLS:      st.MySQL.TLS,
		},
		DoltServer:     st.Dolt.Server,
		DoltDatabase:   st.Dolt.Database,
		CommitterName:  st.Dolt.CommitterName,
		CommitterEmail: st.Dolt.CommitterEmail,
	}
	if st.Backend == BackendDolt && st.Dolt.Path != "" {
		opts.Path = st.Dolt.Path
	}
	return st.Backend, opts
}

// NewFromConfig creates the storage backend named by the configuration.
func NewFromConfig(ctx context.Context) (storage.Storage, error) {
	backend, opts := OptionsFromConfig()
	return New(ctx, backend, opts)
}
