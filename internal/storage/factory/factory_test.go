package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/storage/memory"
	"github.com/collaboreats/collaboreats/internal/storage/sqlstore"
)

func TestNew_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(ctx, BackendSQLite, Options{Path: dbPath})
	if err != nil {
		t.Fatalf("New(sqlite) failed: %v", err)
	}
	defer store.Close()

	if s, ok := store.(*sqlstore.Store); !ok || s.Dialect() != "sqlite" {
		t.Fatalf("New(sqlite) returned %T", store)
	}
}

func TestNew_EmptyBackendDefaultsToSQLite(t *testing.T) {
	store, err := New(context.Background(), "", Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("New('') failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*sqlstore.Store); !ok {
		t.Fatalf("New('') returned %T", store)
	}
}

func TestNew_Memory(t *testing.T) {
	store, err := New(context.Background(), " Memory ", Options{})
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if _, ok := store.(*memory.MemoryStorage); !ok {
		t.Fatalf("New(memory) returned %T", store)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "unknown-backend", Options{})
	if err == nil {
		t.Fatal("New(unknown) should return error")
	}
	if !strings.Contains(err.Error(), "unknown storage backend") || !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("error should mention unknown backend and list supported ones, got: %v", err)
	}
}

func TestNewWithOptions_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(ctx, BackendSQLite, Options{Path: dbPath})
	if err != nil {
		t.Fatalf("creating DB: %v", err)
	}
	store.Close()

	roStore, err := New(ctx, BackendSQLite, Options{Path: dbPath, ReadOnly: true})
	if err != nil {
		t.Fatalf("New(ReadOnly) failed: %v", err)
	}
	defer roStore.Close()
}

func TestRegisterBackend(t *testing.T) {
	called := false
	RegisterBackend("test-backend", func(ctx context.Context, opts Options) (storage.Storage, error) {
		called = true
		if opts.IDPrefix != "tb" {
			t.Errorf("IDPrefix = %q", opts.IDPrefix)
		}
		return memory.New(memory.Options{}), nil
	})
	t.Cleanup(func() { delete(backendRegistry, "test-backend") })

	store, err := New(context.Background(), "test-backend", Options{IDPrefix: "tb"})
	if err != nil {
		t.Fatalf("New(test-backend) failed: %v", err)
	}
	defer store.Close()
	if !called {
		t.Error("registered factory was not called")
	}
}

func TestBackendsListsBuiltins(t *testing.T) {
	got := strings.Join(Backends(), ",")
	for _, want := range []string{BackendDolt, BackendMemory, BackendMySQL, BackendSQLite} {
		if !strings.Contains(got, want) {
			t.Errorf("Backends() = %s, missing %s", got, want)
		}
	}
}
