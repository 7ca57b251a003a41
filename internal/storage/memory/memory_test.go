package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/testutil/teststore"
	"github.com/collaboreats/collaboreats/internal/types"
)

func TestConformance(t *testing.T) {
	teststore.Run(t, func(t *testing.T, now func() time.Time) storage.Storage {
		return New(Options{Now: now})
	})
}

func TestConcurrentForks(t *testing.T) {
	ctx := context.Background()
	m := New(Options{})
	root := &types.Recipe{Title: "Bread", OwnerID: "ana"}
	if err := m.CreateRecipe(ctx, root, "ana"); err != nil {
		t.Fatalf("create root: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.ForkRecipe(ctx, root.ID, &types.Recipe{}, "bo"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("fork: %v", err)
	}

	set, err := m.GetVersionTree(ctx, root.ID)
	if err != nil {
		t.Fatalf("version tree: %v", err)
	}
	if len(set.Records) != n {
		t.Errorf("got %d forks, want %d", len(set.Records), n)
	}
}
