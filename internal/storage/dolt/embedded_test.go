//go:build cgo

package dolt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/testutil/teststore"
	"github.com/collaboreats/collaboreats/internal/types"
)

func openEmbedded(t *testing.T, now func() time.Time) storage.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("embedded dolt is slow")
	}
	s, err := Open(context.Background(), Config{
		Path:           t.TempDir(),
		CommitterName:  "test",
		CommitterEmail: "test@example.com",
		Now:            now,
	})
	if err != nil {
		t.Fatalf("open embedded dolt: %v", err)
	}
	return s
}

func TestConformanceEmbedded(t *testing.T) {
	teststore.Run(t, openEmbedded)
}

func TestWritesAreCommitted(t *testing.T) {
	s := openEmbedded(t, time.Now).(*Store)
	defer s.Close()
	ctx := context.Background()

	root := &types.Recipe{Title: "Risotto", OwnerID: "gio"}
	if err := s.CreateRecipe(ctx, root, "gio"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.ForkRecipe(ctx, root.ID, &types.Recipe{Title: "Mushroom risotto"}, "ana"); err != nil {
		t.Fatalf("fork: %v", err)
	}

	log, err := s.Log(ctx, 5)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(log) < 2 {
		t.Fatalf("log has %d commits, want at least 2", len(log))
	}
	if !strings.HasPrefix(log[0].Message, "fork ") || !strings.HasSuffix(log[0].Message, " from "+root.ID) || log[0].Committer != "test" {
		t.Errorf("latest commit = %+v", log[0])
	}
	if log[1].Message != "create recipe "+root.ID {
		t.Errorf("previous commit message = %q", log[1].Message)
	}
}
