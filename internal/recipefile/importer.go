package recipefile

import (
	"context"
	"errors"
	"fmt"

	"github.com/collaboreats/collaboreats/internal/storage"
)

// Imported maps a file key to the id the store assigned.
type Imported struct {
	Key      string `json:"key"`
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
}

// Import creates every entry of f in store, parents before forks. Entries
// may fork entries listed after them. A fork_of that names no entry is
// looked up as an existing recipe id.
//
// Import stops at the first failure; entries created before it remain.
func Import(ctx context.Context, store storage.Storage, f *File, actor string) ([]Imported, error) {
	order, err := importOrder(f)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]string, len(f.Recipes))
	out := make([]Imported, 0, len(f.Recipes))
	for _, i := range order {
		e := f.Recipes[i]
		draft := e.Draft()

		if e.ForkOf == "" {
			if draft.OwnerID == "" {
				draft.OwnerID = actor
			}
			if err := store.CreateRecipe(ctx, draft, actor); err != nil {
				return out, fmt.Errorf("recipe %q: %w", e.Key, err)
			}
			ids[e.Key] = draft.ID
			out = append(out, Imported{Key: e.Key, ID: draft.ID})
			continue
		}

		parentID, local := ids[e.ForkOf]
		if !local {
			parentID = e.ForkOf
		}
		child, err := store.ForkRecipe(ctx, parentID, draft, actor)
		if err != nil {
			if !local && errors.Is(err, storage.ErrNotFound) {
				return out, fmt.Errorf("recipe %q: fork_of %q is neither a key in the file nor a stored recipe", e.Key, e.ForkOf)
			}
			return out, fmt.Errorf("recipe %q: %w", e.Key, err)
		}
		ids[e.Key] = child.ID
		out = append(out, Imported{Key: e.Key, ID: child.ID, ParentID: child.ParentID})
	}
	return out, nil
}

// importOrder returns entry indexes with every local parent ahead of its
// forks, keeping file order otherwise. Cycles are rejected.
func importOrder(f *File) ([]int, error) {
	index := make(map[string]int, len(f.Recipes))
	for i, e := range f.Recipes {
		index[e.Key] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(f.Recipes))
	order := make([]int, 0, len(f.Recipes))

	for start := range f.Recipes {
		if state[start] == done {
			continue
		}
		// Climb to the first ancestor that is already placed or external,
		// then emit the chain top-down.
		var chain []int
		for i := start; ; {
			if state[i] == visiting {
				return nil, fmt.Errorf("recipe %q: fork_of cycle", f.Recipes[i].Key)
			}
			if state[i] == done {
				break
			}
			state[i] = visiting
			chain = append(chain, i)
			p, ok := index[f.Recipes[i].ForkOf]
			if !ok {
				break
			}
			i = p
		}
		for j := len(chain) - 1; j >= 0; j-- {
			state[chain[j]] = done
			order = append(order, chain[j])
		}
	}
	return order, nil
}
