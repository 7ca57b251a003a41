// Package memory implements storage.Storage in process memory. It backs
// tests and `--backend memory` sessions; nothing is persisted.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/idgen"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/types"
)

// Options configures a MemoryStorage.
type Options struct {
	IDPrefix string
	IDLength int
	Now      func() time.Time
}

// MemoryStorage keeps recipes and comments in maps guarded by one RWMutex.
// Every value crossing the API boundary is cloned.
type MemoryStorage struct {
	mu       sync.RWMutex
	recipes  map[string]*types.Recipe
	order    []string // ids in insertion order
	comments map[string][]*types.Comment
	nextID   int64
	closed   bool

	ids idgen.Generator
	now func() time.Time
}

var _ storage.Storage = (*MemoryStorage)(nil)

// New returns an empty store.
func New(opts Options) *MemoryStorage {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &MemoryStorage{
		recipes:  make(map[string]*types.Recipe),
		comments: make(map[string][]*types.Comment),
		now:      func() time.Time { return opts.Now().UTC().Truncate(time.Millisecond) },
	}
	// Called with mu held.
	m.ids = idgen.Generator{
		Prefix: opts.IDPrefix,
		Length: opts.IDLength,
		Exists: func(_ context.Context, id string) (bool, error) {
			_, ok := m.recipes[id]
			return ok, nil
		},
	}
	return m
}

// CreateRecipe stores a copy of recipe, filling in id, tree id and timestamps.
func (m *MemoryStorage) CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe is required", storage.ErrInvalid)
	}
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("%w: recipe: %w", storage.ErrInvalid, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrNotInitialized
	}
	return m.createLocked(ctx, recipe)
}

func (m *MemoryStorage) createLocked(ctx context.Context, recipe *types.Recipe) error {
	if recipe.IsRoot() {
		recipe.Path = []string{}
	} else {
		parent, ok := m.recipes[recipe.ParentID]
		if !ok {
			return fmt.Errorf("load parent %s: recipe %s: %w", recipe.ParentID, recipe.ParentID, storage.ErrNotFound)
		}
		if err := fork.CheckAncestry(parent, recipe); err != nil {
			return err
		}
		recipe.TreeID = parent.RootID()
	}

	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = m.now()
	}
	if recipe.UpdatedAt.IsZero() {
		recipe.UpdatedAt = recipe.CreatedAt
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []types.Ingredient{}
	}

	if recipe.ID == "" {
		id, err := m.ids.Generate(ctx, recipe.Title, recipe.OwnerID, recipe.ParentID, recipe.CreatedAt)
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		recipe.ID = id
	} else if _, taken := m.recipes[recipe.ID]; taken {
		return fmt.Errorf("recipe %s: %w", recipe.ID, storage.ErrConflict)
	}
	if recipe.IsRoot() {
		recipe.TreeID = recipe.ID
	}

	m.recipes[recipe.ID] = recipe.Clone()
	m.order = append(m.order, recipe.ID)
	return nil
}

// ForkRecipe creates a new version of parentID.
func (m *MemoryStorage) ForkRecipe(ctx context.Context, parentID string, draft *types.Recipe, actor string) (*types.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, storage.ErrNotInitialized
	}

	parent, ok := m.recipes[parentID]
	if !ok {
		return nil, fmt.Errorf("recipe %s: %w", parentID, storage.ErrNotFound)
	}
	child, err := fork.New(parent, draft)
	if err != nil {
		return nil, err
	}
	if child.OwnerID == "" {
		child.OwnerID = actor
	}
	if err := child.Validate(); err != nil {
		return nil, fmt.Errorf("%w: recipe: %w", storage.ErrInvalid, err)
	}
	if err := m.createLocked(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// GetRecipe returns a copy of the recipe with id.
func (m *MemoryStorage) GetRecipe(_ context.Context, id string) (*types.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrNotInitialized
	}
	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %s: %w", id, storage.ErrNotFound)
	}
	return r.Clone(), nil
}

// ListRecipes returns copies of the recipes matching filter.
func (m *MemoryStorage) ListRecipes(_ context.Context, filter types.RecipeFilter) ([]*types.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrNotInitialized
	}

	out := []*types.Recipe{}
	for _, id := range m.order {
		r := m.recipes[id]
		if filter.OwnerID != "" && r.OwnerID != filter.OwnerID {
			continue
		}
		if filter.RootsOnly && !r.IsRoot() {
			continue
		}
		if filter.TreeID != "" && r.TreeID != filter.TreeID {
			continue
		}
		if filter.CreatedAfter != nil && r.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		out = append(out, r.Clone())
	}

	types.SortRecipes(out, filter.Sort)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// GetVersionTree returns the root and the rest of its tree in creation order.
func (m *MemoryStorage) GetVersionTree(_ context.Context, rootID string) (*types.VersionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, err := m.rootLocked(rootID)
	if err != nil {
		return nil, err
	}
	return &types.VersionSet{Root: root.Clone(), Records: m.treeLocked(root.ID, false)}, nil
}

// MostRecentVersion returns the newest version in the tree.
func (m *MemoryStorage) MostRecentVersion(_ context.Context, rootID string) (*types.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, err := m.rootLocked(rootID)
	if err != nil {
		return nil, err
	}
	newest := root
	for _, r := range m.treeLocked(root.ID, true) {
		if c := r.CreatedAt.Compare(newest.CreatedAt); c > 0 || (c == 0 && r.ID > newest.ID) {
			newest = r
		}
	}
	return newest.Clone(), nil
}

// MostForkedVersion returns the version with the most direct forks, the
// older one on ties.
func (m *MemoryStorage) MostForkedVersion(_ context.Context, rootID string) (*types.ForkCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, err := m.rootLocked(rootID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, r := range m.treeLocked(root.ID, false) {
		counts[r.ParentID]++
	}

	best := &types.ForkCount{Recipe: root, Forks: 0}
	for parentID, n := range counts {
		p := m.recipes[parentID]
		switch {
		case n > best.Forks:
		case n == best.Forks && best.Forks > 0 && olderThan(p, best.Recipe):
		default:
			continue
		}
		best = &types.ForkCount{Recipe: p, Forks: n}
	}
	best.Recipe = best.Recipe.Clone()
	return best, nil
}

func olderThan(a, b *types.Recipe) bool {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (m *MemoryStorage) rootLocked(rootID string) (*types.Recipe, error) {
	if m.closed {
		return nil, storage.ErrNotInitialized
	}
	root, ok := m.recipes[rootID]
	if !ok {
		return nil, fmt.Errorf("recipe %s: %w", rootID, storage.ErrNotFound)
	}
	if !root.IsRoot() {
		return nil, fmt.Errorf("recipe %s (tree %s): %w", root.ID, root.TreeID, storage.ErrNotRoot)
	}
	return root, nil
}

// treeLocked returns cloned non-root members of tree rootID ordered by
// creation time then id. With includeRoot the root is kept.
func (m *MemoryStorage) treeLocked(rootID string, includeRoot bool) []*types.Recipe {
	out := []*types.Recipe{}
	for _, id := range m.order {
		r := m.recipes[id]
		if r.TreeID != rootID || (!includeRoot && r.ID == rootID) {
			continue
		}
		out = append(out, r.Clone())
	}
	types.SortRecipes(out, []types.RecipeSortOption{{Field: types.SortFieldCreated, Direction: types.SortAsc}})
	return out
}

// AddComment attaches a comment to an existing recipe.
func (m *MemoryStorage) AddComment(_ context.Context, recipeID, author, text string) (*types.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", storage.ErrInvalid)
	}
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("%w: comment author is required", storage.ErrInvalid)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, storage.ErrNotInitialized
	}
	if _, ok := m.recipes[recipeID]; !ok {
		return nil, fmt.Errorf("recipe %s: %w", recipeID, storage.ErrNotFound)
	}

	m.nextID++
	c := &types.Comment{ID: m.nextID, RecipeID: recipeID, Author: author, Text: text, CreatedAt: m.now()}
	m.comments[recipeID] = append(m.comments[recipeID], c)
	cp := *c
	return &cp, nil
}

// GetComments returns copies of the comments on recipeID, oldest first.
func (m *MemoryStorage) GetComments(_ context.Context, recipeID string) ([]*types.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, storage.ErrNotInitialized
	}
	if _, ok := m.recipes[recipeID]; !ok {
		return nil, fmt.Errorf("recipe %s: %w", recipeID, storage.ErrNotFound)
	}

	out := make([]*types.Comment, 0, len(m.comments[recipeID]))
	for _, c := range m.comments[recipeID] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// Close marks the store closed. Later calls fail with ErrNotInitialized.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
