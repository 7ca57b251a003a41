// Package teststore provides a backend-agnostic conformance suite for
// storage.Storage implementations.
//
// Every backend test opens a fresh store per subtest and hands it to Run:
//
//	func TestConformance(t *testing.T) {
//	    teststore.Run(t, func(t *testing.T, now func() time.Time) storage.Storage {
//	        return memory.New(memory.Options{Now: now})
//	    })
//	}
//
// All assertions go through the storage.Storage interface.
package teststore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/versiontree"
)

// OpenFunc opens an empty store whose clock is now.
type OpenFunc func(t *testing.T, now func() time.Time) storage.Storage

// Clock is a deterministic clock that advances one second per reading.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{cur: start.UTC()}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.cur
	c.cur = c.cur.Add(time.Second)
	return now
}

// Env bundles a store with helpers for building fork histories.
type Env struct {
	T     *testing.T
	Store storage.Storage
	Ctx   context.Context
}

// NewEnv opens a store with a fresh clock.
func NewEnv(t *testing.T, open OpenFunc) *Env {
	t.Helper()
	clock := NewClock(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	s := open(t, clock.Now)
	t.Cleanup(func() { _ = s.Close() })
	return &Env{T: t, Store: s, Ctx: context.Background()}
}

// CreateRoot creates a master recipe owned by owner.
func (e *Env) CreateRoot(title, owner string) *types.Recipe {
	e.T.Helper()
	r := &types.Recipe{
		Title:        title,
		OwnerID:      owner,
		Description:  title + " description",
		Instructions: "Cook " + strings.ToLower(title),
		Ingredients:  []types.Ingredient{{Ingredient: "salt", Amount: 1, UnitOfMeasure: "tsp"}},
	}
	require.NoError(e.T, e.Store.CreateRecipe(e.Ctx, r, owner))
	return r
}

// Fork forks parent as owner with a new title.
func (e *Env) Fork(parent *types.Recipe, title, owner string) *types.Recipe {
	e.T.Helper()
	child, err := e.Store.ForkRecipe(e.Ctx, parent.ID, &types.Recipe{Title: title}, owner)
	require.NoError(e.T, err)
	return child
}

// Run executes the conformance suite against stores produced by open.
func Run(t *testing.T, open OpenFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, e *Env)
	}{
		{"CreateAndGetRoot", testCreateAndGetRoot},
		{"GetMissing", testGetMissing},
		{"ForkChain", testForkChain},
		{"ForkInheritsContent", testForkInheritsContent},
		{"CreateChecksAncestry", testCreateChecksAncestry},
		{"CreateDuplicateID", testCreateDuplicateID},
		{"CreateInvalid", testCreateInvalid},
		{"VersionTreeRequiresRoot", testVersionTreeRequiresRoot},
		{"VersionTreeBuilds", testVersionTreeBuilds},
		{"ListRecipes", testListRecipes},
		{"MostRecentVersion", testMostRecentVersion},
		{"MostForkedVersion", testMostForkedVersion},
		{"Comments", testComments},
		{"ReturnedRecipesAreCopies", testReturnedRecipesAreCopies},
		{"ClosedStore", testClosedStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, NewEnv(t, open))
		})
	}
}

func testCreateAndGetRoot(t *testing.T, e *Env) {
	root := e.CreateRoot("Shakshuka", "ana")

	assert.NotEmpty(t, root.ID)
	assert.Equal(t, root.ID, root.TreeID)
	assert.True(t, root.IsRoot())
	assert.False(t, root.CreatedAt.IsZero())

	got, err := e.Store.GetRecipe(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.Equal(t, root.TreeID, got.TreeID)
	assert.Equal(t, "Shakshuka", got.Title)
	assert.Equal(t, "ana", got.OwnerID)
	assert.Empty(t, got.Path)
	assert.Equal(t, root.Ingredients, got.Ingredients)
	assert.True(t, root.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", root.CreatedAt, got.CreatedAt)
}

func testGetMissing(t *testing.T, e *Env) {
	_, err := e.Store.GetRecipe(e.Ctx, "rc-nope")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)

	_, err = e.Store.ForkRecipe(e.Ctx, "rc-nope", &types.Recipe{Title: "x"}, "ana")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)
}

func testForkChain(t *testing.T, e *Env) {
	root := e.CreateRoot("Ramen", "kai")
	a := e.Fork(root, "Miso ramen", "lu")
	b := e.Fork(a, "Spicy miso ramen", "bo")

	assert.Equal(t, []string{root.ID}, a.Path)
	assert.Equal(t, root.ID, a.ParentID)
	assert.Equal(t, root.ID, a.TreeID)
	assert.Equal(t, []string{root.ID, a.ID}, b.Path)
	assert.Equal(t, a.ID, b.ParentID)
	assert.Equal(t, root.ID, b.TreeID)

	got, err := e.Store.GetRecipe(e.Ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Path, got.Path)
	assert.Equal(t, 2, got.Depth())
}

func testForkInheritsContent(t *testing.T, e *Env) {
	root := e.CreateRoot("Focaccia", "ana")
	child, err := e.Store.ForkRecipe(e.Ctx, root.ID, &types.Recipe{Title: "Olive focaccia"}, "bo")
	require.NoError(t, err)

	assert.Equal(t, "bo", child.OwnerID, "owner defaults to actor")
	assert.Equal(t, root.Description, child.Description)
	assert.Equal(t, root.Instructions, child.Instructions)
	assert.Equal(t, root.Ingredients, child.Ingredients)
	assert.NotEqual(t, root.ID, child.ID)
}

func testCreateChecksAncestry(t *testing.T, e *Env) {
	root := e.CreateRoot("Dal", "ana")
	a := e.Fork(root, "Dal tadka", "bo")

	bad := &types.Recipe{Title: "Bad", OwnerID: "cy", ParentID: a.ID, Path: []string{"rc-other", a.ID}}
	err := e.Store.CreateRecipe(e.Ctx, bad, "cy")
	assert.True(t, errors.Is(err, fork.ErrBrokenAncestry), "err = %v", err)

	orphan := &types.Recipe{Title: "Orphan", OwnerID: "cy", ParentID: "rc-gone", Path: []string{"rc-gone"}}
	err = e.Store.CreateRecipe(e.Ctx, orphan, "cy")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)

	good := &types.Recipe{ID: "rc-import", Title: "Imported", OwnerID: "cy", ParentID: a.ID, Path: []string{root.ID, a.ID}}
	require.NoError(t, e.Store.CreateRecipe(e.Ctx, good, "cy"))
	assert.Equal(t, root.ID, good.TreeID)
}

func testCreateDuplicateID(t *testing.T, e *Env) {
	r := &types.Recipe{ID: "rc-dup", Title: "Pho", OwnerID: "an"}
	require.NoError(t, e.Store.CreateRecipe(e.Ctx, r, "an"))

	again := &types.Recipe{ID: "rc-dup", Title: "Pho 2", OwnerID: "an"}
	err := e.Store.CreateRecipe(e.Ctx, again, "an")
	assert.True(t, errors.Is(err, storage.ErrConflict), "err = %v", err)
}

func testCreateInvalid(t *testing.T, e *Env) {
	assert.ErrorIs(t, e.Store.CreateRecipe(e.Ctx, &types.Recipe{OwnerID: "ana"}, "ana"), storage.ErrInvalid)
	assert.ErrorIs(t, e.Store.CreateRecipe(e.Ctx, &types.Recipe{Title: "No owner"}, ""), storage.ErrInvalid)
	assert.ErrorIs(t, e.Store.CreateRecipe(e.Ctx, nil, "ana"), storage.ErrInvalid)
}

func testVersionTreeRequiresRoot(t *testing.T, e *Env) {
	root := e.CreateRoot("Curry", "ana")
	a := e.Fork(root, "Green curry", "bo")

	_, err := e.Store.GetVersionTree(e.Ctx, a.ID)
	assert.True(t, errors.Is(err, storage.ErrNotRoot), "err = %v", err)
	_, err = e.Store.GetVersionTree(e.Ctx, "rc-none")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)
	_, err = e.Store.MostRecentVersion(e.Ctx, a.ID)
	assert.True(t, errors.Is(err, storage.ErrNotRoot), "err = %v", err)
	_, err = e.Store.MostForkedVersion(e.Ctx, a.ID)
	assert.True(t, errors.Is(err, storage.ErrNotRoot), "err = %v", err)
}

func testVersionTreeBuilds(t *testing.T, e *Env) {
	root := e.CreateRoot("Lasagna", "ana")
	a := e.Fork(root, "Veg lasagna", "bo")
	c := e.Fork(root, "White lasagna", "cy")
	b := e.Fork(a, "Vegan lasagna", "di")
	other := e.CreateRoot("Tacos", "ed")
	e.Fork(other, "Fish tacos", "fa")

	set, err := e.Store.GetVersionTree(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, set.Root.ID)
	require.Len(t, set.Records, 3)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(set.Records), "creation order")
	assert.Equal(t, 4, set.Len())

	res, err := versiontree.Build(set.Root, set.Records)
	require.NoError(t, err)
	assert.True(t, res.OK(), "diagnostics: %v", res.Diagnostics)
	require.Len(t, res.Tree.Children, 2)
	assert.Equal(t, a.ID, res.Tree.Children[0].ID)
	assert.Equal(t, c.ID, res.Tree.Children[1].ID)
	require.Len(t, res.Tree.Children[0].Children, 1)
	assert.Equal(t, b.ID, res.Tree.Children[0].Children[0].ID)

	lone := e.CreateRoot("Toast", "gi")
	set, err = e.Store.GetVersionTree(e.Ctx, lone.ID)
	require.NoError(t, err)
	assert.Empty(t, set.Records)
}

func testListRecipes(t *testing.T, e *Env) {
	banana := e.CreateRoot("Banana bread", "ana")
	apple := e.CreateRoot("apple pie", "bo")
	fork1 := e.Fork(banana, "Choc banana bread", "bo")
	cutoff := fork1.CreatedAt

	all, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{fork1.ID, apple.ID, banana.ID}, ids(all), "newest first by default")

	roots, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{RootsOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{banana.ID, apple.ID}, ids(roots))

	bos, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{OwnerID: "bo"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{apple.ID, fork1.ID}, ids(bos))

	tree, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{TreeID: banana.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{banana.ID, fork1.ID}, ids(tree))

	byTitle, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{Sort: types.ParseRecipeSortOrder("title-asc")})
	require.NoError(t, err)
	assert.Equal(t, []string{apple.ID, banana.ID, fork1.ID}, ids(byTitle), "case-insensitive title order")

	recent, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{CreatedAfter: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{fork1.ID}, ids(recent))

	limited, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := e.Store.ListRecipes(e.Ctx, types.RecipeFilter{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testMostRecentVersion(t *testing.T, e *Env) {
	root := e.CreateRoot("Paella", "ana")

	got, err := e.Store.MostRecentVersion(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID, "a lone root is its own newest version")

	a := e.Fork(root, "Seafood paella", "bo")
	e.CreateRoot("Unrelated", "cy")
	b := e.Fork(a, "Squid ink paella", "cy")
	e.Fork(e.CreateRoot("Other", "di"), "Other fork", "di")

	got, err = e.Store.MostRecentVersion(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func testMostForkedVersion(t *testing.T, e *Env) {
	root := e.CreateRoot("Chili", "ana")

	fc, err := e.Store.MostForkedVersion(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, fc.Recipe.ID)
	assert.Equal(t, 0, fc.Forks)

	a := e.Fork(root, "White chili", "bo")
	e.Fork(a, "White chili verde", "cy")
	e.Fork(a, "Turkey white chili", "di")
	e.Fork(root, "Veg chili", "ed")

	fc, err = e.Store.MostForkedVersion(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, fc.Recipe.ID, "ties go to the older version")
	assert.Equal(t, 2, fc.Forks)

	e.Fork(a, "Bean-free white chili", "fa")
	fc, err = e.Store.MostForkedVersion(e.Ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, fc.Recipe.ID)
	assert.Equal(t, 3, fc.Forks)
}

func testComments(t *testing.T, e *Env) {
	root := e.CreateRoot("Gumbo", "ana")

	first, err := e.Store.AddComment(e.Ctx, root.ID, "bo", "  More okra  ")
	require.NoError(t, err)
	assert.Equal(t, "More okra", first.Text)
	assert.Equal(t, root.ID, first.RecipeID)
	_, err = e.Store.AddComment(e.Ctx, root.ID, "cy", "Less roux")
	require.NoError(t, err)

	comments, err := e.Store.GetComments(e.Ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "More okra", comments[0].Text)
	assert.Equal(t, "cy", comments[1].Author)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)

	_, err = e.Store.AddComment(e.Ctx, root.ID, "bo", "   ")
	assert.Error(t, err)
	_, err = e.Store.AddComment(e.Ctx, "rc-missing", "bo", "hi")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)
	_, err = e.Store.GetComments(e.Ctx, "rc-missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound), "err = %v", err)

	empty, err := e.Store.GetComments(e.Ctx, e.Fork(root, "Shrimp gumbo", "di").ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testReturnedRecipesAreCopies(t *testing.T, e *Env) {
	root := e.CreateRoot("Borscht", "ana")
	a := e.Fork(root, "Green borscht", "bo")

	got, err := e.Store.GetRecipe(e.Ctx, a.ID)
	require.NoError(t, err)
	got.Path[0] = "mutated"
	got.Title = "mutated"

	again, err := e.Store.GetRecipe(e.Ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, again.Path[0])
	assert.Equal(t, "Green borscht", again.Title)
}

func testClosedStore(t *testing.T, e *Env) {
	root := e.CreateRoot("Congee", "ana")
	require.NoError(t, e.Store.Close())
	require.NoError(t, e.Store.Close(), "close is idempotent")

	_, err := e.Store.GetRecipe(e.Ctx, root.ID)
	assert.True(t, errors.Is(err, storage.ErrNotInitialized), "err = %v", err)
}

func ids(recipes []*types.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}
