// Package storage provides the interface and shared types for recipe storage.
//
// Concrete backends live in the sqlite, mysql, dolt and memory sub-packages;
// the factory package picks one from configuration.
package storage

import (
	"context"
	"errors"

	"github.com/collaboreats/collaboreats/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrNotRoot is returned when a tree-level operation is given a recipe that
// has a parent.
var ErrNotRoot = errors.New("not a root recipe")

// ErrNotInitialized is returned when the database has not been initialized
// (schema missing or store already closed).
var ErrNotInitialized = errors.New("database not initialized")

// ErrConflict is returned when a recipe id is already taken.
var ErrConflict = errors.New("id already exists")

// ErrInvalid wraps validation failures of recipes and comments.
var ErrInvalid = errors.New("invalid input")

// Storage is the interface every recipe backend satisfies.
type Storage interface {
	// Recipes
	CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error
	ForkRecipe(ctx context.Context, parentID string, draft *types.Recipe, actor string) (*types.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*types.Recipe, error)
	ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]*types.Recipe, error)

	// Trees
	GetVersionTree(ctx context.Context, rootID string) (*types.VersionSet, error)
	MostRecentVersion(ctx context.Context, rootID string) (*types.Recipe, error)
	MostForkedVersion(ctx context.Context, rootID string) (*types.ForkCount, error)

	// Comments
	AddComment(ctx context.Context, recipeID, author, text string) (*types.Comment, error)
	GetComments(ctx context.Context, recipeID string) ([]*types.Comment, error)

	// Lifecycle
	Close() error
}
