package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/types"
)

const recipeColumns = `id, tree_id, parent_id, path, owner_id, title, description,
	ingredients, instructions, photo, created_at, updated_at`

// CreateRecipe inserts recipe. A missing id is generated and written back,
// as are the tree id and timestamps. A recipe with a parent must carry an
// ancestry path consistent with that parent.
func (s *Store) CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("%w: recipe is required", storage.ErrInvalid)
	}
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("%w: recipe: %w", storage.ErrInvalid, err)
	}

	if recipe.IsRoot() {
		recipe.Path = []string{}
	} else {
		parent, err := s.GetRecipe(ctx, recipe.ParentID)
		if err != nil {
			return fmt.Errorf("load parent %s: %w", recipe.ParentID, err)
		}
		if err := fork.CheckAncestry(parent, recipe); err != nil {
			return err
		}
		recipe.TreeID = parent.RootID()
	}

	now := s.now()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	if recipe.UpdatedAt.IsZero() {
		recipe.UpdatedAt = recipe.CreatedAt
	}

	if recipe.ID == "" {
		id, err := s.ids.Generate(ctx, recipe.Title, recipe.OwnerID, recipe.ParentID, recipe.CreatedAt)
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		recipe.ID = id
	}
	if recipe.IsRoot() {
		recipe.TreeID = recipe.ID
	}

	path, err := json.Marshal(recipe.Path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	ingredients, err := json.Marshal(nonNilIngredients(recipe.Ingredients))
	if err != nil {
		return fmt.Errorf("encode ingredients: %w", err)
	}

	_, err = s.execContext(ctx, `INSERT INTO recipes (
		id, tree_id, parent_id, path, depth, owner_id, title, description,
		ingredients, instructions, photo, content_hash, created_by, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID, recipe.TreeID, recipe.ParentID, string(path), recipe.Depth(),
		recipe.OwnerID, recipe.Title, recipe.Description, string(ingredients),
		recipe.Instructions, recipe.Photo, recipe.ComputeContentHash(), actor,
		toMillis(recipe.CreatedAt), toMillis(recipe.UpdatedAt),
	)
	if err != nil {
		if s.opts.Dialect.IsDuplicate != nil && s.opts.Dialect.IsDuplicate(err) {
			return fmt.Errorf("recipe %s: %w", recipe.ID, storage.ErrConflict)
		}
		return fmt.Errorf("insert recipe %s: %w", recipe.ID, err)
	}

	if recipe.IsRoot() {
		return s.afterWrite(ctx, "create recipe %s", recipe.ID)
	}
	return s.afterWrite(ctx, "fork %s from %s", recipe.ID, recipe.ParentID)
}

// ForkRecipe creates a new version of parentID. Content left empty in draft
// is inherited from the parent; the owner defaults to actor.
func (s *Store) ForkRecipe(ctx context.Context, parentID string, draft *types.Recipe, actor string) (*types.Recipe, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	parent, err := s.GetRecipe(ctx, parentID)
	if err != nil {
		return nil, err
	}
	child, err := fork.New(parent, draft)
	if err != nil {
		return nil, err
	}
	if child.OwnerID == "" {
		child.OwnerID = actor
	}
	if err := s.CreateRecipe(ctx, child, actor); err != nil {
		return nil, err
	}
	return child, nil
}

// GetRecipe returns the recipe with id, or storage.ErrNotFound.
func (s *Store) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var r *types.Recipe
	err := s.queryRowContext(ctx, func(row *sql.Row) error {
		var scanErr error
		r, scanErr = scanRecipe(row)
		return scanErr
	}, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", id, err)
	}
	return r, nil
}

// ListRecipes returns recipes matching filter.
func (s *Store) ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]*types.Recipe, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.RootsOnly {
		where = append(where, "parent_id = ''")
	}
	if filter.TreeID != "" {
		where = append(where, "tree_id = ?")
		args = append(args, filter.TreeID)
	}
	if filter.CreatedAfter != nil {
		where = append(where, "created_at >= ?")
		args = append(args, toMillis(*filter.CreatedAfter))
	}

	query := "SELECT " + recipeColumns + " FROM recipes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(filter.Sort)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	return s.queryRecipes(ctx, query, args...)
}

// orderClause maps sort options onto columns. The id tiebreaker keeps
// listings stable across backends.
func orderClause(opts []types.RecipeSortOption) string {
	if len(opts) == 0 {
		opts = types.DefaultRecipeSortOptions()
	}
	parts := make([]string, 0, len(opts)+1)
	for _, opt := range opts {
		var col string
		switch opt.Field {
		case types.SortFieldUpdated:
			col = "updated_at"
		case types.SortFieldTitle:
			col = "LOWER(title)"
		case types.SortFieldDepth:
			col = "depth"
		default:
			col = "created_at"
		}
		dir := "ASC"
		if opt.Direction == types.SortDesc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(append(parts, "id ASC"), ", ")
}

// GetVersionTree returns rootID and every other version of its tree in
// creation order.
func (s *Store) GetVersionTree(ctx context.Context, rootID string) (*types.VersionSet, error) {
	root, err := s.getRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	records, err := s.queryRecipes(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE tree_id = ? AND id <> ? ORDER BY created_at ASC, id ASC",
		root.ID, root.ID)
	if err != nil {
		return nil, err
	}
	return &types.VersionSet{Root: root, Records: records}, nil
}

// MostRecentVersion returns the newest version in the tree, which may be
// the root itself.
func (s *Store) MostRecentVersion(ctx context.Context, rootID string) (*types.Recipe, error) {
	root, err := s.getRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.queryRecipes(ctx,
		"SELECT "+recipeColumns+" FROM recipes WHERE tree_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		root.ID)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return root, nil
	}
	return recipes[0], nil
}

// MostForkedVersion returns the version in the tree with the most direct
// forks. Ties go to the earliest created; a tree without forks yields the
// root with a count of zero.
func (s *Store) MostForkedVersion(ctx context.Context, rootID string) (*types.ForkCount, error) {
	root, err := s.getRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}

	var parentID string
	var forks int
	err = s.queryRowContext(ctx, func(row *sql.Row) error {
		return row.Scan(&parentID, &forks)
	}, `SELECT c.parent_id, COUNT(*) AS forks
		FROM recipes c JOIN recipes p ON p.id = c.parent_id
		WHERE c.tree_id = ?
		GROUP BY c.parent_id, p.created_at
		ORDER BY forks DESC, p.created_at ASC, c.parent_id ASC
		LIMIT 1`, root.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.ForkCount{Recipe: root, Forks: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most forked in %s: %w", root.ID, err)
	}

	r, err := s.GetRecipe(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return &types.ForkCount{Recipe: r, Forks: forks}, nil
}

func (s *Store) getRoot(ctx context.Context, rootID string) (*types.Recipe, error) {
	root, err := s.GetRecipe(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if !root.IsRoot() {
		return nil, fmt.Errorf("recipe %s (tree %s): %w", root.ID, root.TreeID, storage.ErrNotRoot)
	}
	return root, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.queryRowContext(ctx, func(row *sql.Row) error {
		return row.Scan(&one)
	}, "SELECT 1 FROM recipes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]*types.Recipe, error) {
	rows, err := s.queryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*types.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (*types.Recipe, error) {
	var (
		r                   types.Recipe
		path, ingredients   string
		createdAt, updateAt int64
	)
	if err := row.Scan(
		&r.ID, &r.TreeID, &r.ParentID, &path, &r.OwnerID, &r.Title, &r.Description,
		&ingredients, &r.Instructions, &r.Photo, &createdAt, &updateAt,
	); err != nil {
		return nil, err
	}

	r.Path = []string{}
	if path != "" {
		if err := json.Unmarshal([]byte(path), &r.Path); err != nil {
			return nil, fmt.Errorf("decode path of %s: %w", r.ID, err)
		}
	}
	if ingredients != "" {
		if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients of %s: %w", r.ID, err)
		}
	}
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updateAt)
	return &r, nil
}

func nonNilIngredients(in []types.Ingredient) []types.Ingredient {
	if in == nil {
		return []types.Ingredient{}
	}
	return in
}
