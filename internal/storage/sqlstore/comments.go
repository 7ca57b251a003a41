package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/types"
)

// AddComment attaches a comment to an existing recipe version.
func (s *Store) AddComment(ctx context.Context, recipeID, author, text string) (*types.Comment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", storage.ErrInvalid)
	}
	if strings.TrimSpace(author) == "" {
		return nil, fmt.Errorf("%w: comment author is required", storage.ErrInvalid)
	}
	if _, err := s.GetRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	c := &types.Comment{RecipeID: recipeID, Author: author, Text: text, CreatedAt: s.now()}
	res, err := s.execContext(ctx,
		"INSERT INTO comments (recipe_id, author, text, created_at) VALUES (?, ?, ?, ?)",
		c.RecipeID, c.Author, c.Text, toMillis(c.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert comment on %s: %w", recipeID, err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("comment id: %w", err)
	}
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))

	if err := s.afterWrite(ctx, "comment on %s", recipeID); err != nil {
		return nil, err
	}
	return c, nil
}

// GetComments returns the comments on a recipe, oldest first.
func (s *Store) GetComments(ctx context.Context, recipeID string) ([]*types.Comment, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.GetRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	rows, err := s.queryContext(ctx,
		"SELECT id, recipe_id, author, text, created_at FROM comments WHERE recipe_id = ? ORDER BY created_at ASC, id ASC",
		recipeID)
	if err != nil {
		return nil, fmt.Errorf("query comments on %s: %w", recipeID, err)
	}
	defer rows.Close()

	comments := []*types.Comment{}
	for rows.Next() {
		var c types.Comment
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.RecipeID, &c.Author, &c.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = fromMillis(createdAt)
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
