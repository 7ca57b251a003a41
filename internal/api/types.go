package api

import (
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/versiontree"
)

// IngredientRequest is one ingredient line of a create or fork request.
type IngredientRequest struct {
	Ingredient    string  `json:"ingredient" binding:"required,notblank"`
	Amount        float64 `json:"amount" binding:"gte=0"`
	UnitOfMeasure string  `json:"unit_of_measure"`
}

// CreateRecipeRequest is the body of POST /recipes.
type CreateRecipeRequest struct {
	Title        string              `json:"title" binding:"required,notblank,max=500"`
	OwnerID      string              `json:"owner_id" binding:"required,notblank"`
	Description  string              `json:"description"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"dive"`
	Instructions string              `json:"instructions"`
	Photo        string              `json:"photo"`
}

// ForkRequest is the body of POST /recipes/:id/versions. Empty fields are
// inherited from the parent version.
type ForkRequest struct {
	Title        string              `json:"title" binding:"max=500"`
	OwnerID      string              `json:"owner_id"`
	Description  string              `json:"description"`
	Ingredients  []IngredientRequest `json:"ingredients" binding:"dive"`
	Instructions string              `json:"instructions"`
	Photo        string              `json:"photo"`
}

// CommentRequest is the body of POST /recipes/:id/comments.
type CommentRequest struct {
	Author string `json:"author" binding:"required,notblank"`
	Text   string `json:"text" binding:"required,notblank,max=2000"`
}

// TreeResponse is the body of GET /recipes/:id: the requested version, the
// flat version list of its tree, and the tree built from that list.
type TreeResponse struct {
	Recipe      *types.Recipe            `json:"recipe"`
	Root        *types.Recipe            `json:"root"`
	RecipeTree  []*types.Recipe          `json:"recipeTree"`
	Tree        *types.TreeNode          `json:"tree"`
	Diagnostics []versiontree.Diagnostic `json:"diagnostics"`
	Stats       versiontree.Stats        `json:"stats"`
}

// ListResponse wraps recipe lists.
type ListResponse struct {
	Recipes []*types.Recipe `json:"recipes"`
	Count   int             `json:"count"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func toIngredients(in []IngredientRequest) []types.Ingredient {
	if len(in) == 0 {
		return nil
	}
	out := make([]types.Ingredient, len(in))
	for i, r := range in {
		out[i] = types.Ingredient{Ingredient: r.Ingredient, Amount: r.Amount, UnitOfMeasure: r.UnitOfMeasure}
	}
	return out
}

func (r *CreateRecipeRequest) recipe() *types.Recipe {
	return &types.Recipe{
		Title:        r.Title,
		OwnerID:      r.OwnerID,
		Description:  r.Description,
		Ingredients:  toIngredients(r.Ingredients),
		Instructions: r.Instructions,
		Photo:        r.Photo,
	}
}

func (r *ForkRequest) draft() *types.Recipe {
	return &types.Recipe{
		Title:        r.Title,
		OwnerID:      r.OwnerID,
		Description:  r.Description,
		Ingredients:  toIngredients(r.Ingredients),
		Instructions: r.Instructions,
		Photo:        r.Photo,
	}
}
