// Package types defines core data structures for recipes and their fork trees.
package types

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Recipe is one version in a fork history. A recipe with no parent is the
// root of its own tree; every fork records the full chain of ancestors in Path.
type Recipe struct {
	ID           string       `json:"id" yaml:"id"`
	TreeID       string       `json:"tree_id" yaml:"tree_id"`                         // ID of the root recipe of this fork tree
	ParentID     string       `json:"parent_id,omitempty" yaml:"parent_id,omitempty"` // Empty only for the root
	Path         []string     `json:"path" yaml:"path"`                               // Ancestors from root to direct parent
	OwnerID      string       `json:"owner_id" yaml:"owner_id"`
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"`
	Ingredients  []Ingredient `json:"ingredients" yaml:"ingredients"`
	Instructions string       `json:"instructions" yaml:"instructions"`
	Photo        string       `json:"photo,omitempty" yaml:"photo,omitempty"`
	CreatedAt    time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
}

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Ingredient    string  `json:"ingredient" yaml:"ingredient" toml:"ingredient"`
	Amount        float64 `json:"amount" yaml:"amount" toml:"amount"`
	UnitOfMeasure string  `json:"unit_of_measure,omitempty" yaml:"unit_of_measure,omitempty" toml:"unit"`
}

// Depth is the number of ancestors between the recipe and its root.
// The root has depth 0.
func (r *Recipe) Depth() int {
	return len(r.Path)
}

// IsRoot reports whether the recipe is the root of its fork tree.
func (r *Recipe) IsRoot() bool {
	return r.ParentID == "" && len(r.Path) == 0
}

// RootID returns the root of the recipe's tree, falling back to the first
// path element (or the recipe itself) when TreeID was not populated.
func (r *Recipe) RootID() string {
	if r.TreeID != "" {
		return r.TreeID
	}
	if len(r.Path) > 0 {
		return r.Path[0]
	}
	return r.ID
}

// Clone returns a deep copy so callers can mutate without touching store-owned data.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Path = slices.Clone(r.Path)
	c.Ingredients = slices.Clone(r.Ingredients)
	return &c
}

// ComputeContentHash creates a deterministic hash of the recipe's content.
// Identity and ancestry fields are excluded so two identical forks hash alike.
func (r *Recipe) ComputeContentHash() string {
	h := sha256.New()

	h.Write([]byte(r.Title))
	h.Write([]byte{0})
	h.Write([]byte(r.Description))
	h.Write([]byte{0})
	h.Write([]byte(r.Instructions))
	h.Write([]byte{0})
	for _, ing := range r.Ingredients {
		h.Write([]byte(fmt.Sprintf("%s|%g|%s", ing.Ingredient, ing.Amount, ing.UnitOfMeasure)))
		h.Write([]byte{0})
	}
	h.Write([]byte(r.Photo))

	return fmt.Sprintf("%x", h.Sum(nil))
}

// Validate checks the recipe's content fields. Ancestry is checked by the
// fork package, not here.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(r.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(r.Title))
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("owner is required")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Ingredient) == "" {
			return fmt.Errorf("ingredient %d: name is required", i+1)
		}
		if ing.Amount < 0 {
			return fmt.Errorf("ingredient %d: amount cannot be negative", i+1)
		}
	}
	return nil
}

// VersionSet is what a version store returns for one fork tree: the root
// record plus every other version of the tree as a flat, ordered list.
type VersionSet struct {
	Root    *Recipe   `json:"recipe" yaml:"recipe"`
	Records []*Recipe `json:"recipeTree" yaml:"versions"`
}

// Len returns the number of versions including the root.
func (vs *VersionSet) Len() int {
	if vs == nil || vs.Root == nil {
		return 0
	}
	return len(vs.Records) + 1
}

// TreeNode is one node of a reconstructed fork tree. The JSON shape is the
// recursive {name, children} form hierarchical renderers expect, with the
// recipe's descriptive fields carried along.
type TreeNode struct {
	ID          string      `json:"id" yaml:"id"`
	Label       string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string      `json:"user,omitempty" yaml:"user,omitempty"`
	ParentID    string      `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Depth       int         `json:"depth" yaml:"depth"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	Children    []*TreeNode `json:"children" yaml:"children"`
}

// NewTreeNode builds an unattached node for r with an empty children list.
func NewTreeNode(r *Recipe) *TreeNode {
	return &TreeNode{
		ID:          r.ID,
		Label:       r.Title,
		Description: r.Description,
		Owner:       r.OwnerID,
		ParentID:    r.ParentID,
		Depth:       r.Depth(),
		CreatedAt:   r.CreatedAt,
		Children:    []*TreeNode{},
	}
}

// Walk visits n and its descendants depth-first in child order. Returning
// false from fn stops the descent below that node.
func (n *TreeNode) Walk(fn func(node *TreeNode) bool) {
	if n == nil {
		return
	}
	stack := []*TreeNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			continue
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// Find returns the node with the given id, or nil.
func (n *TreeNode) Find(id string) *TreeNode {
	var found *TreeNode
	n.Walk(func(node *TreeNode) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *TreeNode) Size() int {
	count := 0
	n.Walk(func(*TreeNode) bool {
		count++
		return true
	})
	return count
}

// Comment is a note left on a recipe version.
type Comment struct {
	ID        int64     `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ForkCount pairs a recipe with the number of direct forks it has.
type ForkCount struct {
	Recipe *Recipe `json:"recipe"`
	Forks  int     `json:"forks"`
}

// RecipeFilter is used to filter recipe listings.
type RecipeFilter struct {
	OwnerID      string
	RootsOnly    bool
	TreeID       string
	CreatedAfter *time.Time
	Sort         []RecipeSortOption
	Limit        int
}
