// Package fork holds the rules that make fork ancestry well-defined.
//
// A recipe's Path lists its ancestors from the root down to its direct parent.
// Forking X produces a record whose ParentID is X.ID and whose Path is
// X.Path with X.ID appended, so the root id is always Path[0] for every
// non-root record and Path[len(Path)-1] is always the parent.
package fork

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/collaboreats/collaboreats/internal/types"
)

// ErrMissingRoot is returned when a record offered as a tree root has a
// parent or a non-empty ancestry path.
var ErrMissingRoot = errors.New("invalid root record")

// ErrBrokenAncestry is returned when a record's path is not consistent with
// its parent's path.
var ErrBrokenAncestry = errors.New("broken ancestry path")

// New derives a fork of parent from draft. Content fields come from draft.
// The id is draft's, usually empty so the store assigns one. Neither
// argument is modified.
func New(parent, draft *types.Recipe) (*types.Recipe, error) {
	if parent == nil {
		return nil, fmt.Errorf("fork: parent is required")
	}
	if strings.TrimSpace(parent.ID) == "" {
		return nil, fmt.Errorf("fork: parent has no id")
	}
	if draft == nil {
		draft = &types.Recipe{}
	}

	child := draft.Clone()
	child.ParentID = parent.ID
	child.Path = AppendPath(parent.Path, parent.ID)
	child.TreeID = parent.RootID()

	// Unset content is inherited so a fork starts as a copy of its parent.
	if child.Title == "" {
		child.Title = parent.Title
	}
	if child.Description == "" {
		child.Description = parent.Description
	}
	if child.Instructions == "" {
		child.Instructions = parent.Instructions
	}
	if len(child.Ingredients) == 0 {
		child.Ingredients = slices.Clone(parent.Ingredients)
	}
	if child.Photo == "" {
		child.Photo = parent.Photo
	}
	child.CreatedAt = time.Time{}
	child.UpdatedAt = time.Time{}

	return child, nil
}

// AppendPath returns a new path equal to path followed by id. The input
// slice is never aliased.
func AppendPath(path []string, id string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, id)
}

// ValidateRoot checks that r can serve as the root of a fork tree.
func ValidateRoot(r *types.Recipe) error {
	if r == nil {
		return fmt.Errorf("%w: root is nil", ErrMissingRoot)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: root has no id", ErrMissingRoot)
	}
	if r.ParentID != "" {
		return fmt.Errorf("%w: %s has parent %s", ErrMissingRoot, r.ID, r.ParentID)
	}
	if len(r.Path) != 0 {
		return fmt.Errorf("%w: %s has ancestry path of length %d", ErrMissingRoot, r.ID, len(r.Path))
	}
	return nil
}

// CheckRecord verifies the self-contained half of the ancestry invariant:
// a non-root record has a path, and the last path element is its parent.
func CheckRecord(r *types.Recipe) error {
	if len(r.Path) == 0 {
		return fmt.Errorf("%w: %s has no ancestry path", ErrBrokenAncestry, r.ID)
	}
	last := r.Path[len(r.Path)-1]
	if r.ParentID != last {
		return fmt.Errorf("%w: %s has parent %q but path ends with %q", ErrBrokenAncestry, r.ID, r.ParentID, last)
	}
	if slices.Contains(r.Path, r.ID) {
		return fmt.Errorf("%w: %s appears in its own path", ErrBrokenAncestry, r.ID)
	}
	return nil
}

// CheckAncestry verifies that child's path is its parent's path followed by
// the parent's id.
func CheckAncestry(parent, child *types.Recipe) error {
	if err := CheckRecord(child); err != nil {
		return err
	}
	if child.ParentID != parent.ID {
		return fmt.Errorf("%w: %s is not a fork of %s", ErrBrokenAncestry, child.ID, parent.ID)
	}
	prefix := child.Path[:len(child.Path)-1]
	if !slices.Equal(prefix, parent.Path) {
		return fmt.Errorf("%w: %s path %v does not extend parent path %v", ErrBrokenAncestry, child.ID, child.Path, parent.Path)
	}
	return nil
}
