package fork

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaboreats/collaboreats/internal/types"
)

func TestNewFromRoot(t *testing.T) {
	root := &types.Recipe{
		ID:          "rc-root",
		Title:       "Lasagna",
		Description: "Classic",
		Ingredients: []types.Ingredient{{Ingredient: "pasta", Amount: 500, UnitOfMeasure: "g"}},
	}

	child, err := New(root, &types.Recipe{Title: "Vegan lasagna", OwnerID: "bo"})
	require.NoError(t, err)

	assert.Equal(t, "", child.ID)
	assert.Equal(t, "rc-root", child.ParentID)
	assert.Equal(t, []string{"rc-root"}, child.Path)
	assert.Equal(t, "rc-root", child.TreeID)
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, "Vegan lasagna", child.Title)
	assert.Equal(t, "Classic", child.Description, "unset content is inherited")
	require.Len(t, child.Ingredients, 1)

	child.Ingredients[0].Amount = 1
	assert.Equal(t, float64(500), root.Ingredients[0].Amount, "parent ingredients must not be aliased")
}

func TestNewExtendsPath(t *testing.T) {
	parent := &types.Recipe{ID: "B", TreeID: "R", ParentID: "A", Path: []string{"R", "A"}}

	child, err := New(parent, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "A", "B"}, child.Path)
	assert.Equal(t, "B", child.ParentID)
	assert.Equal(t, "R", child.TreeID)
	require.NoError(t, CheckAncestry(parent, child))

	// Appending to the child's path must never write into the parent's array.
	child.Path[0] = "X"
	assert.Equal(t, "R", parent.Path[0])
}

func TestNewKeepsRequestedID(t *testing.T) {
	child, err := New(&types.Recipe{ID: "R"}, &types.Recipe{ID: "rc-mine", TreeID: "X", ParentID: "Y", Path: []string{"Y"}})
	require.NoError(t, err)
	assert.Equal(t, "rc-mine", child.ID)
	assert.Equal(t, "R", child.ParentID, "ancestry always comes from the parent")
	assert.Equal(t, []string{"R"}, child.Path)
	assert.Equal(t, "R", child.TreeID)
}

func TestNewRequiresParent(t *testing.T) {
	_, err := New(nil, &types.Recipe{})
	assert.Error(t, err)

	_, err = New(&types.Recipe{}, &types.Recipe{})
	assert.Error(t, err)
}

func TestAppendPathDoesNotAlias(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "R"
	a := AppendPath(base, "A")
	b := AppendPath(base, "B")
	assert.Equal(t, []string{"R", "A"}, a)
	assert.Equal(t, []string{"R", "B"}, b)
}

func TestValidateRoot(t *testing.T) {
	tests := []struct {
		name    string
		root    *types.Recipe
		wantErr bool
	}{
		{"valid", &types.Recipe{ID: "R"}, false},
		{"nil", nil, true},
		{"no id", &types.Recipe{}, true},
		{"has parent", &types.Recipe{ID: "R", ParentID: "P"}, true},
		{"has path", &types.Recipe{ID: "R", Path: []string{"P"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoot(tt.root)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMissingRoot))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckAncestry(t *testing.T) {
	parent := &types.Recipe{ID: "A", ParentID: "R", Path: []string{"R"}}

	tests := []struct {
		name    string
		child   *types.Recipe
		wantErr bool
	}{
		{"consistent", &types.Recipe{ID: "B", ParentID: "A", Path: []string{"R", "A"}}, false},
		{"empty path", &types.Recipe{ID: "B", ParentID: "A"}, true},
		{"wrong last element", &types.Recipe{ID: "B", ParentID: "A", Path: []string{"R", "X"}}, true},
		{"wrong prefix", &types.Recipe{ID: "B", ParentID: "A", Path: []string{"Q", "A"}}, true},
		{"different parent", &types.Recipe{ID: "B", ParentID: "C", Path: []string{"R", "C"}}, true},
		{"self in path", &types.Recipe{ID: "A", ParentID: "A", Path: []string{"R", "A"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAncestry(parent, tt.child)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBrokenAncestry))
				return
			}
			assert.NoError(t, err)
		})
	}
}
