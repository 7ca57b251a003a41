package versiontree

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/types"
)

func rec(id, parent string, path ...string) *types.Recipe {
	if path == nil {
		path = []string{}
	}
	return &types.Recipe{ID: id, ParentID: parent, Path: path, Title: "title " + id}
}

// shape renders a tree as R(A(B),C) for compact comparisons.
func shape(n *types.TreeNode) string {
	if len(n.Children) == 0 {
		return n.ID
	}
	s := n.ID + "("
	for i, c := range n.Children {
		if i > 0 {
			s += ","
		}
		s += shape(c)
	}
	return s + ")"
}

// sampleTree mirrors a realistic fork history:
//
//	R
//	├── A
//	│   └── B
//	│       ├── D
//	│       └── E
//	└── C
//	    └── F
func sampleTree() (*types.Recipe, []*types.Recipe) {
	root := rec("R", "")
	return root, []*types.Recipe{
		rec("A", "R", "R"),
		rec("C", "R", "R"),
		rec("B", "A", "R", "A"),
		rec("F", "C", "R", "C"),
		rec("D", "B", "R", "A", "B"),
		rec("E", "B", "R", "A", "B"),
	}
}

func TestBuildFlatChain(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("B", "A", "R", "A"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "R(A(B))", shape(res.Tree))
	assert.Equal(t, 2, res.Placed)
}

func TestBuildSiblingFanOut(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("C", "R", "R"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A,C)", shape(res.Tree))
}

func TestBuildUnplaceableRecord(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("D", "X-does-not-exist", "X-does-not-exist"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A)", shape(res.Tree))
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, "D", d.RecordID)
	assert.Equal(t, 1, d.Position)
	assert.Equal(t, KindMalformedPath, d.Kind)
	assert.True(t, errors.Is(d, ErrMalformedPath))
	assert.Error(t, res.Err())
}

func TestBuildEmptyInput(t *testing.T) {
	res, err := Build(rec("R", ""), nil)
	require.NoError(t, err)
	assert.Equal(t, "R", res.Tree.ID)
	assert.NotNil(t, res.Tree.Children)
	assert.Empty(t, res.Tree.Children)
	assert.Empty(t, res.Diagnostics)
	assert.NoError(t, res.Err())
}

func TestBuildMissingRoot(t *testing.T) {
	tests := []struct {
		name string
		root *types.Recipe
	}{
		{"nil root", nil},
		{"root with parent", &types.Recipe{ID: "R", ParentID: "P"}},
		{"root with path", &types.Recipe{ID: "R", Path: []string{"P"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Build(tt.root, []*types.Recipe{rec("A", "R", "R")})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrMissingRoot))
		})
	}
}

func TestBuildDepthMatchesPathLength(t *testing.T) {
	root, records := sampleTree()
	res, err := Build(root, records)
	require.NoError(t, err)
	require.True(t, res.OK())

	byID := map[string]*types.Recipe{}
	for _, r := range records {
		byID[r.ID] = r
	}

	// Measure distance from the root by walking, independent of the Depth field.
	var walk func(n *types.TreeNode, dist int)
	seen := 0
	walk = func(n *types.TreeNode, dist int) {
		if r, ok := byID[n.ID]; ok {
			seen++
			assert.Equal(t, len(r.Path), dist, "record %s", n.ID)
			assert.Equal(t, dist, n.Depth, "node %s", n.ID)
		}
		for _, c := range n.Children {
			walk(c, dist+1)
		}
	}
	walk(res.Tree, 0)
	assert.Equal(t, len(records), seen)
}

func TestBuildPreservesSiblingOrder(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("A3", "A", "R", "A"),
		rec("Z", "R", "R"),
		rec("A1", "A", "R", "A"),
		rec("M", "R", "R"),
		rec("A2", "A", "R", "A"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A(A3,A1,A2),Z,M)", shape(res.Tree))
}

func TestBuildChildBeforeParent(t *testing.T) {
	root, parentFirst := sampleTree()
	want, err := Build(root, parentFirst)
	require.NoError(t, err)

	childFirst := slices.Clone(parentFirst)
	slices.Reverse(childFirst)
	got, err := Build(root, childFirst)
	require.NoError(t, err)
	require.True(t, got.OK(), "diagnostics: %v", got.Diagnostics)

	// Reversal flips sibling order, so compare against the reversed
	// expectation built parent-first with the same sibling order.
	siblingsReversed := []*types.Recipe{
		rec("C", "R", "R"),
		rec("A", "R", "R"),
		rec("F", "C", "R", "C"),
		rec("B", "A", "R", "A"),
		rec("E", "B", "R", "A", "B"),
		rec("D", "B", "R", "A", "B"),
	}
	expect, err := Build(root, siblingsReversed)
	require.NoError(t, err)
	assert.Equal(t, shape(expect.Tree), shape(got.Tree))
	assert.Equal(t, "R(C(F),A(B(E,D)))", shape(got.Tree))
	assert.Equal(t, "R(A(B(D,E)),C(F))", shape(want.Tree))
}

func TestBuildOrderIndependenceOfAncestors(t *testing.T) {
	root, records := sampleTree()
	want, err := Build(root, records)
	require.NoError(t, err)

	// Moving descendants ahead of their ancestors while keeping the relative
	// order of each sibling group must give an identical tree.
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		shuffled := slices.Clone(records)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		shuffled = keepSiblingOrder(records, shuffled)

		got, err := Build(root, shuffled)
		require.NoError(t, err)
		require.True(t, got.OK())
		if !reflect.DeepEqual(want.Tree, got.Tree) {
			t.Fatalf("shuffle %d: got %s, want %s", i, shape(got.Tree), shape(want.Tree))
		}
	}
}

// keepSiblingOrder rewrites shuffled so that records sharing a parent appear
// in the same relative order as in orig, leaving every other position as
// shuffled placed it.
func keepSiblingOrder(orig, shuffled []*types.Recipe) []*types.Recipe {
	queues := map[string][]*types.Recipe{}
	for _, r := range orig {
		queues[r.ParentID] = append(queues[r.ParentID], r)
	}
	out := make([]*types.Recipe, len(shuffled))
	for i, r := range shuffled {
		q := queues[r.ParentID]
		out[i] = q[0]
		queues[r.ParentID] = q[1:]
	}
	return out
}

func TestBuildPartialFailureContainment(t *testing.T) {
	root, records := sampleTree()
	corrupt := rec("X", "B", "R", "A", "C") // last element is not the parent
	records = append(records[:3:3], append([]*types.Recipe{corrupt}, records[3:]...)...)

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A(B(D,E)),C(F))", shape(res.Tree))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "X", res.Diagnostics[0].RecordID)
	assert.Equal(t, 3, res.Diagnostics[0].Position)
	assert.Equal(t, 6, res.Placed)
}

func TestBuildSkipsDescendantsOfSkippedRecord(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("B", "A", "Q", "A"), // wrong root
		rec("C", "B", "Q", "A", "B"),
		rec("D", "A", "R", "A"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A(D))", shape(res.Tree))
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "B", res.Diagnostics[0].RecordID)
	assert.Equal(t, "C", res.Diagnostics[1].RecordID)
}

func TestBuildDescendantOfInvalidParentIsSkipped(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("B", "X", "R", "A"), // parent id disagrees with path
		rec("C", "B", "R", "A", "B"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A)", shape(res.Tree))
	require.Len(t, res.Diagnostics, 2)
	assert.Contains(t, res.Diagnostics[1].Reason, `"B" could not be placed`)
}

func TestBuildRejectsInconsistentPrefix(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("C", "R", "R"),
		rec("B", "A", "R", "A"),
		// B is registered at depth 2 with path [R A]; D claims B's path is [R C].
		rec("D", "B", "R", "C", "B"),
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A(B),C)", shape(res.Tree))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "D", res.Diagnostics[0].RecordID)
}

func TestBuildAncestorAtWrongDepth(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("B", "A", "R", "R", "A"), // A is at depth 1, not 2
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A)", shape(res.Tree))
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Reason, "not found at depth")
}

func TestBuildDuplicatesAndEmptyPaths(t *testing.T) {
	root := rec("R", "")
	records := []*types.Recipe{
		rec("A", "R", "R"),
		rec("A", "R", "R"),
		rec("R", "R", "R"),
		rec("E", "R"), // non-root with empty path
		{ID: "", ParentID: "R", Path: []string{"R"}},
		nil,
	}

	res, err := Build(root, records)
	require.NoError(t, err)
	assert.Equal(t, "R(A)", shape(res.Tree))
	require.Len(t, res.Diagnostics, 5)
	assert.Equal(t, KindDuplicateRecord, res.Diagnostics[0].Kind)
	assert.True(t, errors.Is(res.Diagnostics[0], ErrDuplicateRecord))
	assert.Equal(t, KindDuplicateRecord, res.Diagnostics[1].Kind)
	assert.Equal(t, KindMalformedPath, res.Diagnostics[2].Kind)
	assert.Equal(t, 5, res.Diagnostics[4].Position)
}

func TestBuildIsIdempotent(t *testing.T) {
	root, records := sampleTree()
	first, err := Build(root, records)
	require.NoError(t, err)
	second, err := Build(root, records)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first.Tree, second.Tree))
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	root, records := sampleTree()
	before := make([]*types.Recipe, len(records))
	for i, r := range records {
		before[i] = r.Clone()
	}

	_, err := Build(root, records)
	require.NoError(t, err)
	for i := range records {
		assert.Equal(t, before[i], records[i])
	}
}

func TestBuildCarriesPayload(t *testing.T) {
	root := &types.Recipe{ID: "R", Title: "Ramen", Description: "Tonkotsu", OwnerID: "kai"}
	child := &types.Recipe{ID: "A", ParentID: "R", Path: []string{"R"}, Title: "Miso ramen", Description: "Less pork", OwnerID: "lu"}

	res, err := Build(root, []*types.Recipe{child})
	require.NoError(t, err)
	assert.Equal(t, "Ramen", res.Tree.Label)
	assert.Equal(t, "kai", res.Tree.Owner)
	require.Len(t, res.Tree.Children, 1)
	n := res.Tree.Children[0]
	assert.Equal(t, "Miso ramen", n.Label)
	assert.Equal(t, "Less pork", n.Description)
	assert.Equal(t, "lu", n.Owner)
	assert.Equal(t, "R", n.ParentID)
	assert.Equal(t, 1, n.Depth)
}

func TestBuildDepthIndex(t *testing.T) {
	root, records := sampleTree()
	res, err := Build(root, records)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Index.Depths())
	assert.Equal(t, []string{"R"}, res.Index.At(0))
	assert.Equal(t, []string{"A", "C"}, res.Index.At(1))
	assert.Equal(t, []string{"B", "F"}, res.Index.At(2))
	assert.Equal(t, []string{"D", "E"}, res.Index.At(3))
	assert.Nil(t, res.Index.At(9))

	rank, ok := res.Index.Rank(2, "F")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)
	_, ok = res.Index.Rank(1, "F")
	assert.False(t, ok)

	depth, width := res.Index.Widest()
	assert.Equal(t, 1, depth)
	assert.Equal(t, 2, width)
}

func TestBuildDeepChain(t *testing.T) {
	const depth = 2000
	root := rec("n0", "")
	records := make([]*types.Recipe, 0, depth)
	parent := root
	for i := 1; i <= depth; i++ {
		child, err := fork.New(parent, &types.Recipe{})
		require.NoError(t, err)
		child.ID = fmt.Sprintf("n%d", i)
		records = append(records, child)
		parent = child
	}
	slices.Reverse(records)

	res, err := Build(root, records)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, depth+1, res.Tree.Size())

	stats := Summarize(res)
	assert.Equal(t, depth, stats.MaxDepth)
	assert.Equal(t, 1, stats.Leaves)
}

func TestBuildConcurrentCalls(t *testing.T) {
	root, records := sampleTree()
	want, err := Build(root, records)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Build(root, records)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NotNil(t, r, "result %d", i)
		assert.True(t, reflect.DeepEqual(want.Tree, r.Tree), "result %d", i)
	}
}

func TestSummarize(t *testing.T) {
	root, records := sampleTree()
	records = append(records, rec("Z", "Q", "Q"))
	res, err := Build(root, records)
	require.NoError(t, err)

	s := Summarize(res)
	assert.Equal(t, "R", s.RootID)
	assert.Equal(t, 7, s.Versions)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 3, s.MaxDepth)
	assert.Equal(t, 3, s.Leaves) // D, E, F
	assert.Equal(t, 1, s.WidestDepth)
	assert.Equal(t, 2, s.Width)
}
