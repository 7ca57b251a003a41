package versiontree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/collaboreats/collaboreats/internal/fork"
	"github.com/collaboreats/collaboreats/internal/types"
)

// ErrMissingRoot is returned when the root handed to Build has a parent or
// an ancestry path. There is no well-defined tree without a valid root.
var ErrMissingRoot = fork.ErrMissingRoot

// Result is the outcome of a build: the tree, the records that were skipped,
// and the depth index used to place the rest.
type Result struct {
	Tree        *types.TreeNode `json:"tree" yaml:"tree"`
	Diagnostics []Diagnostic    `json:"diagnostics" yaml:"diagnostics"`
	Index       *DepthIndex     `json:"-" yaml:"-"`
	Placed      int             `json:"placed" yaml:"placed"` // records attached below the root
}

// OK reports whether every record was placed.
func (r *Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Err joins all diagnostics into one error, or returns nil if there are none.
func (r *Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

type state int

const (
	pending state = iota
	placed
	rejected
)

// entry is the per-record bookkeeping for one build.
type entry struct {
	rec    *types.Recipe
	node   *types.TreeNode
	state  state
	kind   Kind
	reason string
}

func (e *entry) reject(kind Kind, format string, args ...any) {
	e.state = rejected
	e.kind = kind
	e.reason = fmt.Sprintf(format, args...)
}

type builder struct {
	root    *entry
	entries []*entry // parallel to the input records
	owners  map[slot]*entry
	seen    map[string]bool
	index   *DepthIndex
}

// Build reconstructs the fork tree rooted at root from records. The input is
// never modified and its order only decides sibling order; ancestors may
// appear after their descendants.
func Build(root *types.Recipe, records []*types.Recipe) (*Result, error) {
	if err := fork.ValidateRoot(root); err != nil {
		return nil, err
	}

	b := &builder{
		entries: make([]*entry, len(records)),
		owners:  make(map[slot]*entry, len(records)+1),
		seen:    make(map[string]bool, len(records)+1),
		index:   newDepthIndex(len(records) + 1),
	}
	b.indexDepths(root, records)
	b.resolve()
	return b.place(), nil
}

// indexDepths is phase 1: register every record at its depth and allocate
// its node.
func (b *builder) indexDepths(root *types.Recipe, records []*types.Recipe) {
	b.root = &entry{rec: root, node: types.NewTreeNode(root), state: placed}
	b.register(0, b.root)

	for i, rec := range records {
		e := &entry{rec: rec}
		b.entries[i] = e

		switch {
		case rec == nil:
			e.rec = &types.Recipe{}
			e.reject(KindMalformedPath, "record is nil")
			continue
		case rec.ID == "":
			e.reject(KindMalformedPath, "record has no id")
			continue
		case b.seen[rec.ID]:
			e.reject(KindDuplicateRecord, "id %q is already registered", rec.ID)
			continue
		case rec.Depth() == 0:
			e.reject(KindMalformedPath, "non-root record has an empty ancestry path")
			continue
		}

		e.node = types.NewTreeNode(rec)
		b.register(rec.Depth(), e)
	}
}

func (b *builder) register(depth int, e *entry) {
	b.seen[e.rec.ID] = true
	b.owners[slot{depth, e.rec.ID}] = e
	b.index.add(depth, e.rec.ID)
}

// resolve is the first half of phase 2: decide, shallowest depth first,
// which records can be placed. A record's parent always sits one level up,
// so its fate is known by the time the record itself is checked.
func (b *builder) resolve() {
	for depth := 1; depth < b.index.Depths(); depth++ {
		for _, id := range b.index.At(depth) {
			b.check(b.owners[slot{depth, id}])
		}
	}
}

func (b *builder) check(e *entry) {
	rec := e.rec
	path := rec.Path
	depth := len(path)
	rootID := b.root.rec.ID

	if path[0] != rootID {
		e.reject(KindMalformedPath, "path starts at %q, not at root %q", path[0], rootID)
		return
	}
	last := path[depth-1]
	if rec.ParentID != last {
		e.reject(KindMalformedPath, "parent %q does not match last path element %q", rec.ParentID, last)
		return
	}

	// Walk the path: each ancestor must be registered at its own depth.
	for j, ancestorID := range path {
		if ancestorID == rec.ID {
			e.reject(KindMalformedPath, "record appears in its own path at depth %d", j)
			return
		}
		if _, ok := b.owners[slot{j, ancestorID}]; !ok {
			e.reject(KindMalformedPath, "ancestor %q not found at depth %d", ancestorID, j)
			return
		}
	}

	parent := b.owners[slot{depth - 1, last}]
	if parent.state != placed {
		e.reject(KindMalformedPath, "ancestor %q could not be placed", last)
		return
	}
	if !slices.Equal(parent.rec.Path, path[:depth-1]) {
		e.reject(KindMalformedPath, "path %v does not extend parent path %v", path, parent.rec.Path)
		return
	}
	e.state = placed
}

// place is the second half of phase 2: attach nodes in input order and
// collect diagnostics for everything else.
func (b *builder) place() *Result {
	res := &Result{
		Tree:        b.root.node,
		Diagnostics: []Diagnostic{},
		Index:       b.index,
	}

	for i, e := range b.entries {
		if e.state != placed {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				RecordID: e.rec.ID,
				Position: i,
				Kind:     e.kind,
				Reason:   e.reason,
			})
			continue
		}

		path := e.rec.Path
		parent := b.owners[slot{len(path) - 1, path[len(path)-1]}]
		parent.node.Children = append(parent.node.Children, e.node)
		res.Placed++
	}

	return res
}
