// Package forktree fetches version sets from a store and builds their
// trees. It is the layer the CLI and the HTTP API share.
package forktree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/telemetry"
	"github.com/collaboreats/collaboreats/internal/types"
	"github.com/collaboreats/collaboreats/internal/versiontree"
)

// DefaultWorkers bounds concurrent builds in Trees.
const DefaultWorkers = 4

// ErrIncomplete is returned in strict mode when records had to be skipped.
// The View is still returned alongside it.
var ErrIncomplete = errors.New("version tree is incomplete")

// Options configures a Service.
type Options struct {
	// Strict turns any skipped record into ErrIncomplete.
	Strict bool
	// Workers bounds concurrent builds; 0 means DefaultWorkers.
	Workers int
	// Recorder receives build metrics; nil disables them.
	Recorder *telemetry.BuildRecorder
}

// Service builds fork trees on top of a store.
type Service struct {
	store storage.Storage
	opts  Options
}

// View is a fetched version set with its built tree.
type View struct {
	Set    *types.VersionSet   `json:"-"`
	Result *versiontree.Result `json:"result"`
	Stats  versiontree.Stats   `json:"stats"`
}

// New returns a Service over store.
func New(store storage.Storage, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Service{store: store, opts: opts}
}

// Store returns the underlying store.
func (s *Service) Store() storage.Storage {
	return s.store
}

// Tree fetches and builds the tree of the root recipe rootID.
func (s *Service) Tree(ctx context.Context, rootID string) (*View, error) {
	start := time.Now()

	set, err := s.store.GetVersionTree(ctx, rootID)
	if err != nil {
		return nil, err
	}
	res, err := versiontree.Build(set.Root, set.Records)
	if err != nil {
		return nil, fmt.Errorf("build tree %s: %w", rootID, err)
	}

	v := &View{Set: set, Result: res, Stats: versiontree.Summarize(res)}
	if s.opts.Recorder != nil {
		s.opts.Recorder.RecordBuild(ctx, telemetry.BuildStats{
			RootID:   rootID,
			Versions: v.Stats.Versions,
			Skipped:  v.Stats.Skipped,
			MaxDepth: v.Stats.MaxDepth,
			Elapsed:  time.Since(start),
		})
	}

	if s.opts.Strict && !res.OK() {
		return v, fmt.Errorf("%w: %d record(s) skipped: %w", ErrIncomplete, len(res.Diagnostics), res.Err())
	}
	return v, nil
}

// TreeFor builds the tree containing any version id, root or fork.
func (s *Service) TreeFor(ctx context.Context, id string) (*View, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Tree(ctx, r.RootID())
}

// Trees builds several trees concurrently. Results keep the order of
// rootIDs. The first error cancels the remaining builds.
func (s *Service) Trees(ctx context.Context, rootIDs []string) ([]*View, error) {
	views := make([]*View, len(rootIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, id := range rootIDs {
		g.Go(func() error {
			v, err := s.Tree(gctx, id)
			if err != nil {
				return fmt.Errorf("tree %s: %w", id, err)
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// AllTrees builds the tree of every root recipe matching filter.
// RootsOnly is forced on.
func (s *Service) AllTrees(ctx context.Context, filter types.RecipeFilter) ([]*View, error) {
	filter.RootsOnly = true
	roots, err := s.store.ListRecipes(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	return s.Trees(ctx, ids)
}
