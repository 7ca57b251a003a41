package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/collaboreats/collaboreats/internal/storage"
	"github.com/collaboreats/collaboreats/internal/types"
)

const storageScopeName = "github.com/collaboreats/collaboreats/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in ce.storage.* metrics.
type InstrumentedStorage struct {
	inner  storage.Storage
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	return newInstrumented(s, Tracer(storageScopeName), Meter(storageScopeName))
}

func newInstrumented(s storage.Storage, tracer trace.Tracer, m metric.Meter) *InstrumentedStorage {
	ops, _ := m.Int64Counter("ce.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("ce.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("ce.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &InstrumentedStorage{inner: s, tracer: tracer, ops: ops, dur: dur, errs: errs}
}

// Unwrap returns the decorated store.
func (s *InstrumentedStorage) Unwrap() storage.Storage {
	return s.inner
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("db.operation", name)))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, name string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("db.operation", name))
	s.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func (s *InstrumentedStorage) CreateRecipe(ctx context.Context, recipe *types.Recipe, actor string) error {
	ctx, span, t := s.op(ctx, "CreateRecipe",
		attribute.String("ce.actor", actor),
		attribute.Int("ce.recipe.depth", recipe.Depth()),
	)
	err := s.inner.CreateRecipe(ctx, recipe, actor)
	if err == nil {
		span.SetAttributes(attribute.String("ce.recipe.id", recipe.ID))
	}
	s.done(ctx, span, "CreateRecipe", t, err)
	return err
}

func (s *InstrumentedStorage) ForkRecipe(ctx context.Context, parentID string, draft *types.Recipe, actor string) (*types.Recipe, error) {
	ctx, span, t := s.op(ctx, "ForkRecipe",
		attribute.String("ce.actor", actor),
		attribute.String("ce.recipe.parent_id", parentID),
	)
	v, err := s.inner.ForkRecipe(ctx, parentID, draft, actor)
	if err == nil {
		span.SetAttributes(
			attribute.String("ce.recipe.id", v.ID),
			attribute.Int("ce.recipe.depth", v.Depth()),
		)
	}
	s.done(ctx, span, "ForkRecipe", t, err)
	return v, err
}

func (s *InstrumentedStorage) GetRecipe(ctx context.Context, id string) (*types.Recipe, error) {
	ctx, span, t := s.op(ctx, "GetRecipe", attribute.String("ce.recipe.id", id))
	v, err := s.inner.GetRecipe(ctx, id)
	s.done(ctx, span, "GetRecipe", t, err)
	return v, err
}

func (s *InstrumentedStorage) ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]*types.Recipe, error) {
	ctx, span, t := s.op(ctx, "ListRecipes",
		attribute.Bool("ce.filter.roots_only", filter.RootsOnly),
		attribute.String("ce.filter.owner", filter.OwnerID),
	)
	v, err := s.inner.ListRecipes(ctx, filter)
	if err == nil {
		span.SetAttributes(attribute.Int("ce.result.count", len(v)))
	}
	s.done(ctx, span, "ListRecipes", t, err)
	return v, err
}

func (s *InstrumentedStorage) GetVersionTree(ctx context.Context, rootID string) (*types.VersionSet, error) {
	ctx, span, t := s.op(ctx, "GetVersionTree", attribute.String("ce.tree.root_id", rootID))
	v, err := s.inner.GetVersionTree(ctx, rootID)
	if err == nil {
		span.SetAttributes(attribute.Int("ce.result.count", v.Len()))
	}
	s.done(ctx, span, "GetVersionTree", t, err)
	return v, err
}

func (s *InstrumentedStorage) MostRecentVersion(ctx context.Context, rootID string) (*types.Recipe, error) {
	ctx, span, t := s.op(ctx, "MostRecentVersion", attribute.String("ce.tree.root_id", rootID))
	v, err := s.inner.MostRecentVersion(ctx, rootID)
	s.done(ctx, span, "MostRecentVersion", t, err)
	return v, err
}

func (s *InstrumentedStorage) MostForkedVersion(ctx context.Context, rootID string) (*types.ForkCount, error) {
	ctx, span, t := s.op(ctx, "MostForkedVersion", attribute.String("ce.tree.root_id", rootID))
	v, err := s.inner.MostForkedVersion(ctx, rootID)
	s.done(ctx, span, "MostForkedVersion", t, err)
	return v, err
}

func (s *InstrumentedStorage) AddComment(ctx context.Context, recipeID, author, text string) (*types.Comment, error) {
	ctx, span, t := s.op(ctx, "AddComment", attribute.String("ce.recipe.id", recipeID))
	v, err := s.inner.AddComment(ctx, recipeID, author, text)
	s.done(ctx, span, "AddComment", t, err)
	return v, err
}

func (s *InstrumentedStorage) GetComments(ctx context.Context, recipeID string) ([]*types.Comment, error) {
	ctx, span, t := s.op(ctx, "GetComments", attribute.String("ce.recipe.id", recipeID))
	v, err := s.inner.GetComments(ctx, recipeID)
	s.done(ctx, span, "GetComments", t, err)
	return v, err
}

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
