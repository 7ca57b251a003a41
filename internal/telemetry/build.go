package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BuildStats is what a tree build reports to RecordBuild.
type BuildStats struct {
	RootID   string
	Versions int
	Skipped  int
	MaxDepth int
	Elapsed  time.Duration
}

// BuildRecorder records version-tree build metrics.
type BuildRecorder struct {
	builds   metric.Int64Counter
	skipped  metric.Int64Counter
	duration metric.Float64Histogram
	depth    metric.Int64Histogram
}

// NewBuildRecorder creates the ce.tree.* instruments on m, or on the global
// meter when m is nil.
func NewBuildRecorder(m metric.Meter) *BuildRecorder {
	if m == nil {
		m = Meter("")
	}
	builds, _ := m.Int64Counter("ce.tree.builds",
		metric.WithDescription("Version trees built"),
	)
	skipped, _ := m.Int64Counter("ce.tree.skipped_records",
		metric.WithDescription("Records left out of a tree because of a broken path"),
	)
	duration, _ := m.Float64Histogram("ce.tree.build.duration",
		metric.WithDescription("Fetch and build time in milliseconds"),
		metric.WithUnit("ms"),
	)
	depth, _ := m.Int64Histogram("ce.tree.depth",
		metric.WithDescription("Deepest placed version per tree"),
	)
	return &BuildRecorder{builds: builds, skipped: skipped, duration: duration, depth: depth}
}

// RecordBuild records one finished build.
func (r *BuildRecorder) RecordBuild(ctx context.Context, s BuildStats) {
	attrs := metric.WithAttributes(attribute.Bool("ce.tree.complete", s.Skipped == 0))
	r.builds.Add(ctx, 1, attrs)
	if s.Skipped > 0 {
		r.skipped.Add(ctx, int64(s.Skipped))
	}
	r.duration.Record(ctx, float64(s.Elapsed.Microseconds())/1000, attrs)
	r.depth.Record(ctx, int64(s.MaxDepth))
}
