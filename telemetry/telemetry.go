// Package telemetry collects hierarchical timings of highlighter
// operations such as loading grammar bundles and tokenizing input.
//
// Collectors travel through a context, so instrumented code does not need
// extra parameters and costs nothing when no collector is installed.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("prisma.LoadGrammars")
//	decode := timer.Child("loader.Decode")
//	// ... work ...
//	decode.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/prisma/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector receives timings.
type Collector interface {
	// Start begins timing an operation. The returned timer must be ended.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for
	// plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector of ctx, or one that discards
// everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
