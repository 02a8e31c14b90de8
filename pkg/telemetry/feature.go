package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yesoreyeram/pinnal/pkg/fgraph"
	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// Feature implements the container's listener protocol and records every
// structural event as telemetry. Attach one instance per graph, or share
// one across graphs; events carry the graph ID either way.
type Feature struct {
	provider *Provider
}

// NewFeature creates a telemetry feature backed by provider.
func NewFeature(provider *Provider) *Feature {
	return &Feature{provider: provider}
}

// FeatureName implements fgraph.Feature.
func (f *Feature) FeatureName() string {
	return "Telemetry"
}

// OnImport implements fgraph.Importer.
func (f *Feature) OnImport(g *fgraph.Graph, node *graph.Apply, reason string) {
	f.provider.RecordImport(context.Background(), g.ID(), node.Op.Name(), reason)
}

// OnPrune implements fgraph.Pruner.
func (f *Feature) OnPrune(g *fgraph.Graph, node *graph.Apply, reason string) {
	f.provider.RecordPrune(context.Background(), g.ID(), node.Op.Name(), reason)
}

// OnChangeInput implements fgraph.InputChanger. It observes the edit and
// never vetoes.
func (f *Feature) OnChangeInput(g *fgraph.Graph, c fgraph.Client, old, new *graph.Variable, reason string) error {
	ctx := context.Background()
	f.provider.RecordChange(ctx, g.ID(), reason, len(g.ApplyNodes()))

	if tracer := f.provider.Tracer(); tracer != nil {
		_, span := tracer.Start(ctx, "graph.change_input",
			trace.WithAttributes(
				attribute.String("graph.id", g.ID()),
				attribute.String("client", c.String()),
				attribute.String("old", old.String()),
				attribute.String("new", new.String()),
				attribute.String("reason", reason),
			),
		)
		span.End()
	}
	return nil
}

// Flush records the container's cumulative callback timings. Call it at
// the end of a rewrite pass.
func (f *Feature) Flush(ctx context.Context, g *fgraph.Graph) {
	for feat, d := range g.CallbackTimes() {
		f.provider.RecordCallbackTime(ctx, g.ID(), feat.FeatureName(), d.Seconds())
	}
}
