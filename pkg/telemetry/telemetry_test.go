package telemetry

import (
	"context"
	"testing"

	"github.com/yesoreyeram/pinnal/pkg/fgraph"
	"github.com/yesoreyeram/pinnal/pkg/graph"
	"github.com/yesoreyeram/pinnal/pkg/types"
)

type testOp struct{ name string }

func (o *testOp) Name() string              { return o.name }
func (o *testOp) ViewMap() map[int][]int    { return nil }
func (o *testOp) DestroyMap() map[int][]int { return nil }

func scalar() graph.Type { return types.Scalar(types.Float64) }

func apply1(op graph.Op, name string, inputs ...*graph.Variable) (*graph.Apply, *graph.Variable) {
	out := graph.NewVariable(scalar(), name)
	n := graph.NewApply(op, inputs, []*graph.Variable{out})
	return n, out
}

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	})
	return p
}

func TestProvider_RecordsStructuralEvents(t *testing.T) {
	p := newProvider(t)
	feat := NewFeature(p)

	x := graph.NewVariable(scalar(), "x")
	y := graph.NewVariable(scalar(), "y")
	_, a := apply1(&testOp{name: "Add"}, "a", x, y)
	_, b := apply1(&testOp{name: "Mul"}, "b", a, x)

	g, err := fgraph.New([]*graph.Variable{x, y}, []*graph.Variable{b},
		fgraph.WithClone(false), fgraph.WithFeatures(feat))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := g.Replace(a, y, "telemetry-test"); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	feat.Flush(context.Background(), g)

	families, err := p.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, want := range []string{
		"graph_imports_total",
		"graph_prunes_total",
		"graph_input_changes_total",
	} {
		if !found[want] {
			t.Errorf("metric family %q not exported; got %v", want, keys(found))
		}
	}
}

func TestProvider_DisabledTracing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTracing = false
	p, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewProvider() error: %v", err)
	}
	defer p.Shutdown(context.Background())

	if p.Tracer() != nil {
		t.Error("Tracer() non-nil with tracing disabled")
	}

	// Change events must still record without a tracer.
	feat := NewFeature(p)
	x := graph.NewVariable(scalar(), "x")
	_, out := apply1(&testOp{name: "Neg"}, "out", x)
	g, err := fgraph.New([]*graph.Variable{x}, []*graph.Variable{out},
		fgraph.WithClone(false), fgraph.WithFeatures(feat))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := g.Replace(x, types.NewScalar(types.Float64, 1.0, "one"), "fold"); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
