package fgraph

import (
	"errors"
	"time"

	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// Feature is a listener attached to a Graph. A feature observes every
// structural change and may veto one. Implementations opt into individual
// callbacks by implementing the capability interfaces below; a feature
// implementing none of them is legal and merely occupies a slot in the
// attachment order.
type Feature interface {
	// FeatureName identifies the feature in errors and telemetry.
	FeatureName() string
}

// Attacher is implemented by features that need to run code at attachment.
// Returning ErrAlreadyThere aborts the attachment silently; any other
// error aborts it loudly.
type Attacher interface {
	OnAttach(g *Graph) error
}

// Detacher is implemented by features that need to run code at removal.
type Detacher interface {
	OnDetach(g *Graph)
}

// Importer receives a callback after a node and its outputs have been
// added to the graph.
type Importer interface {
	OnImport(g *Graph, node *graph.Apply, reason string)
}

// Pruner receives a callback after a node and its outputs have been
// removed from the graph.
type Pruner interface {
	OnPrune(g *Graph, node *graph.Apply, reason string)
}

// InputChanger receives a callback after one input slot has been rewired
// from old to new. Returning a non-nil error (conventionally an
// InconsistencyError) vetoes the edit: the container reverts it and
// propagates the error.
type InputChanger interface {
	OnChangeInput(g *Graph, c Client, old, new *graph.Variable, reason string) error
}

// Orderer contributes extra topological constraints merged into Toposort.
// The returned Orderings iterates deterministically by construction.
type Orderer interface {
	Orderings(g *Graph) *graph.Orderings
}

// SnapshotHooks is implemented by features that participate in graph
// serialization. SnapshotOmit names the snapshot sections the feature
// owns, which are excluded from the serialized form; OnRestore is invoked
// on the rebuilt graph after deserialization.
type SnapshotHooks interface {
	SnapshotOmit() []string
	OnRestore(g *Graph)
}

// AttachFeature adds a feature and triggers its OnAttach callback.
// Attaching the same instance twice is a no-op, as is an attachment the
// feature itself aborts with ErrAlreadyThere.
func (g *Graph) AttachFeature(f Feature) error {
	for _, existing := range g.features {
		if existing == f {
			return nil
		}
	}
	if a, ok := f.(Attacher); ok {
		if err := a.OnAttach(g); err != nil {
			if errors.Is(err, ErrAlreadyThere) {
				return nil
			}
			return err
		}
	}
	if _, ok := g.callbackTimes[f]; !ok {
		g.callbackTimes[f] = 0
	}
	g.features = append(g.features, f)
	return nil
}

// RemoveFeature removes a feature and triggers its OnDetach callback.
// Removing an absent feature is a no-op.
func (g *Graph) RemoveFeature(f Feature) {
	for i, existing := range g.features {
		if existing == f {
			g.features = append(g.features[:i], g.features[i+1:]...)
			if d, ok := f.(Detacher); ok {
				d.OnDetach(g)
			}
			return
		}
	}
}

// Features returns the attached features in attachment order.
func (g *Graph) Features() []Feature {
	return append([]Feature(nil), g.features...)
}

// CallbackTotal returns the cumulative time spent inside feature callbacks.
func (g *Graph) CallbackTotal() time.Duration {
	return g.callbackTotal
}

// CallbackTimes returns the cumulative callback time per feature.
func (g *Graph) CallbackTimes() map[Feature]time.Duration {
	out := make(map[Feature]time.Duration, len(g.callbackTimes))
	for f, d := range g.callbackTimes {
		out[f] = d
	}
	return out
}

// ResetCallbackTimes clears the callback timing counters. Snapshots call
// this on restored graphs, which never inherit timing state.
func (g *Graph) ResetCallbackTimes() {
	g.callbackTotal = 0
	g.callbackTimes = make(map[Feature]time.Duration)
	for _, f := range g.features {
		g.callbackTimes[f] = 0
	}
}

func (g *Graph) recordCallback(f Feature, d time.Duration) {
	g.callbackTimes[f] += d
	g.callbackTotal += d
}

// notifyImport fires OnImport on every feature that declares it.
func (g *Graph) notifyImport(node *graph.Apply, reason string) {
	for _, f := range g.features {
		imp, ok := f.(Importer)
		if !ok {
			continue
		}
		t0 := time.Now()
		imp.OnImport(g, node, reason)
		g.recordCallback(f, time.Since(t0))
	}
}

// notifyPrune fires OnPrune on every feature that declares it.
func (g *Graph) notifyPrune(node *graph.Apply, reason string) {
	for _, f := range g.features {
		p, ok := f.(Pruner)
		if !ok {
			continue
		}
		t0 := time.Now()
		p.OnPrune(g, node, reason)
		g.recordCallback(f, time.Since(t0))
	}
}

// notifyChangeInput fires OnChangeInput on every feature that declares it,
// stopping at the first veto.
func (g *Graph) notifyChangeInput(c Client, old, new *graph.Variable, reason string) error {
	for _, f := range g.features {
		ch, ok := f.(InputChanger)
		if !ok {
			continue
		}
		t0 := time.Now()
		err := ch.OnChangeInput(g, c, old, new, reason)
		g.recordCallback(f, time.Since(t0))
		if err != nil {
			if ie := asInconsistency(err); ie != nil && ie.Feature == "" {
				ie.Feature = f.FeatureName()
			}
			return err
		}
	}
	return nil
}

// asInconsistency extracts the InconsistencyError from err, if any.
func asInconsistency(err error) *InconsistencyError {
	var ie *InconsistencyError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

// MergedOrderings collects the orderings of every Orderer feature into one
// deterministic constraint map. A single contributing feature's map is
// reused (copied); multiple contributors are merged in attachment order.
func (g *Graph) MergedOrderings() *graph.Orderings {
	// Unlike the event callbacks, collection is not timed.
	var all []*graph.Orderings
	for _, f := range g.features {
		o, ok := f.(Orderer)
		if !ok {
			continue
		}
		ords := o.Orderings(g)
		if ords.Len() > 0 {
			all = append(all, ords)
		}
	}
	merged := graph.NewOrderings()
	for _, ords := range all {
		merged.Merge(ords)
	}
	return merged
}
