package fgraph

import (
	"fmt"

	"github.com/yesoreyeram/pinnal/pkg/graph"
	"github.com/yesoreyeram/pinnal/pkg/orderedset"
)

// CheckIntegrity audits every structural invariant of the container:
// cached node and variable sets against the recomputed reachable closure,
// forward/backward edge agreement with exact multiplicities, and input
// purity. It is a diagnosis tool for rewrite passes gone wrong; the
// mutating operations maintain these invariants and do not re-audit.
func (g *Graph) CheckIntegrity() error {
	if g.disowned {
		return ErrDisowned
	}

	nodes := orderedset.New(graph.ApplysBetween(g.Inputs, g.Outputs)...)
	for _, n := range nodes.Values() {
		if !g.applyNodes.Contains(n) {
			return fmt.Errorf("%w: reachable node %s is not cached", ErrIntegrity, n)
		}
	}
	for _, n := range g.applyNodes.Values() {
		if !nodes.Contains(n) {
			return fmt.Errorf("%w: cached node %s is not reachable", ErrIntegrity, n)
		}
	}

	// Expected reverse-edge multiset: one entry per input occurrence plus
	// one per output slot.
	expected := make(map[*graph.Variable]int)
	for _, n := range nodes.Values() {
		for i, in := range n.Inputs {
			expected[in]++
			found := false
			for _, c := range g.clients[in] {
				if c.Node == n && c.Index == i {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: missing client %s[%d] on %s", ErrIntegrity, n, i, in)
			}
		}
	}
	for _, out := range g.Outputs {
		expected[out]++
	}

	reach := orderedset.New(graph.VarsBetween(g.Inputs, g.Outputs)...)
	for _, v := range reach.Values() {
		if !g.variables.Contains(v) {
			return fmt.Errorf("%w: reachable variable %s is not cached", ErrIntegrity, v)
		}
	}
	for _, v := range g.variables.Values() {
		if !reach.Contains(v) && !g.isInput(v) {
			return fmt.Errorf("%w: cached variable %s is not reachable", ErrIntegrity, v)
		}
	}

	for _, v := range g.variables.Values() {
		if v.Owner == nil && !v.IsConstant() && !g.isInput(v) {
			return fmt.Errorf("%w: undeclared input %s", ErrIntegrity, v)
		}
		if len(g.clients[v]) != expected[v] {
			return fmt.Errorf("%w: %s has %d clients, expected %d",
				ErrIntegrity, v, len(g.clients[v]), expected[v])
		}
		for _, c := range g.clients[v] {
			if c.IsOutput() {
				if c.Index < 0 || c.Index >= len(g.Outputs) || g.Outputs[c.Index] != v {
					return fmt.Errorf("%w: stale output client %s on %s", ErrIntegrity, c, v)
				}
				continue
			}
			if !nodes.Contains(c.Node) {
				return fmt.Errorf("%w: client %s of %s is not a member node", ErrIntegrity, c, v)
			}
			if c.Index < 0 || c.Index >= len(c.Node.Inputs) || c.Node.Inputs[c.Index] != v {
				return fmt.Errorf("%w: stale client %s on %s", ErrIntegrity, c, v)
			}
		}
	}
	return nil
}

// Clone deep-copies the container. Integrity of both sides is audited
// when the configuration enables it.
func (g *Graph) Clone() (*Graph, error) {
	ng, _, err := g.CloneGetEquiv(g.cfg.CheckIntegrity, true)
	return ng, err
}

// CloneGetEquiv deep-copies the container and returns the old-to-new
// equivalence memo so callers can relocate external references. Features
// are reattached by identity when attachFeatures is set: the same
// instances serve both graphs.
func (g *Graph) CloneGetEquiv(checkIntegrity, attachFeatures bool) (*Graph, *graph.Equiv, error) {
	if g.disowned {
		return nil, nil, ErrDisowned
	}
	if checkIntegrity {
		if err := g.CheckIntegrity(); err != nil {
			return nil, nil, err
		}
	}

	equiv := graph.CloneGetEquiv(g.Inputs, g.Outputs, true, true, nil)
	mappedIn := make([]*graph.Variable, len(g.Inputs))
	for i, v := range g.Inputs {
		mappedIn[i] = equiv.Var(v)
	}
	mappedOut := make([]*graph.Variable, len(g.Outputs))
	for i, v := range g.Outputs {
		mappedOut[i] = equiv.Var(v)
	}

	ng, err := New(mappedIn, mappedOut,
		WithClone(false),
		WithConfig(g.cfg),
		WithLogger(g.log),
	)
	if err != nil {
		return nil, nil, err
	}
	if checkIntegrity {
		if err := ng.CheckIntegrity(); err != nil {
			return nil, nil, err
		}
	}
	if attachFeatures {
		for _, f := range g.features {
			if err := ng.AttachFeature(f); err != nil {
				return nil, nil, err
			}
		}
	}
	return ng, equiv, nil
}
