package fgraph

import (
	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// ReplaceValidate is the built-in guard attached last to every container.
// After each input change it re-checks that the graph is still a DAG and
// that no op destroys a constant input, and vetoes the edit with an
// InconsistencyError otherwise. View maps are not examined. The container's
// journal performs the actual revert.
type ReplaceValidate struct{}

// NewReplaceValidate creates the guard feature.
func NewReplaceValidate() *ReplaceValidate {
	return &ReplaceValidate{}
}

// FeatureName implements Feature.
func (f *ReplaceValidate) FeatureName() string {
	return "ReplaceValidate"
}

// OnAttach implements Attacher: a second instance is functionally
// identical, so attachment aborts with ErrAlreadyThere.
func (f *ReplaceValidate) OnAttach(g *Graph) error {
	for _, existing := range g.Features() {
		if _, ok := existing.(*ReplaceValidate); ok {
			return ErrAlreadyThere
		}
	}
	return nil
}

// OnChangeInput implements InputChanger.
func (f *ReplaceValidate) OnChangeInput(g *Graph, c Client, old, new *graph.Variable, reason string) error {
	// The full sort, not Toposort: its small-graph shortcut would skip the
	// cycle check exactly when a rewire left a node consuming itself.
	if _, err := graph.IOToposort(g.Inputs, g.Outputs, g.MergedOrderings()); err != nil {
		return Inconsistencyf("rewiring %s to %s introduces a cycle", c, new)
	}
	for _, node := range g.ApplyNodes() {
		for _, inIdxs := range node.Op.DestroyMap() {
			for _, inIdx := range inIdxs {
				if node.Inputs[inIdx].IsConstant() {
					return Inconsistencyf("op %s destroys constant input %d", node.Op.Name(), inIdx)
				}
			}
		}
	}
	return nil
}
