package fgraph

import "github.com/yesoreyeram/pinnal/pkg/graph"

// journal is the pre-edit record of one ChangeInput: the rewired slot and
// the variables on both sides. When a feature vetoes the edit the journal
// is replayed in reverse, restoring the slot, re-importing whatever the
// prune cascade removed from the old variable's subgraph, and pruning the
// structure the new variable pulled in.
type journal struct {
	slot Client
	old  *graph.Variable
	new  *graph.Variable
}

// revert undoes the journaled edit. Re-import and prune fire their usual
// OnImport/OnPrune callbacks so features observe a consistent event
// stream; OnChangeInput is deliberately not re-fired for the inverse
// rewiring, which is what keeps a veto from looping.
func (g *Graph) revert(j journal, reason string) {
	g.writeSlot(j.slot, j.old)

	// The old subgraph was structurally intact while pruned, so this
	// cannot fail.
	if err := g.ImportVar(j.old, reason, false); err != nil {
		g.log.WithReason(reason).WithError(err).Error("revert failed to re-import replaced variable")
		return
	}
	g.addClient(j.old, j.slot)
	g.RemoveClient(j.new, j.slot, reason)
}
