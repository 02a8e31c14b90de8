package graph

import (
	"github.com/yesoreyeram/pinnal/pkg/orderedset"
)

// Inputs walks upward from the given outputs and returns every ownerless,
// non-constant variable encountered, in discovery order. These are the
// source roots a container built without an explicit input list will use.
func Inputs(outputs []*Variable) []*Variable {
	roots := orderedset.New[*Variable]()
	for _, v := range VarsBetween(nil, outputs) {
		if v.Owner == nil && !v.IsConstant() {
			roots.Add(v)
		}
	}
	return roots.Values()
}

// VarsBetween returns every variable on a path between ins and outs,
// in deterministic discovery order. Descent stops at variables listed in
// ins; all outputs of every visited node are included, whether or not they
// feed an output.
func VarsBetween(ins, outs []*Variable) []*Variable {
	stop := orderedset.New(ins...)
	seen := orderedset.New[*Variable]()

	stack := make([]*Variable, len(outs))
	// Reverse so the leftmost output is expanded first.
	for i, v := range outs {
		stack[len(outs)-1-i] = v
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen.Contains(v) {
			continue
		}
		seen.Add(v)
		if v.Owner == nil || stop.Contains(v) {
			continue
		}
		next := make([]*Variable, 0, len(v.Owner.Inputs)+len(v.Owner.Outputs))
		next = append(next, v.Owner.Inputs...)
		next = append(next, v.Owner.Outputs...)
		for i := len(next) - 1; i >= 0; i-- {
			if !seen.Contains(next[i]) {
				stack = append(stack, next[i])
			}
		}
	}
	return seen.Values()
}

// ApplysBetween returns every Apply node on a path between ins and outs,
// in deterministic discovery order. Descent stops at variables listed in
// ins.
func ApplysBetween(ins, outs []*Variable) []*Apply {
	stop := orderedset.New(ins...)
	seenVars := orderedset.New[*Variable]()
	nodes := orderedset.New[*Apply]()

	stack := make([]*Variable, len(outs))
	for i, v := range outs {
		stack[len(outs)-1-i] = v
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seenVars.Contains(v) {
			continue
		}
		seenVars.Add(v)
		if v.Owner == nil || stop.Contains(v) {
			continue
		}
		nodes.Add(v.Owner)
		in := v.Owner.Inputs
		for i := len(in) - 1; i >= 0; i-- {
			if !seenVars.Contains(in[i]) {
				stack = append(stack, in[i])
			}
		}
	}
	return nodes.Values()
}

// Orderings is an insertion-ordered map from an Apply node to the nodes
// that must be sorted before it, beyond what the data edges already imply.
// Features contribute these to constrain the topological sort; the type
// itself guarantees deterministic iteration.
type Orderings struct {
	keys    []*Apply
	prereqs map[*Apply][]*Apply
}

// NewOrderings creates an empty constraint map.
func NewOrderings() *Orderings {
	return &Orderings{prereqs: make(map[*Apply][]*Apply)}
}

// Add appends prereqs to the constraint list of node.
func (o *Orderings) Add(node *Apply, prereqs ...*Apply) {
	if _, ok := o.prereqs[node]; !ok {
		o.keys = append(o.keys, node)
	}
	o.prereqs[node] = append(o.prereqs[node], prereqs...)
}

// Get returns the prereq list recorded for node, or nil.
func (o *Orderings) Get(node *Apply) []*Apply {
	if o == nil {
		return nil
	}
	return o.prereqs[node]
}

// Len returns the number of constrained nodes.
func (o *Orderings) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Each calls fn for every constrained node in insertion order.
func (o *Orderings) Each(fn func(node *Apply, prereqs []*Apply)) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		fn(k, o.prereqs[k])
	}
}

// Merge appends every constraint of other into o, preserving order.
func (o *Orderings) Merge(other *Orderings) {
	other.Each(func(node *Apply, prereqs []*Apply) {
		o.Add(node, prereqs...)
	})
}

// IOToposort returns an ordering of the Apply nodes between ins and outs
// such that every producer precedes its consumers and every constraint in
// ords is satisfied. The sort is Kahn's algorithm over an insertion-ordered
// frontier, so two calls on identical structure return identical sequences.
// A cycle, whether introduced by extra orderings or by a rewire that makes
// a node consume its own output, fails with ErrCycleDetected.
func IOToposort(ins, outs []*Variable, ords *Orderings) ([]*Apply, error) {
	nodes := ApplysBetween(ins, outs)
	if len(nodes) == 0 {
		return nodes, nil
	}

	member := orderedset.New(nodes...)
	depCount := make(map[*Apply]int, len(nodes))
	dependents := make(map[*Apply][]*Apply, len(nodes))

	for _, n := range nodes {
		deps := orderedset.New[*Apply]()
		for _, in := range n.Inputs {
			if in.Owner != nil && member.Contains(in.Owner) {
				deps.Add(in.Owner)
			}
		}
		for _, p := range ords.Get(n) {
			if member.Contains(p) {
				deps.Add(p)
			}
		}
		depCount[n] = deps.Len()
		deps.Each(func(d *Apply) {
			dependents[d] = append(dependents[d], n)
		})
	}

	// Preallocated FIFO (each node is enqueued once) keeps the sort stable
	// without slice churn.
	queue := make([]*Apply, len(nodes))
	qhead, qtail := 0, 0
	for _, n := range nodes {
		if depCount[n] == 0 {
			queue[qtail] = n
			qtail++
		}
	}

	order := make([]*Apply, 0, len(nodes))
	for qhead < qtail {
		n := queue[qhead]
		qhead++
		order = append(order, n)
		for _, d := range dependents[n] {
			depCount[d]--
			if depCount[d] == 0 {
				queue[qtail] = d
				qtail++
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
