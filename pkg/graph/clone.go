package graph

// Equiv maps original variables and nodes to their clones. It is returned
// by CloneGetEquiv so callers can relocate external references into the
// copied subgraph.
type Equiv struct {
	Vars    map[*Variable]*Variable
	Applies map[*Apply]*Apply
}

// NewEquiv creates an empty equivalence memo.
func NewEquiv() *Equiv {
	return &Equiv{
		Vars:    make(map[*Variable]*Variable),
		Applies: make(map[*Apply]*Apply),
	}
}

// Var returns the clone of v, or v itself when it was shared rather than
// copied.
func (e *Equiv) Var(v *Variable) *Variable {
	if m, ok := e.Vars[v]; ok {
		return m
	}
	return v
}

// mapVars maps a slice of variables through the memo.
func mapVars(e *Equiv, vars []*Variable) []*Variable {
	out := make([]*Variable, len(vars))
	for i, v := range vars {
		out[i] = e.Var(v)
	}
	return out
}

// CloneGetEquiv deep-copies the subgraph between ins and outs and returns
// the old-to-new memo. Inputs are copied when copyInputs is set, otherwise
// shared; ownerless variables that are not inputs (constants and orphans)
// are copied when copyOrphans is set. A non-nil memo is extended in place,
// and entries already present are honored, so callers can pin selected
// variables to predetermined replacements.
func CloneGetEquiv(ins, outs []*Variable, copyInputs, copyOrphans bool, memo *Equiv) *Equiv {
	if memo == nil {
		memo = NewEquiv()
	}

	for _, in := range ins {
		if _, ok := memo.Vars[in]; ok {
			continue
		}
		if copyInputs {
			memo.Vars[in] = in.Clone()
		} else {
			memo.Vars[in] = in
		}
	}

	// The data DAG alone cannot cycle, so the sort never fails here.
	order, _ := IOToposort(ins, outs, nil)
	for _, n := range order {
		for _, in := range n.Inputs {
			if _, ok := memo.Vars[in]; ok {
				continue
			}
			// Ownerless and unlisted: an orphan or a constant.
			if in.Owner == nil {
				if copyOrphans {
					memo.Vars[in] = in.Clone()
				} else {
					memo.Vars[in] = in
				}
			}
		}
		clone := n.Clone(mapVars(memo, n.Inputs))
		memo.Applies[n] = clone
		for i, out := range n.Outputs {
			memo.Vars[out] = clone.Outputs[i]
		}
	}

	for _, out := range outs {
		if _, ok := memo.Vars[out]; ok {
			continue
		}
		if out.Owner == nil {
			// Ownerless outputs not listed as inputs are orphans.
			if copyOrphans {
				memo.Vars[out] = out.Clone()
			} else {
				memo.Vars[out] = out
			}
		}
	}

	return memo
}
