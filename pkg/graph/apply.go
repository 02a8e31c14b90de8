package graph

// Op is the opaque operation descriptor carried by an Apply node. The
// container reads only the aliasing maps; the operation catalog itself is
// an external collaborator. Ops are compared by identity.
type Op interface {
	// Name identifies the operation in debug output and telemetry.
	Name() string

	// ViewMap maps an output index to the input indices it aliases.
	// Values must be non-empty slices; a nil map means no aliasing.
	ViewMap() map[int][]int

	// DestroyMap maps an output index to the input indices it destroys.
	DestroyMap() map[int][]int
}

// ApplyTag is the mutable metadata bag attached to every Apply node. The
// container records an audit trail of the rewrites that touched the node.
type ApplyTag struct {
	ImportedBy []string
	RemovedBy  []string
}

// Apply is an operation instance: an Op applied to an ordered list of input
// variables, producing an ordered list of output variables. Identity is
// pointer identity.
type Apply struct {
	Op      Op
	Inputs  []*Variable
	Outputs []*Variable
	Tag     ApplyTag
}

// NewApply builds an Apply over the given inputs and adopts each output:
// output owners and indices are wired to the new node. Outputs must be
// ownerless free variables.
func NewApply(op Op, inputs []*Variable, outputs []*Variable) *Apply {
	n := &Apply{
		Op:      op,
		Inputs:  append([]*Variable(nil), inputs...),
		Outputs: append([]*Variable(nil), outputs...),
	}
	for i, out := range n.Outputs {
		out.Owner = n
		out.Index = i
	}
	return n
}

// Clone returns a copy of the node applying the same Op to the given
// inputs, with fresh output variables cloned from the originals.
func (n *Apply) Clone(inputs []*Variable) *Apply {
	outputs := make([]*Variable, len(n.Outputs))
	for i, out := range n.Outputs {
		outputs[i] = out.Clone()
	}
	c := NewApply(n.Op, inputs, outputs)
	c.Tag = ApplyTag{
		ImportedBy: append([]string(nil), n.Tag.ImportedBy...),
		RemovedBy:  append([]string(nil), n.Tag.RemovedBy...),
	}
	return c
}

// String renders the node for debug output.
func (n *Apply) String() string {
	if n.Op == nil {
		return "<apply>"
	}
	return n.Op.Name()
}
