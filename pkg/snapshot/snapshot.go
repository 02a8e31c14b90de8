package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yesoreyeram/pinnal/pkg/fgraph"
	"github.com/yesoreyeram/pinnal/pkg/graph"
	"github.com/yesoreyeram/pinnal/pkg/testvalue"
)

// snapshotVersion is the current snapshot format version
const snapshotVersion = "1.0.0"

// Sections a feature may exclude through fgraph.SnapshotHooks.
const (
	SectionUpdateMapping = "update_mapping"
	SectionTestValues    = "test_values"
)

// Snapshot is the serialized form of a graph container: handle-indexed
// variable and node tables plus the input and output slot lists. Callback
// timing state is never serialized.
type Snapshot struct {
	// Metadata
	Version   string    `json:"version"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	GraphID   string    `json:"graph_id"`

	// Structure
	Variables []VarRecord  `json:"variables"`
	Nodes     []NodeRecord `json:"nodes"`
	Inputs    []int        `json:"inputs"`
	Outputs   []int        `json:"outputs"`

	// Optional sections, omitted when a feature claims them
	UpdateMapping []UpdatePair `json:"update_mapping,omitempty"`
}

// VarRecord serializes one variable. Handle is its index in the variable
// table; owner wiring is reconstructed from the node records.
type VarRecord struct {
	Handle    int             `json:"handle"`
	Name      string          `json:"name,omitempty"`
	Type      json.RawMessage `json:"type"`
	Constant  bool            `json:"constant,omitempty"`
	Value     any             `json:"value,omitempty"`
	TestValue any             `json:"test_value,omitempty"`
	HasTest   bool            `json:"has_test_value,omitempty"`
}

// NodeRecord serializes one apply node over variable handles.
type NodeRecord struct {
	Op      json.RawMessage `json:"op"`
	Inputs  []int           `json:"inputs"`
	Outputs []int           `json:"outputs"`
}

// UpdatePair associates an input handle with the output handle carrying
// its next value.
type UpdatePair struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Save serializes g. Sections named by any feature's SnapshotOmit are
// left out of the snapshot.
func Save(g *fgraph.Graph, codec Codec) (*Snapshot, error) {
	omitted := map[string]bool{}
	for _, f := range g.Features() {
		if h, ok := f.(fgraph.SnapshotHooks); ok {
			for _, section := range h.SnapshotOmit() {
				omitted[section] = true
			}
		}
	}

	vars := g.Variables()
	handles := make(map[*graph.Variable]int, len(vars))
	for i, v := range vars {
		handles[v] = i
	}

	snap := &Snapshot{
		Version:   snapshotVersion,
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		GraphID:   g.ID(),
		Variables: make([]VarRecord, 0, len(vars)),
		Nodes:     make([]NodeRecord, 0, len(g.ApplyNodes())),
		Inputs:    make([]int, 0, len(g.Inputs)),
		Outputs:   make([]int, 0, len(g.Outputs)),
	}

	for i, v := range vars {
		typeDoc, err := codec.EncodeType(v.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v, err)
		}
		rec := VarRecord{Handle: i, Name: v.Name, Type: typeDoc}
		if val, ok := v.ConstValue(); ok {
			rec.Constant = true
			rec.Value = val
		}
		if !omitted[SectionTestValues] && v.Tag.Present {
			rec.TestValue = v.Tag.TestValue
			rec.HasTest = true
		}
		snap.Variables = append(snap.Variables, rec)
	}

	for _, n := range g.ApplyNodes() {
		opDoc, err := codec.EncodeOp(n.Op)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n, err)
		}
		rec := NodeRecord{Op: opDoc, Inputs: make([]int, 0, len(n.Inputs))}
		for _, in := range n.Inputs {
			h, ok := handles[in]
			if !ok {
				return nil, fmt.Errorf("%w: node input %s is not tracked", ErrCorrupt, in)
			}
			rec.Inputs = append(rec.Inputs, h)
		}
		for _, out := range n.Outputs {
			h, ok := handles[out]
			if !ok {
				return nil, fmt.Errorf("%w: node output %s is not tracked", ErrCorrupt, out)
			}
			rec.Outputs = append(rec.Outputs, h)
		}
		snap.Nodes = append(snap.Nodes, rec)
	}

	for _, in := range g.Inputs {
		snap.Inputs = append(snap.Inputs, handles[in])
	}
	for _, out := range g.Outputs {
		h, ok := handles[out]
		if !ok {
			return nil, fmt.Errorf("%w: output %s is not tracked", ErrCorrupt, out)
		}
		snap.Outputs = append(snap.Outputs, h)
	}

	if !omitted[SectionUpdateMapping] {
		for in, out := range g.UpdateMapping {
			ih, ok := handles[in]
			if !ok {
				continue
			}
			oh, ok := handles[out]
			if !ok {
				continue
			}
			snap.UpdateMapping = append(snap.UpdateMapping, UpdatePair{Input: ih, Output: oh})
		}
	}

	return snap, nil
}

// Marshal renders a snapshot as JSON.
func Marshal(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// Restore validates data against the snapshot schema and rebuilds the
// graph container. Features passed through opts (fgraph.WithFeatures) are
// attached before their OnRestore hooks run; the restored graph starts
// with fresh callback timing.
func Restore(data []byte, codec Codec, opts ...fgraph.Option) (*fgraph.Graph, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %q, want %q", ErrVersionMismatch, snap.Version, snapshotVersion)
	}

	vars := make([]*graph.Variable, len(snap.Variables))
	for i, rec := range snap.Variables {
		if rec.Handle != i {
			return nil, fmt.Errorf("%w: variable handle %d at position %d", ErrCorrupt, rec.Handle, i)
		}
		ty, err := codec.DecodeType(rec.Type)
		if err != nil {
			return nil, err
		}
		if rec.Constant {
			vars[i] = graph.NewConstant(ty, rec.Value, rec.Name)
		} else {
			vars[i] = graph.NewVariable(ty, rec.Name)
		}
		if rec.HasTest {
			testvalue.Set(vars[i], rec.TestValue)
		}
	}

	lookup := func(h int) (*graph.Variable, error) {
		if h < 0 || h >= len(vars) {
			return nil, fmt.Errorf("%w: variable handle %d out of range", ErrCorrupt, h)
		}
		return vars[h], nil
	}

	for _, rec := range snap.Nodes {
		op, err := codec.DecodeOp(rec.Op)
		if err != nil {
			return nil, err
		}
		inputs := make([]*graph.Variable, len(rec.Inputs))
		for i, h := range rec.Inputs {
			if inputs[i], err = lookup(h); err != nil {
				return nil, err
			}
		}
		outputs := make([]*graph.Variable, len(rec.Outputs))
		for i, h := range rec.Outputs {
			if outputs[i], err = lookup(h); err != nil {
				return nil, err
			}
			if outputs[i].Owner != nil {
				return nil, fmt.Errorf("%w: variable %d has two owners", ErrCorrupt, h)
			}
		}
		graph.NewApply(op, inputs, outputs)
	}

	inputs := make([]*graph.Variable, len(snap.Inputs))
	for i, h := range snap.Inputs {
		var err error
		if inputs[i], err = lookup(h); err != nil {
			return nil, err
		}
	}
	outputs := make([]*graph.Variable, len(snap.Outputs))
	for i, h := range snap.Outputs {
		var err error
		if outputs[i], err = lookup(h); err != nil {
			return nil, err
		}
	}

	g, err := fgraph.New(inputs, outputs, append([]fgraph.Option{fgraph.WithClone(false)}, opts...)...)
	if err != nil {
		return nil, err
	}

	if len(snap.UpdateMapping) > 0 {
		g.UpdateMapping = make(map[*graph.Variable]*graph.Variable, len(snap.UpdateMapping))
		for _, pair := range snap.UpdateMapping {
			in, err := lookup(pair.Input)
			if err != nil {
				return nil, err
			}
			out, err := lookup(pair.Output)
			if err != nil {
				return nil, err
			}
			g.UpdateMapping[in] = out
		}
	}

	g.ResetCallbackTimes()
	for _, f := range g.Features() {
		if h, ok := f.(fgraph.SnapshotHooks); ok {
			h.OnRestore(g)
		}
	}

	if err := g.CheckIntegrity(); err != nil {
		return nil, err
	}
	return g, nil
}
