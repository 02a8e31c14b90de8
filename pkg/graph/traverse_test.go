package graph

import (
	"testing"
)

type fakeType struct{ kind string }

func (t *fakeType) Equal(other Type) bool {
	o, ok := other.(*fakeType)
	return ok && o.kind == t.kind
}

func (t *fakeType) FilterVariable(v *Variable, allowConvert bool) (*Variable, error) {
	return v, nil
}

type fakeOp struct{ name string }

func (o *fakeOp) Name() string              { return o.name }
func (o *fakeOp) ViewMap() map[int][]int    { return nil }
func (o *fakeOp) DestroyMap() map[int][]int { return nil }

var scalarT = &fakeType{kind: "scalar"}

func mkApply(name string, inputs ...*Variable) (*Apply, *Variable) {
	out := NewVariable(scalarT, name)
	n := NewApply(&fakeOp{name: name}, inputs, []*Variable{out})
	return n, out
}

func TestNewApply_AdoptsOutputs(t *testing.T) {
	x := NewVariable(scalarT, "x")
	o1 := NewVariable(scalarT, "o1")
	o2 := NewVariable(scalarT, "o2")
	n := NewApply(&fakeOp{name: "Split"}, []*Variable{x}, []*Variable{o1, o2})

	if o1.Owner != n || o2.Owner != n {
		t.Error("outputs not adopted")
	}
	if o1.Index != 0 || o2.Index != 1 {
		t.Errorf("output indices = %d, %d, want 0, 1", o1.Index, o2.Index)
	}
}

func TestInputs_FindsRootsExcludingConstants(t *testing.T) {
	x := NewVariable(scalarT, "x")
	y := NewVariable(scalarT, "y")
	k := NewConstant(scalarT, 3.0, "k")
	_, a := mkApply("add", x, k)
	_, b := mkApply("mul", a, y)

	roots := Inputs([]*Variable{b})
	if len(roots) != 2 || roots[0] != x || roots[1] != y {
		t.Errorf("Inputs() = %v, want [x y]", roots)
	}
}

func TestVarsBetween_IncludesAllNodeOutputs(t *testing.T) {
	x := NewVariable(scalarT, "x")
	spare := NewVariable(scalarT, "spare")
	used := NewVariable(scalarT, "used")
	n := NewApply(&fakeOp{name: "Split"}, []*Variable{x}, []*Variable{used, spare})
	_ = n
	_, out := mkApply("neg", used)

	vars := VarsBetween([]*Variable{x}, []*Variable{out})
	found := map[*Variable]bool{}
	for _, v := range vars {
		found[v] = true
	}
	for _, want := range []*Variable{x, spare, used, out} {
		if !found[want] {
			t.Errorf("VarsBetween missing %s", want)
		}
	}
}

func TestVarsBetween_StopsAtFrontier(t *testing.T) {
	x := NewVariable(scalarT, "x")
	_, a := mkApply("neg", x)
	_, b := mkApply("exp", a)

	vars := VarsBetween([]*Variable{a}, []*Variable{b})
	for _, v := range vars {
		if v == x {
			t.Error("traversal descended past the frontier")
		}
	}
}

func TestApplysBetween(t *testing.T) {
	x := NewVariable(scalarT, "x")
	na, a := mkApply("a", x)
	nb, b := mkApply("b", a)

	nodes := ApplysBetween([]*Variable{x}, []*Variable{b})
	if len(nodes) != 2 {
		t.Fatalf("ApplysBetween() = %v, want 2 nodes", nodes)
	}
	seen := map[*Apply]bool{nodes[0]: true, nodes[1]: true}
	if !seen[na] || !seen[nb] {
		t.Errorf("ApplysBetween() = %v, want {a, b}", nodes)
	}
}

func TestIOToposort_ProducersFirst(t *testing.T) {
	x := NewVariable(scalarT, "x")
	na, a := mkApply("a", x)
	nb, b := mkApply("b", x)
	nc, c := mkApply("c", a, b)

	order, err := IOToposort([]*Variable{x}, []*Variable{c}, nil)
	if err != nil {
		t.Fatalf("IOToposort() error: %v", err)
	}
	pos := map[*Apply]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos[na] > pos[nc] || pos[nb] > pos[nc] {
		t.Errorf("producer after consumer: %v", order)
	}
}

func TestIOToposort_Deterministic(t *testing.T) {
	x := NewVariable(scalarT, "x")
	y := NewVariable(scalarT, "y")
	var layer []*Variable
	for i := 0; i < 8; i++ {
		_, v := mkApply("n", x, y)
		layer = append(layer, v)
	}
	_, out := mkApply("sink", layer...)

	first, err := IOToposort([]*Variable{x, y}, []*Variable{out}, nil)
	if err != nil {
		t.Fatalf("IOToposort() error: %v", err)
	}
	second, err := IOToposort([]*Variable{x, y}, []*Variable{out}, nil)
	if err != nil {
		t.Fatalf("IOToposort() error: %v", err)
	}
	if len(first) != 9 {
		t.Fatalf("len(order) = %d, want 9", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic order at %d", i)
		}
	}
}

func TestIOToposort_ExtraOrderings(t *testing.T) {
	x := NewVariable(scalarT, "x")
	na, a := mkApply("a", x)
	nb, b := mkApply("b", x)
	_, c := mkApply("c", a, b)

	ords := NewOrderings()
	ords.Add(na, nb)

	order, err := IOToposort([]*Variable{x}, []*Variable{c}, ords)
	if err != nil {
		t.Fatalf("IOToposort() error: %v", err)
	}
	pos := map[*Apply]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos[nb] > pos[na] {
		t.Errorf("extra ordering ignored: %v", order)
	}
}

func TestIOToposort_CycleFromOrderings(t *testing.T) {
	x := NewVariable(scalarT, "x")
	na, a := mkApply("a", x)
	nb, b := mkApply("b", a)

	ords := NewOrderings()
	ords.Add(na, nb)

	if _, err := IOToposort([]*Variable{x}, []*Variable{b}, ords); err != ErrCycleDetected {
		t.Errorf("IOToposort() error = %v, want ErrCycleDetected", err)
	}
}

func TestIOToposort_SelfLoopDetected(t *testing.T) {
	x := NewVariable(scalarT, "x")
	n, out := mkApply("loop", x)
	// Rewire the node to consume its own output, as a broken rewrite
	// would.
	n.Inputs[0] = out

	if _, err := IOToposort(nil, []*Variable{out}, nil); err != ErrCycleDetected {
		t.Errorf("IOToposort() error = %v, want ErrCycleDetected", err)
	}
}

func TestOrderings_MergePreservesOrder(t *testing.T) {
	x := NewVariable(scalarT, "x")
	na, _ := mkApply("a", x)
	nb, _ := mkApply("b", x)
	nc, _ := mkApply("c", x)

	o1 := NewOrderings()
	o1.Add(nc, na)
	o2 := NewOrderings()
	o2.Add(nc, nb)

	o1.Merge(o2)
	got := o1.Get(nc)
	if len(got) != 2 || got[0] != na || got[1] != nb {
		t.Errorf("merged prereqs = %v, want [a b]", got)
	}
}
