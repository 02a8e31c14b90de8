package fgraph

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yesoreyeram/pinnal/pkg/config"
	"github.com/yesoreyeram/pinnal/pkg/graph"
	"github.com/yesoreyeram/pinnal/pkg/logging"
	"github.com/yesoreyeram/pinnal/pkg/orderedset"
	"github.com/yesoreyeram/pinnal/pkg/testvalue"
)

// Client is a reverse edge from a variable to one of its use sites: input
// slot Index of Node, or output slot Index of the graph when Node is nil.
type Client struct {
	Node  *graph.Apply
	Index int
}

// OutputClient addresses output slot i of the graph.
func OutputClient(i int) Client {
	return Client{Index: i}
}

// IsOutput reports whether the client is a graph output slot.
func (c Client) IsOutput() bool {
	return c.Node == nil
}

func (c Client) String() string {
	if c.IsOutput() {
		return fmt.Sprintf("output[%d]", c.Index)
	}
	return fmt.Sprintf("%s[%d]", c.Node, c.Index)
}

// Graph is a mutable container for the subgraph between a set of input
// variables and a set of output variables. It maintains reverse client
// edges for every tracked variable and keeps the reachable closure of
// nodes and variables consistent across imports, input changes,
// replacements and prunes. Attached features observe every structural
// change and may veto one.
//
// A Graph is single-owner: no operation may run concurrently with another.
type Graph struct {
	Inputs  []*graph.Variable
	Outputs []*graph.Variable

	// UpdateMapping optionally associates input variables with the output
	// variables holding their next value. The container carries it for the
	// compiler driver and never interprets it.
	UpdateMapping map[*graph.Variable]*graph.Variable

	// Profile is an opaque timing bag owned by the caller.
	Profile any

	id         string
	variables  *orderedset.Set[*graph.Variable]
	applyNodes *orderedset.Set[*graph.Apply]
	clients    map[*graph.Variable][]Client

	features      []Feature
	callbackTotal time.Duration
	callbackTimes map[Feature]time.Duration

	cfg *config.Config
	log *logging.Logger
	tv  *testvalue.Engine

	disowned bool
}

// Option configures graph construction.
type Option func(*options)

type options struct {
	features      []Feature
	clone         bool
	memo          *graph.Equiv
	copyInputs    bool
	copyOrphans   bool
	updateMapping map[*graph.Variable]*graph.Variable
	cfg           *config.Config
	log           *logging.Logger
}

// WithFeatures attaches features in order, before the built-in
// ReplaceValidate.
func WithFeatures(features ...Feature) Option {
	return func(o *options) { o.features = append(o.features, features...) }
}

// WithClone controls whether construction deep-copies the reachable
// subgraph first. The default is true; pass false to adopt the caller's
// variables and nodes in place.
func WithClone(clone bool) Option {
	return func(o *options) { o.clone = clone }
}

// WithCloneMemo supplies the equivalence memo extended by the construction
// clone, letting the caller relocate external references afterwards.
// Entries already present are honored.
func WithCloneMemo(memo *graph.Equiv) Option {
	return func(o *options) { o.memo = memo }
}

// WithCopyInputs controls whether the construction clone copies input
// variables (default) or shares them.
func WithCopyInputs(copy bool) Option {
	return func(o *options) { o.copyInputs = copy }
}

// WithCopyOrphans controls whether the construction clone copies constants
// and orphans (default) or shares them.
func WithCopyOrphans(copy bool) Option {
	return func(o *options) { o.copyOrphans = copy }
}

// WithUpdateMapping records the input-to-output update association.
func WithUpdateMapping(m map[*graph.Variable]*graph.Variable) Option {
	return func(o *options) { o.updateMapping = m }
}

// WithConfig injects the container configuration. Default: config.Default.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger injects the logger. Default: logging defaults (warn level).
func WithLogger(log *logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// New creates a Graph over the subgraph between inputs and outputs. A nil
// inputs slice means the source roots of outputs, discovered by upward
// traversal with constants excluded. When cloning is enabled (the
// default) the reachable subgraph is deep-copied first and the memo of
// WithCloneMemo is filled in.
//
// Every input must be ownerless, non-constant and unique. Outputs are
// imported with reason "init" and registered as output clients.
func New(inputs, outputs []*graph.Variable, opts ...Option) (*Graph, error) {
	if outputs == nil {
		return nil, ErrNoOutputs
	}

	o := &options{clone: true, copyInputs: true, copyOrphans: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.log == nil {
		o.log = logging.New(logging.DefaultConfig())
	}

	if inputs == nil {
		inputs = graph.Inputs(outputs)
	}

	if o.clone {
		memo := graph.CloneGetEquiv(inputs, outputs, o.copyInputs, o.copyOrphans, o.memo)
		mappedIn := make([]*graph.Variable, len(inputs))
		for i, v := range inputs {
			mappedIn[i] = memo.Var(v)
		}
		mappedOut := make([]*graph.Variable, len(outputs))
		for i, v := range outputs {
			mappedOut[i] = memo.Var(v)
		}
		inputs, outputs = mappedIn, mappedOut
	}

	g := &Graph{
		Outputs:       append([]*graph.Variable(nil), outputs...),
		UpdateMapping: o.updateMapping,
		id:            uuid.NewString(),
		variables:     orderedset.New[*graph.Variable](),
		applyNodes:    orderedset.New[*graph.Apply](),
		clients:       make(map[*graph.Variable][]Client),
		callbackTimes: make(map[Feature]time.Duration),
		cfg:           o.cfg,
		tv:            testvalue.NewEngine(),
	}
	g.log = o.log.WithGraphID(g.id)

	for _, f := range o.features {
		if err := g.AttachFeature(f); err != nil {
			return nil, err
		}
	}
	if err := g.AttachFeature(NewReplaceValidate()); err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if in.Owner != nil {
			return nil, fmt.Errorf("%w: %s", ErrOwnedInput, in)
		}
		if in.IsConstant() {
			return nil, fmt.Errorf("%w: %s", ErrConstantInput, in)
		}
		if g.variables.Contains(in) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateInput, in)
		}
		g.addInput(in)
	}

	for _, out := range outputs {
		if err := g.ImportVar(out, "init", false); err != nil {
			return nil, err
		}
	}
	for i, out := range g.Outputs {
		g.addClient(out, OutputClient(i))
	}

	return g, nil
}

// ID returns the container's unique identifier, used in logs and
// telemetry attributes.
func (g *Graph) ID() string {
	return g.id
}

// Config returns the injected configuration.
func (g *Graph) Config() *config.Config {
	return g.cfg
}

// Variables returns the tracked variables in insertion order.
func (g *Graph) Variables() []*graph.Variable {
	return g.variables.Values()
}

// ApplyNodes returns the member nodes in insertion order.
func (g *Graph) ApplyNodes() []*graph.Apply {
	return g.applyNodes.Values()
}

// HasVariable reports whether v is tracked by the container.
func (g *Graph) HasVariable(v *graph.Variable) bool {
	return g.variables.Contains(v)
}

// HasApply reports whether n is a member node.
func (g *Graph) HasApply(n *graph.Apply) bool {
	return g.applyNodes.Contains(n)
}

// Clients returns a copy of the reverse edges of v: every (node, index)
// pair such that node.Inputs[index] is v, plus an output client per output
// slot holding v.
func (g *Graph) Clients(v *graph.Variable) []Client {
	return append([]Client(nil), g.clients[v]...)
}

// addInput registers an input variable without validation.
func (g *Graph) addInput(v *graph.Variable) {
	g.Inputs = append(g.Inputs, v)
	g.setupVar(v)
	g.variables.Add(v)
}

// AddInput adds a new variable as a graph input. Adding a tracked input
// again is a no-op; owned variables and constants are rejected.
func (g *Graph) AddInput(v *graph.Variable) error {
	if g.disowned {
		return ErrDisowned
	}
	if v.Owner != nil {
		return fmt.Errorf("%w: %s", ErrOwnedInput, v)
	}
	if v.IsConstant() {
		return fmt.Errorf("%w: %s", ErrConstantInput, v)
	}
	for _, in := range g.Inputs {
		if in == v {
			return nil
		}
	}
	g.addInput(v)
	return nil
}

// isInput reports whether v is a declared graph input.
func (g *Graph) isInput(v *graph.Variable) bool {
	for _, in := range g.Inputs {
		if in == v {
			return true
		}
	}
	return false
}

// setupVar ensures the client list of v exists.
func (g *Graph) setupVar(v *graph.Variable) {
	if _, ok := g.clients[v]; !ok {
		g.clients[v] = nil
	}
}

// setupNode audits the aliasing maps of a node's op before membership.
// Every mapped index must address an existing slot and every entry must
// name at least one input.
func (g *Graph) setupNode(n *graph.Apply) error {
	if err := auditAliasMap(n, n.Op.ViewMap()); err != nil {
		return fmt.Errorf("%w: op %s: %v", ErrBadViewMap, n.Op.Name(), err)
	}
	if err := auditAliasMap(n, n.Op.DestroyMap()); err != nil {
		return fmt.Errorf("%w: op %s: %v", ErrBadDestroyMap, n.Op.Name(), err)
	}
	return nil
}

func auditAliasMap(n *graph.Apply, m map[int][]int) error {
	for outIdx, inIdxs := range m {
		if outIdx < 0 || outIdx >= len(n.Outputs) {
			return fmt.Errorf("output index %d out of range", outIdx)
		}
		if len(inIdxs) == 0 {
			return fmt.Errorf("entry for output %d names no inputs", outIdx)
		}
		for _, inIdx := range inIdxs {
			if inIdx < 0 || inIdx >= len(n.Inputs) {
				return fmt.Errorf("input index %d out of range", inIdx)
			}
		}
	}
	return nil
}

// addClient appends one reverse edge to the client list of v.
func (g *Graph) addClient(v *graph.Variable, c Client) {
	g.clients[v] = append(g.clients[v], c)
}

// ImportVar imports a variable, pulling in its owner's subgraph when
// needed. A rootless, non-constant variable that is not a declared input
// is promoted to one when importMissing is set and fails with
// MissingInputError otherwise; a null-typed variable always fails.
func (g *Graph) ImportVar(v *graph.Variable, reason string, importMissing bool) error {
	if g.disowned {
		return ErrDisowned
	}
	if v.Owner != nil && !g.applyNodes.Contains(v.Owner) {
		if err := g.ImportNode(v.Owner, true, reason, importMissing); err != nil {
			return err
		}
	} else if v.Owner == nil && !v.IsConstant() && !g.isInput(v) {
		if nr, ok := v.Type.(graph.NullReporter); ok {
			return fmt.Errorf("%w: %s", ErrNullVariable, nr.WhyNull())
		}
		if importMissing {
			if err := g.AddInput(v); err != nil {
				return err
			}
		} else {
			return &MissingInputError{Variable: v}
		}
	}
	if g.cfg.MaxVariables > 0 && !g.variables.Contains(v) && g.variables.Len() >= g.cfg.MaxVariables {
		return ErrTooManyVariables
	}
	g.setupVar(v)
	g.variables.Add(v)
	return nil
}

// ImportNode imports every node between the tracked frontier and n, in
// topological order. With check set, each new node's rootless non-constant
// inputs must already be tracked, or they are promoted (importMissing) or
// the import fails with MissingInputError before any mutation.
func (g *Graph) ImportNode(n *graph.Apply, check bool, reason string, importMissing bool) error {
	if g.disowned {
		return ErrDisowned
	}

	// All tracked variables act as the stop frontier, so only genuinely
	// new nodes come back. The data DAG cannot cycle here.
	newNodes, err := graph.IOToposort(g.variables.Values(), n.Outputs, nil)
	if err != nil {
		return err
	}

	if check {
		for _, node := range newNodes {
			for idx, in := range node.Inputs {
				if in.Owner != nil || in.IsConstant() || g.isInput(in) {
					continue
				}
				if nr, ok := in.Type.(graph.NullReporter); ok {
					return fmt.Errorf("%w: %s", ErrNullVariable, nr.WhyNull())
				}
				if importMissing {
					if err := g.AddInput(in); err != nil {
						return err
					}
					continue
				}
				return &MissingInputError{
					Variable: in,
					Msg: fmt.Sprintf(
						"input %d of node %s is not part of the graph and has no value",
						idx, node),
				}
			}
		}
	}

	if g.cfg.MaxApplyNodes > 0 && g.applyNodes.Len()+len(newNodes) > g.cfg.MaxApplyNodes {
		return ErrTooManyApplyNodes
	}
	for _, node := range newNodes {
		if err := g.setupNode(node); err != nil {
			return err
		}
	}

	for _, node := range newNodes {
		g.applyNodes.Add(node)
		node.Tag.ImportedBy = append(node.Tag.ImportedBy, reason)
		for _, out := range node.Outputs {
			g.setupVar(out)
			g.variables.Add(out)
		}
		for i, in := range node.Inputs {
			if !g.variables.Contains(in) {
				g.setupVar(in)
				g.variables.Add(in)
			}
			g.addClient(in, Client{Node: node, Index: i})
		}
		g.notifyImport(node, reason)
	}
	return nil
}

// ChangeInput rewires one use site: the input slot of c becomes newVar.
// The old and new variables must have structurally equal types; the check
// runs before any mutation. Rewiring imports newVar's subgraph, updates
// the client lists, prunes whatever the old variable no longer supports,
// and notifies every feature. A feature veto (InconsistencyError) makes
// the container replay the edit's journal in reverse before returning the
// error, so a vetoed change leaves no trace.
func (g *Graph) ChangeInput(c Client, newVar *graph.Variable, reason string, importMissing bool) error {
	if g.disowned {
		return ErrDisowned
	}

	var old *graph.Variable
	if c.IsOutput() {
		if c.Index < 0 || c.Index >= len(g.Outputs) {
			return fmt.Errorf("%w: no output slot %d", ErrIntegrity, c.Index)
		}
		old = g.Outputs[c.Index]
	} else {
		if c.Index < 0 || c.Index >= len(c.Node.Inputs) {
			return fmt.Errorf("%w: no input slot %d on %s", ErrIntegrity, c.Index, c.Node)
		}
		old = c.Node.Inputs[c.Index]
	}
	if !old.Type.Equal(newVar.Type) {
		return fmt.Errorf("%w: cannot rewire %s from %s to %s", ErrTypeMismatch, c, old, newVar)
	}

	g.writeSlot(c, newVar)
	if old == newVar {
		return nil
	}

	j := journal{slot: c, old: old, new: newVar}
	nInputs := len(g.Inputs)

	if err := g.ImportVar(newVar, reason, importMissing); err != nil {
		// Import checks run before its mutations, so restoring the slot is
		// a full revert.
		g.writeSlot(c, old)
		return err
	}
	g.addClient(newVar, c)
	g.RemoveClient(old, c, reason)

	if err := g.notifyChangeInput(c, old, newVar, reason); err != nil {
		g.revert(j, reason)
		// Inputs promoted while importing newVar were pruned by the revert;
		// drop them from the declaration list too.
		g.Inputs = g.Inputs[:nInputs]
		return err
	}
	return nil
}

// writeSlot stores v into the slot addressed by c.
func (g *Graph) writeSlot(c Client, v *graph.Variable) {
	if c.IsOutput() {
		g.Outputs[c.Index] = v
	} else {
		c.Node.Inputs[c.Index] = v
	}
}

// RemoveClient removes one reverse edge and garbage-collects whatever
// becomes unreachable. A variable left clientless is dropped when
// ownerless; when every output of its owner is clientless the owner is
// pruned, OnPrune fires, and the owner's own input edges are queued for
// removal. The walk uses an explicit stack. An edge already removed by a
// cascaded prune is skipped silently.
func (g *Graph) RemoveClient(v *graph.Variable, c Client, reason string) {
	type removal struct {
		v *graph.Variable
		c Client
	}
	stack := []removal{{v, c}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lst, tracked := g.clients[r.v]
		if !tracked {
			continue
		}
		idx := -1
		for i, have := range lst {
			if have == r.c {
				idx = i
				break
			}
		}
		if idx < 0 {
			// Already removed by a cascaded prune.
			continue
		}
		lst = append(lst[:idx], lst[idx+1:]...)
		g.clients[r.v] = lst

		if len(lst) > 0 {
			continue
		}

		if r.v.Owner == nil {
			// An input or constant with no remaining use.
			g.variables.Remove(r.v)
			delete(g.clients, r.v)
			continue
		}

		owner := r.v.Owner
		live := false
		for _, out := range owner.Outputs {
			if len(g.clients[out]) > 0 {
				live = true
				break
			}
		}
		if live {
			continue
		}

		owner.Tag.RemovedBy = append(owner.Tag.RemovedBy, reason)
		g.applyNodes.Remove(owner)
		g.variables.DifferenceUpdate(owner.Outputs)
		for _, out := range owner.Outputs {
			delete(g.clients, out)
		}
		g.notifyPrune(owner, reason)
		for i, in := range owner.Inputs {
			stack = append(stack, removal{in, Client{Node: owner, Index: i}})
		}
	}
}

// ReplaceOptions tunes a single replacement.
type ReplaceOptions struct {
	// Verbose overrides Config.OptimizerVerbose when non-nil.
	Verbose *bool
	// ImportMissing promotes undeclared inputs discovered while importing
	// the replacement instead of failing.
	ImportMissing bool
}

// Replace rewires every use of v to newVar. See ReplaceWithOptions.
func (g *Graph) Replace(v, newVar *graph.Variable, reason string) error {
	return g.ReplaceWithOptions(v, newVar, reason, ReplaceOptions{})
}

// ReplaceWithOptions rewires every use of v to newVar, the main interface
// of the rewrite surface. newVar is first coerced through v's type. A
// replacement of an untracked variable is a warned no-op, which
// multi-output rewrites rely on. When test values are enabled and both
// variables carry one, diverging shapes fail before any rewiring.
func (g *Graph) ReplaceWithOptions(v, newVar *graph.Variable, reason string, opts ReplaceOptions) error {
	if g.disowned {
		return ErrDisowned
	}

	verbose := g.cfg.OptimizerVerbose
	if opts.Verbose != nil {
		verbose = *opts.Verbose
	}
	if verbose {
		g.log.WithReason(reason).Infof("replace %s -> %s", v, newVar)
	}

	coerced, err := v.Type.FilterVariable(newVar, true)
	if err != nil {
		return err
	}

	if !g.variables.Contains(v) {
		g.log.WithReason(reason).Warnf("variable %s cannot be replaced; it is not tracked by this graph", v)
		return nil
	}

	if g.cfg.TestValuesEnabled() {
		if err := g.checkTestValues(v, coerced); err != nil {
			return err
		}
	}

	for _, c := range g.Clients(v) {
		var slot *graph.Variable
		if c.IsOutput() {
			slot = g.Outputs[c.Index]
		} else {
			slot = c.Node.Inputs[c.Index]
		}
		if slot != v {
			return fmt.Errorf("%w: client %s does not hold %s", ErrIntegrity, c, v)
		}
		if err := g.ChangeInput(c, coerced, reason, opts.ImportMissing); err != nil {
			return err
		}
	}
	return nil
}

// checkTestValues compares the test-value shapes of both sides of a
// replacement. Variables without a test value are skipped.
func (g *Graph) checkTestValues(v, newVar *graph.Variable) error {
	tval, err := g.tv.Get(v)
	if err != nil {
		if errors.Is(err, testvalue.ErrNoTestValue) {
			return nil
		}
		return err
	}
	newTval, err := g.tv.Get(newVar)
	if err != nil {
		if errors.Is(err, testvalue.ErrNoTestValue) {
			return nil
		}
		return err
	}
	oldShape := testvalue.ShapeOf(tval)
	newShape := testvalue.ShapeOf(newTval)
	if !testvalue.SameShape(oldShape, newShape) {
		return fmt.Errorf("%w: original %v, replacement %v", ErrTestValueShape, oldShape, newShape)
	}
	return nil
}

// ReplacePair is one (variable, replacement) association for ReplaceAll.
type ReplacePair struct {
	Var *graph.Variable
	New *graph.Variable
}

// ReplaceAll applies the replacements in list order, stopping at the
// first failure.
func (g *Graph) ReplaceAll(pairs []ReplacePair, reason string) error {
	for _, p := range pairs {
		if err := g.Replace(p.Var, p.New, reason); err != nil {
			return err
		}
	}
	return nil
}

// Toposort returns an ordering of the member nodes placing every producer
// before its consumers and honoring the constraints contributed by
// Orderer features. Two calls over identical structure and features
// return identical sequences.
func (g *Graph) Toposort() ([]*graph.Apply, error) {
	if g.applyNodes.Len() < 2 {
		// 0- or 1-node graphs need no sorting; rewrite drivers hit this
		// case constantly.
		return g.applyNodes.Values(), nil
	}
	ords := g.MergedOrderings()
	return graph.IOToposort(g.Inputs, g.Outputs, ords)
}

// Disown detaches every feature and clears the container's indices. The
// graph is unusable afterwards; every mutating operation fails with
// ErrDisowned.
func (g *Graph) Disown() {
	for _, f := range g.Features() {
		g.RemoveFeature(f)
	}
	g.clients = make(map[*graph.Variable][]Client)
	g.variables.Clear()
	g.applyNodes.Clear()
	g.Inputs = nil
	g.Outputs = nil
	g.Profile = nil
	g.UpdateMapping = nil
	g.disowned = true
}

// String renders the container's outputs for debug output.
func (g *Graph) String() string {
	names := make([]string, len(g.Outputs))
	for i, out := range g.Outputs {
		names[i] = renderVar(out)
	}
	return "FunctionGraph(" + strings.Join(names, ", ") + ")"
}

// renderVar renders a variable as op(args) when owned, else its name.
func renderVar(v *graph.Variable) string {
	if v.Owner == nil {
		return v.String()
	}
	args := make([]string, len(v.Owner.Inputs))
	for i, in := range v.Owner.Inputs {
		args[i] = renderVar(in)
	}
	return fmt.Sprintf("%s(%s)", v.Owner.Op.Name(), strings.Join(args, ", "))
}
