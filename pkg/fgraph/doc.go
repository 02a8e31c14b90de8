// Package fgraph provides the mutable container for a dataflow graph with
// distinct inputs and outputs, the rewrite surface a symbolic-computation
// compiler's optimization passes manipulate.
//
// # Overview
//
// A Graph owns the subgraph between its input and output variables. On top
// of the forward edges of the model (pkg/graph) it maintains reverse
// client edges, so the structure is traversable in both directions, and it
// keeps the cached closure of member nodes and variables exact across
// every edit. The structural primitives are:
//
//   - ImportVar / ImportNode: pull a variable's producing subgraph into
//     the container, in topological order, promoting or rejecting
//     undeclared inputs.
//   - ChangeInput: rewire one use site, journaled so a feature veto
//     leaves no trace.
//   - Replace / ReplaceAll: rewire every use of a variable; the basis of
//     optimization rewrites.
//   - RemoveClient: drop one reverse edge and garbage-collect whatever
//     becomes unreachable, with OnPrune fired once per removed node.
//
// # Features
//
// A Feature is a listener attached to the container. Callbacks are opt-in
// capability interfaces (Importer, Pruner, InputChanger, Orderer, ...);
// OnChangeInput may veto an edit by returning an InconsistencyError, and
// Orderer features contribute extra constraints to Toposort. Every
// container carries the built-in ReplaceValidate guard, which keeps the
// graph acyclic and the destroy maps sound. Callback time is accumulated
// per feature and exposed through CallbackTimes.
//
// # Consistency
//
// Type and test-value checks run before any mutation, so their failures
// leave the graph untouched. Listener vetoes arrive after mutation and
// are undone by replaying the edit's journal in reverse. CheckIntegrity
// audits every invariant exhaustively for debugging; the edit paths
// maintain the invariants incrementally.
//
// # Determinism
//
// Member sets and client lists are insertion-ordered, and Toposort merges
// feature orderings in attachment order, so identical graphs with
// identical features sort identically on every run.
//
// # Concurrency
//
// A Graph is single-owner and entirely synchronous: callbacks run inline
// in the mutating call's stack frame, and no operation blocks. Callers
// that share variables or constants across graphs own the discipline of
// mutating each graph from one goroutine at a time.
package fgraph
