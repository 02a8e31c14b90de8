// Package graph provides the variable/apply model and the pure traversal
// algorithms of the dataflow graph.
//
// # Overview
//
// A dataflow graph is a bipartite DAG: Variable nodes carry typed values,
// Apply nodes are operation instances connecting ordered input variables to
// ordered output variables. This package defines the model and the
// traversals the container in pkg/fgraph is built on; it owns no state and
// performs no mutation beyond wiring output ownership at construction.
//
// # Model
//
//   - Variable: a typed value node. Either a graph input (no owner), a
//     constant (NewConstant), or the output of an Apply node.
//   - Apply: an Op applied to inputs, producing outputs. NewApply adopts
//     its output variables by setting their Owner and Index.
//   - Type and Op are consumed as opaque interfaces; pkg/types carries the
//     built-in type system.
//
// # Traversals
//
//   - Inputs: discover the source roots of a set of outputs.
//   - VarsBetween / ApplysBetween: the reachable closure between an input
//     frontier and a set of outputs, in deterministic discovery order.
//   - IOToposort: Kahn's algorithm over the bipartite DAG, honoring extra
//     Orderings constraints supplied by container features.
//   - CloneGetEquiv: deep copy of a reachable subgraph with an old-to-new
//     memo.
//
// # Determinism
//
// Every traversal iterates insertion-ordered sets (pkg/orderedset), never
// raw Go maps, so two runs over identical structure produce identical
// sequences. Deep graphs are walked with explicit stacks; no traversal
// recurses natively.
//
// # Thread Safety
//
// The traversals are read-only and safe for concurrent use over a graph
// that is not being mutated. Mutation discipline is owned by pkg/fgraph.
package graph
