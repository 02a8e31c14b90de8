// Package storage provides checkpoint storage for serialized graph
// snapshots.
//
// A rewrite driver checkpoints the graph between optimization passes by
// saving the pkg/snapshot document here, tagged with the pass that
// produced it. The store treats payloads as opaque JSON.
//
// InMemoryStore is the built-in implementation: mutex-guarded map,
// uuid-keyed, with listings ordered by recency. Persistent backends
// implement the same Store interface.
package storage
