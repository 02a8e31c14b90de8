// Package snapshot serializes graph containers to a versioned JSON format
// and restores them.
//
// A snapshot is a pair of handle-indexed tables, variables and nodes, plus
// the input and output slot lists; forward edges are stored as handles and
// the container rebuilds its reverse edges on restore. The opaque Type and
// Op handles pass through a Codec: BasicCodec covers the built-in type
// system and an op catalog registered by name, so restored ops keep the
// identity equality the container relies on.
//
// Features participate through fgraph.SnapshotHooks: sections named by a
// feature's SnapshotOmit are left out of the saved form, and OnRestore
// runs on the rebuilt graph. Callback timing state is never serialized.
//
// Restore validates the raw document against a JSON schema before
// touching it and audits the rebuilt graph's integrity before returning
// it, so a corrupt document fails loudly rather than producing a subtly
// broken container.
package snapshot
