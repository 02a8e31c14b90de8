// Package types provides the built-in type system for dataflow variables.
//
// The container in pkg/fgraph treats variable types as opaque handles with
// structural equality and a coercion hook. This package supplies the
// concrete types the rest of the module and its tests use:
//
//   - TensorType: an element dtype plus a static shape. Scalars are
//     zero-dimensional tensors.
//   - NullType: the sentinel type of a poisoned value; importing such a
//     variable fails and the recorded reason is echoed.
//
// # Coercion
//
// FilterVariable passes equal-typed variables through untouched. With
// allowConvert set it additionally rebuilds constants whose dtype widens
// cleanly into the target (int64 to float, float32 to float64). Everything
// else fails with ErrTypeMismatch, which replacement surfaces before any
// rewiring happens.
package types
