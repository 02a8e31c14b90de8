package types

import "errors"

// Sentinel errors for type coercion
var (
	// ErrTypeMismatch is returned by FilterVariable when a variable cannot
	// be coerced to the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNullType is returned when a null-typed variable is filtered.
	ErrNullType = errors.New("null type")
)
