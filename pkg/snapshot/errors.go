package snapshot

import "errors"

// Sentinel errors for snapshot operations
var (
	// ErrSchemaInvalid is returned when a document fails schema validation.
	ErrSchemaInvalid = errors.New("snapshot schema validation failed")

	// ErrVersionMismatch is returned for documents of another format
	// version.
	ErrVersionMismatch = errors.New("snapshot version mismatch")

	// ErrCorrupt is returned when a structurally valid document describes
	// an impossible graph.
	ErrCorrupt = errors.New("corrupt snapshot")

	// Codec errors
	ErrUnknownType = errors.New("codec cannot handle type")
	ErrUnknownOp   = errors.New("codec cannot handle op")
)
