package storage

import "errors"

// Sentinel errors for checkpoint storage
var (
	ErrNotFound     = errors.New("checkpoint not found")
	ErrEmptyName    = errors.New("checkpoint name is required")
	ErrEmptyPayload = errors.New("checkpoint payload is required")
)
