package config

import "errors"

// Sentinel errors for configuration validation
var (
	ErrInvalidComputeTestValue = errors.New("invalid compute test value mode: must be off, raise or warn")
	ErrInvalidMaxApplyNodes    = errors.New("invalid max apply nodes: must be non-negative")
	ErrInvalidMaxVariables     = errors.New("invalid max variables: must be non-negative")
)
