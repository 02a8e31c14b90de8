package testvalue

import "errors"

// Sentinel errors for test value computation
var (
	// ErrNoTestValue is returned when a variable has no stored value, no
	// constant literal, and no op able to compute one.
	ErrNoTestValue = errors.New("no test value")

	// ErrBadExpr is returned when an op's test expression fails to compile.
	ErrBadExpr = errors.New("test expression compilation failed")

	// ErrEvalFailed is returned when a compiled test expression fails at
	// runtime.
	ErrEvalFailed = errors.New("test expression execution failed")
)
