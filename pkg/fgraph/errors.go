package fgraph

import (
	"errors"
	"fmt"

	"github.com/yesoreyeram/pinnal/pkg/graph"
)

// Sentinel errors for container operations
var (
	// ErrAlreadyThere is returned by a feature's OnAttach to signal that an
	// equivalent feature is already installed; attachment is then silently
	// aborted.
	ErrAlreadyThere = errors.New("feature already present")

	// ErrInconsistency is the base of every feature veto. Features reject a
	// structural edit by returning an InconsistencyError, which unwraps to
	// this sentinel.
	ErrInconsistency = errors.New("graph state inconsistent")

	// ErrMissingInput is the base of MissingInputError.
	ErrMissingInput = errors.New("missing input")

	// Structural errors
	ErrTypeMismatch   = errors.New("replacement type mismatch")
	ErrNullVariable   = errors.New("graph contains a null-typed variable")
	ErrBadViewMap     = errors.New("bad view map")
	ErrBadDestroyMap  = errors.New("bad destroy map")
	ErrIntegrity      = errors.New("graph integrity violation")
	ErrTestValueShape = errors.New("test value shape mismatch")

	// Lifecycle and construction errors
	ErrDisowned       = errors.New("graph has been disowned")
	ErrNoOutputs      = errors.New("no outputs specified")
	ErrOwnedInput     = errors.New("input is owned by an existing node; discard its owner or clone the graph")
	ErrConstantInput  = errors.New("constants may not be graph inputs")
	ErrDuplicateInput = errors.New("duplicate graph input")

	// Resource limit errors
	ErrTooManyApplyNodes = errors.New("maximum number of apply nodes exceeded")
	ErrTooManyVariables  = errors.New("maximum number of variables exceeded")
)

// InconsistencyError is returned by features that veto a structural edit.
// The container reverts the edit and propagates the error unchanged.
type InconsistencyError struct {
	// Feature names the vetoing feature, when known.
	Feature string
	Msg     string
}

func (e *InconsistencyError) Error() string {
	if e.Feature != "" {
		return fmt.Sprintf("inconsistent graph state (%s): %s", e.Feature, e.Msg)
	}
	return "inconsistent graph state: " + e.Msg
}

func (e *InconsistencyError) Unwrap() error {
	return ErrInconsistency
}

// Inconsistencyf builds an InconsistencyError from a format string.
func Inconsistencyf(format string, args ...any) *InconsistencyError {
	return &InconsistencyError{Msg: fmt.Sprintf(format, args...)}
}

// MissingInputError reports that an import reached a rootless, non-constant
// variable that is not a declared input. The variable's construction trace,
// when recorded, is embedded in the message.
type MissingInputError struct {
	Variable *graph.Variable
	Msg      string
}

func (e *MissingInputError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("undeclared input: %s", e.Variable)
	}
	if e.Variable != nil && e.Variable.Tag.Trace != "" {
		msg += "\nconstructed at: " + e.Variable.Tag.Trace
	}
	return msg
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}
