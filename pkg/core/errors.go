// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined errors for common failure scenarios.
var (
	// ErrMissingData indicates that a required input table is absent or empty.
	ErrMissingData = errors.New("missing data")

	// ErrNotFound indicates that a name-based lookup matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous indicates that a name-based lookup matched several records.
	ErrAmbiguous = errors.New("ambiguous lookup")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptPersisted indicates that persisted data exists but cannot be parsed.
	ErrCorruptPersisted = errors.New("corrupt persisted data")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// EngineError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
//
// Example:
//
//	err := &EngineError{
//	    Op:  "RecordOutcome",
//	    Err: ErrStorageOperation,
//	}
//	// Error() returns: "shelfsense: RecordOutcome: storage operation failed"
type EngineError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "shelfsense: <Op>: <Err>"
func (e *EngineError) Error() string {
	return fmt.Sprintf("shelfsense: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with EngineError.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewEngineError("RecordOutcome", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "PlanAssignments", "ExplainAssignment")
//   - err: The underlying error to wrap
//
// Returns an EngineError, or nil if err is nil.
func NewEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{
		Op:  op,
		Err: err,
	}
}

// AmbiguousError is a disambiguation request: a lookup matched several
// records and the caller has to pick one. It is never resolved automatically.
//
// errors.Is(err, ErrAmbiguous) reports true for it.
type AmbiguousError struct {
	// Kind is what was looked up ("product" or "zone").
	Kind string

	// Query is the text the caller searched for.
	Query string

	// Candidates lists every matching name.
	Candidates []string
}

// Error lists the candidates.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple %ss match %q: %s", e.Kind, e.Query, strings.Join(e.Candidates, ", "))
}

// Is makes errors.Is(err, ErrAmbiguous) true.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// notFound builds a not-found error for one lookup.
func notFound(kind, query string) error {
	return fmt.Errorf("%w: no %s matches %q", ErrNotFound, kind, query)
}
