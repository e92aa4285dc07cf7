package network

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound           = errors.New("node not found")
	ErrEdgeNotFound           = errors.New("edge not found")
	ErrElementNotFound        = errors.New("element not found")
	ErrDuplicateNodeNumber    = errors.New("duplicate node number")
	ErrInvalidParams          = errors.New("invalid computational parameters")
	ErrUnknownElementType     = errors.New("unknown element type")
	ErrRequestElementNotFound = errors.New("output request references unknown element")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op     string // Operation that failed (e.g., "AddEdge", "DeleteElement")
	Entity string // Entity type ("node", "edge", "request")
	ID     uint64 // Entity ID (if applicable)
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func nodeErr(op string, id uint64, cause error) error {
	return &StoreError{Op: op, Entity: "node", ID: id, Cause: cause}
}

func edgeErr(op string, id uint64, cause error) error {
	return &StoreError{Op: op, Entity: "edge", ID: id, Cause: cause}
}
