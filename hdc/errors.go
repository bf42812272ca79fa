package hdc

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when BindAll or Bundle receives no vectors.
	ErrEmptyInput = errors.New("at least one vector is required")

	// ErrInvalidK is returned when TopK is asked for fewer than one result.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidGeometry is returned for a non-positive geometry.
	ErrInvalidGeometry = errors.New("geometry must be positive")

	// ErrUnknownStrategy is returned for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// ErrGeometryMismatch indicates that an operand does not share the Space's
// geometry. Uninitialized vectors surface here with Actual == 0.
type ErrGeometryMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrGeometryMismatch) Error() string {
	return fmt.Sprintf("geometry mismatch: expected %d, got %d", e.Expected, e.Actual)
}
