package kb

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTriple occurs when a fact is added with an empty
	// subject, relation, or object.
	ErrMalformedTriple = errors.New("malformed triple")

	// ErrEmptyLabel occurs when a concept is created with an empty label.
	ErrEmptyLabel = errors.New("empty concept label")

	// ErrInvalidExistence occurs when an existence level outside the
	// 5-point scale reaches the store boundary.
	ErrInvalidExistence = errors.New("invalid existence level")
)

func wrapTriple(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedTriple, field)
}

// ErrInvalidRecord occurs when a snapshot record fails validation. The
// restore rejects the whole snapshot before mutating anything.
type ErrInvalidRecord struct {
	// Index is the position of the offending record.
	Index int

	// Reason describes the missing or invalid field.
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidRecord) Error() string {
	return fmt.Sprintf("snapshot record %d: %s", e.Index, e.Reason)
}
