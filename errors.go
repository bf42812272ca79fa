package symgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/symgo/archive"
	"github.com/hupe1980/symgo/hdc"
	"github.com/hupe1980/symgo/kb"
	"github.com/hupe1980/symgo/reason"
)

var (
	// ErrNotFound is returned when a concept, relation, fact, or archive
	// snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedTriple is returned when a fact has an empty subject,
	// relation, or object.
	ErrMalformedTriple = errors.New("malformed triple")

	// ErrEmptyBundle is returned when a vector operation receives no
	// inputs.
	ErrEmptyBundle = errors.New("at least one vector is required")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrSnapshotInvalid is returned when snapshot bytes fail validation:
	// bad magic, unsupported version, unknown codec or compression, or a
	// checksum mismatch. The engine state is untouched.
	ErrSnapshotInvalid = errors.New("invalid snapshot")
)

// ErrGeometryMismatch indicates a vector whose bit width does not match
// the engine's space.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrGeometryMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrGeometryMismatch) Error() string {
	return fmt.Sprintf("geometry mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrGeometryMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, reason.ErrUnknownRelation) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	var uc *reason.ErrUnknownConcept
	if errors.As(err, &uc) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Argument normalization.
	if errors.Is(err, kb.ErrMalformedTriple) {
		return fmt.Errorf("%w: %w", ErrMalformedTriple, err)
	}
	if errors.Is(err, hdc.ErrEmptyInput) {
		return fmt.Errorf("%w: %w", ErrEmptyBundle, err)
	}
	if errors.Is(err, hdc.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	var gm *hdc.ErrGeometryMismatch
	if errors.As(err, &gm) {
		return &ErrGeometryMismatch{Expected: gm.Expected, Actual: gm.Actual, cause: err}
	}

	return err
}
