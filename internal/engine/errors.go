// Error taxonomy for engine operations.  Every failure wraps exactly one of
// the four category sentinels so handlers can map it to a status code with
// errors.Is: not-found -> 404, state conflict -> 409, validation -> 422,
// storage -> 500.  State conflicts and validation failures are recoverable
// by retrying with corrected input; storage failures abort the operation
// with no partial effect.
package engine

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrValidation    = errors.New("validation failed")
	ErrStorage       = errors.New("storage failure")
)

// Condition errors.  Each wraps its category so both the specific condition
// and the category can be tested with errors.Is.
var (
	ErrSeatNotFound      = fmt.Errorf("%w: seat not in layout", ErrNotFound)
	ErrServiceNotFound   = fmt.Errorf("%w: unknown service", ErrNotFound)
	ErrSeatAlreadyTaken  = fmt.Errorf("%w: seat already taken", ErrStateConflict)
	ErrSeatUnavailable   = fmt.Errorf("%w: seat unavailable", ErrStateConflict)
	ErrSeatNotReserved   = fmt.Errorf("%w: seat not reserved", ErrStateConflict)
	ErrTargetUnavailable = fmt.Errorf("%w: target seat not available", ErrStateConflict)
	ErrSameSeat          = fmt.Errorf("%w: source and target are the same seat", ErrStateConflict)
)

// validationError wraps a field-specific identity or pricing failure under
// the validation category without losing the original error for errors.As.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// storageError wraps a store or audit failure under the storage category.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
