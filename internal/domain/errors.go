package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every business error in the service wraps exactly one of them,
// so callers can branch with errors.Is on the kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("access denied")
	ErrStorage         = errors.New("storage error")
)

var (
	ErrInvalidInterval   = fmt.Errorf("%w: interval start must be before end", ErrInvalidArgument)
	ErrInvalidSchedule   = fmt.Errorf("%w: invalid work schedule", ErrInvalidArgument)
	ErrInvalidStatus     = fmt.Errorf("%w: invalid reservation status", ErrInvalidArgument)
	ErrInvalidTransition = fmt.Errorf("%w: reservation status transition is not allowed", ErrConflict)
	ErrNotActive         = fmt.Errorf("%w: reservation is not active", ErrConflict)
	ErrOverrideConflict  = fmt.Errorf("%w: override overlaps an override of opposite availability", ErrConflict)
)

// KindOf returns the error kind wrapped by err, or nil for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrForbidden, ErrStorage} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
