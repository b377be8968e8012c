package service

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound marks an unknown user, meter or record.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a caller acting on data it does not own.
	ErrUnauthorized = errors.New("not authorized")
	// ErrInvalidInput marks a request rejected before any work is done.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// authorize rejects a caller that is not the owner of the data.
func authorize(callerID, ownerID int64) error {
	if callerID <= 0 || callerID != ownerID {
		return ErrUnauthorized
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
