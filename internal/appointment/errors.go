package appointment

import "errors"

var (
	ErrValidation       = errors.New("invalid appointment")
	ErrNotFound         = errors.New("appointment not found")
	ErrStoreUnavailable = errors.New("appointment store unavailable")
)

// ValidationError names the offending field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
