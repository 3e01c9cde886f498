package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the catalog, the AI endpoints and the HTTP layer.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidID         = errors.New("invalid product id")
	ErrNotFound          = errors.New("product not found")
	ErrUpstream          = errors.New("upstream dependency failed")
	ErrMalformedResponse = errors.New("malformed model response")
)

// ValidationError describes a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Upstream wraps a dependency failure so callers can match ErrUpstream.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
