package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup marks a reference-table miss (team code or distance).
	ErrLookup = errors.New("lookup failed")

	// ErrValidation marks a missing or malformed attempt field.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedRequest marks a scoring request that could not be decoded.
	ErrMalformedRequest = errors.New("malformed request")
)

// LookupError reports a key with no entry in one of the model tables.
type LookupError struct {
	Table string // "team code" or "distance"
	Key   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Table, e.Key)
}

func (e *LookupError) Is(target error) bool { return target == ErrLookup }

// ValidationError reports an attempt field that is absent or unusable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "required"}
}

// ErrorKind classifies a scoring error for metrics labels and HTTP status mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrLookup):
		return "lookup"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrMalformedRequest):
		return "malformed"
	default:
		return "internal"
	}
}
