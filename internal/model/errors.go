package model

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks at the boundary.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrIntegrity  = errors.New("integrity violation")
)

// ValidationError reports caller-supplied data that would break a model invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a reference to an id that does not exist in the namespace.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes every NotFoundError match ErrNotFound.
func (e NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IntegrityError reports an invariant that a previous mutation should have kept
// but which was found broken.
type IntegrityError struct {
	Detail string
}

func (e IntegrityError) Error() string {
	return "integrity violation: " + e.Detail
}

// Is makes every IntegrityError match ErrIntegrity.
func (e IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

// NotFound returns a NotFoundError for an entity of the given kind.
func NotFound(kind, id string) error {
	return NotFoundError{Kind: kind, ID: id}
}

// Integrity returns an IntegrityError with a formatted detail.
func Integrity(format string, args ...any) error {
	return IntegrityError{Detail: fmt.Sprintf(format, args...)}
}

// MissingReference reports an unknown id supplied as a reference to another
// entity. It matches both ErrValidation and ErrNotFound.
func MissingReference(field, kind, id string) error {
	return fmt.Errorf("%w: %w", Invalid(field, "unknown "+kind), NotFound(kind, id))
}
