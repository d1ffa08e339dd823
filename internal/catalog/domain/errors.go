package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or invalid required field. It is surfaced
// to the caller as a user-facing message, never as a fatal condition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that an id or slug resolved to no store.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// AuthorizationError reports a failed ownership check.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// UniquenessError reports a storage-level unique constraint violation, the
// defense-in-depth backstop behind the slug generator.
type UniquenessError struct {
	Field string
	Value string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}

// IsUniqueness reports whether err is (or wraps) a UniquenessError.
func IsUniqueness(err error) bool {
	var target *UniquenessError
	return errors.As(err, &target)
}
