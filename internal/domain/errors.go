// Package domain holds the error taxonomy shared by every feature package.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	// ErrMissingTenant is returned when a non-super principal carries no shop binding.
	ErrMissingTenant = errors.New("no shop bound to this account")
	// ErrShopRequired is returned when a global-scope caller attempts a write without
	// naming a target shop.
	ErrShopRequired = errors.New("a target shop must be selected for this operation")
)

// ValidationError is a business-rule violation in the input. It is always surfaced
// to the caller with a human-readable reason and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError means the entity does not exist within the caller's scope.
// Cross-tenant lookups report this rather than an authorization failure so the
// existence of another shop's data is not leaked.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string) error { return &NotFoundError{Entity: entity} }

// AuthorizationError means the principal is not allowed to act at all (missing
// tenant, role mismatch). Surfaced distinctly from validation so clients can
// force re-authentication.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// TransitionError is returned when a state-machine move is not allowed. It is a
// subtype of ValidationError for HTTP mapping purposes.
type TransitionError struct {
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from status %q", e.Event, e.Current)
}

// IsValidation reports whether err is caller-correctable input (including
// illegal transitions).
func IsValidation(err error) bool {
	var v *ValidationError
	var t *TransitionError
	return errors.As(err, &v) || errors.As(err, &t)
}

// IsNotFound reports whether err is a scoped miss.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsAuthorization reports whether err is an authorization failure.
func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a) || errors.Is(err, ErrMissingTenant) || errors.Is(err, ErrShopRequired)
}
