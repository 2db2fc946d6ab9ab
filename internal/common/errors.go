// Package common defines shared constants and sentinel errors used across
// the GophChat gateway. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrPersistence   = errors.New("persistence error")

	// Auth errors. Every token failure wraps ErrAuth.
	ErrAuth         = errors.New("authentication failed")
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrAuth)

	// Business-rule errors.
	ErrValidation  = errors.New("validation error")
	ErrUnknownUser = errors.New("unknown user")
	ErrForbidden   = errors.New("forbidden")

	// ErrSilentDrop marks a request that must be discarded without any
	// outbound event, e.g. a message sent into a chat the sender is not part of.
	ErrSilentDrop = errors.New("dropped")

	// Account errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UnknownUserError reports a member name that could not be resolved to a user.
type UnknownUserError struct {
	Name string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Name)
}

// Unwrap lets errors.Is(err, ErrUnknownUser) match.
func (e *UnknownUserError) Unwrap() error {
	return ErrUnknownUser
}
