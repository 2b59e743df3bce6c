// Package common defines shared constants and sentinel errors used across
// the todoapi server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors surfaced to clients.
	ErrUsernameTaken      = errors.New("username is taken")
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrPasswordTooLong    = errors.New("password is too long")

	// Access token errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// UsernameTakenError reports a registration attempt for an existing username.
// It matches ErrUsernameTaken via errors.Is.
type UsernameTakenError struct {
	Username string
}

func (e *UsernameTakenError) Error() string {
	return fmt.Sprintf("username %q is taken", e.Username)
}

func (e *UsernameTakenError) Unwrap() error {
	return ErrUsernameTaken
}
