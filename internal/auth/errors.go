package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken indicates the token failed validation: bad
	// signature, malformed payload, or expired.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password so login failures are not distinguishable.
	ErrInvalidCredentials = errors.New("auth: invalid username or password")

	// ErrAccountDisabled is returned on login with correct credentials
	// against a disabled account.
	ErrAccountDisabled = errors.New("auth: account is disabled")

	// ErrInvalidRole indicates a role outside the closed set.
	ErrInvalidRole = errors.New("auth: invalid role")

	// ErrWeakPassword indicates the password fails the minimum strength rule.
	ErrWeakPassword = errors.New("auth: password must be at least 6 characters long")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("auth: not found")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateError reports a uniqueness violation on a user field.
// Field is "username" or "email".
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("auth: %s %q is already registered", e.Field, e.Value)
}
