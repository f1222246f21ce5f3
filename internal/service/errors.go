package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken covers every refresh failure past validation:
	// bad signature, wrong kind, expired, revoked, rotated out, no record.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrRegistrationFailed  = errors.New("registration failed")
	ErrUserNotFound        = errors.New("user not found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
