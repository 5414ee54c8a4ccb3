package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the authenticated caller lacks rights for the requested action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a business-rule violation, e.g. modifying a settled expense,
// confirming an already-confirmed payment, or losing an optimistic-concurrency race.
// Version conflicts are surfaced to the caller for retry, never retried internally.
var ErrConflict = errors.New("conflict")

// ErrRefreshTokenExpired indicates the stored refresh token has expired.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// The following indicate invariant violations on data that already passed boundary
// validation. They are programmer errors and fatal to the request.

// ErrInvalidPolicy indicates an unrecognized expense kind, split policy or adjustment type.
var ErrInvalidPolicy = errors.New("invalid split policy")

// ErrInvalidItemUsers indicates an item's user assignment is empty or references a user
// who is not part of the expense.
var ErrInvalidItemUsers = errors.New("invalid item users")

// ErrMissingWeight indicates a custom-weighted expense has a participant without a weight.
var ErrMissingWeight = errors.New("missing participant weight")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AppError wraps a lower-level failure with an HTTP-ish status code and a
// human-readable message for the boundary layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}
