package utils

import (
	"errors"
	"net/http"
)

// Error kinds. Every error returned to a client is classified by one of these
// through errors.Is; anything else is treated as unexpected.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

const internalErrorMessage = "Internal server error"

// AppError pairs an error kind with a message safe to show to clients
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Kind }

// Validation reports missing or out-of-range input
func Validation(message string) error {
	return &AppError{Kind: ErrValidation, Message: message}
}

// NotFound reports an id lookup miss
func NotFound(message string) error {
	return &AppError{Kind: ErrNotFound, Message: message}
}

// Unauthorized reports a missing, invalid or expired credential
func Unauthorized(message string) error {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller without the required rights
func Forbidden(message string) error {
	return &AppError{Kind: ErrForbidden, Message: message}
}

// Conflict reports a uniqueness violation (duplicate email, licence, review)
func Conflict(message string) error {
	return &AppError{Kind: ErrConflict, Message: message}
}

// StatusCode maps err to its HTTP status. Conflicts are reported as 400.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message for err. Unexpected errors
// never leak their details.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && StatusCode(err) != http.StatusInternalServerError {
		return appErr.Message
	}
	return internalErrorMessage
}
