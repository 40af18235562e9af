// Package apperror defines the domain errors shared by the service and
// handler layers.
//
// Services return an *AppError wrapping one of the sentinels below; the HTTP
// layer uses errors.Is on the sentinel to pick a status code and shows
// Message to the client. Anything that is NOT an *AppError is treated as an
// unexpected failure (HTTP 500).
package apperror

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound carries the exact sentence clients display, e.g. "Event not found.".
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized returns an AppError for bad credentials or a missing, invalid,
// expired or revoked token. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
