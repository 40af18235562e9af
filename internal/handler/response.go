package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "Event not found."}
//
// "message" is the human sentence clients have always displayed; "error" is
// the machine-readable type.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/event-manager/internal/apperror"
)

// maxBodyBytes caps request bodies. Event and credential payloads are tiny.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// MessageResponse is the body of operations that only report success.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE the body: once Encode writes, the
// headers are on the wire and later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400 validation_error
//	apperror.ErrConflict     → 400 conflict (clients treat duplicates as a bad request)
//	apperror.ErrUnauthorized → 401 unauthorized
//	apperror.ErrNotFound     → 404 not_found
//	anything else            → 500 internal_error, logged, details withheld
//
// errors.Is walks the whole chain, so a service may wrap an AppError with
// fmt.Errorf("...: %w", err) and the mapping still works.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{
				Error:   errorType,
				Message: appErr.Message,
			})
			return
		}
	}

	// Unknown error. The raw message may contain file paths, so it goes to
	// the log only.
	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON request body into dst.
//
// With allowEmpty, an empty body leaves dst untouched instead of failing.
// Malformed JSON, a wrong value type, or a body over maxBodyBytes becomes
// a ValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, io.EOF):
		return apperror.ValidationFailed("", "Request body is required.")
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.ValidationFailed("", "Request body is too large.")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.ValidationFailed(typeErr.Field, "Invalid value for "+typeErr.Field+".")
	}

	return apperror.ValidationFailed("", "Invalid JSON body.")
}
