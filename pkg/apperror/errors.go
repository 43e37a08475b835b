// Package apperror holds the sentinel errors services wrap with context and
// the HTTP status each one surfaces as.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrUnavailable       = errors.New("service unavailable")
)

// statuses is searched in order; the first sentinel in the chain decides.
var statuses = []struct {
	sentinel error
	status   int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrRateLimitExceeded, http.StatusTooManyRequests},
	{ErrUnavailable, http.StatusServiceUnavailable},
}

// AppError pins a status and a client-facing message to an error. Message
// is what the client sees; Err keeps the chain for errors.Is.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.Code)
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation rejects input with a message meant for the caller.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrInvalidInput)
}

// MapErrorToStatus resolves err to a status: an AppError's own code first,
// then the sentinel it wraps, else 500.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	for _, s := range statuses {
		if errors.Is(err, s.sentinel) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
