package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized access") // 401 or expired token; forces logout
	ErrForbidden    = errors.New("forbidden access")
	ErrNotFound     = errors.New("requested resource not found")
	ErrConflict     = errors.New("resource conflict") // e.g., username already exists
	ErrService      = errors.New("service error")     // 5xx or malformed response
	ErrNetwork      = errors.New("network error")     // transport failure, no response
)

// APIError is a non-2xx answer from the judge API. It unwraps to one of the
// sentinel kinds above so callers can branch with errors.Is.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Kind, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Kind }

// ErrorFromStatus maps an HTTP status and the server's error message to an
// *APIError of the matching kind.
func ErrorFromStatus(code int, message string) error {
	kind := ErrService
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		kind = ErrValidation
	case code == http.StatusUnauthorized:
		kind = ErrUnauthorized
	case code == http.StatusForbidden:
		kind = ErrForbidden
	case code == http.StatusNotFound:
		kind = ErrNotFound
	case code == http.StatusConflict:
		kind = ErrConflict
	}
	return &APIError{Status: code, Message: message, Kind: kind}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrService) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
