package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors for every command outcome the API can report.
// Business code wraps these with %w; handlers translate them to HTTP.
var (
	// ErrNotAuthenticated is returned when no valid session token is presented.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied is returned when the token is valid but the actor's
	// role or ownership fails a command-specific guard.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a referenced actor, order or location
	// sample does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a state-machine guard fails, e.g. a
	// double assignment, a duplicate rating, or cancelling a terminal order.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation error")

	// ErrUpstream is returned when an external provider is unavailable and
	// no fallback exists.
	ErrUpstream = errors.New("upstream unavailable")
)

// HTTPStatus maps a taxonomy error to its response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
