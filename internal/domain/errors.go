package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrNotPending is returned when a review decision targets a submission
	// that already left the pending state.
	ErrNotPending = errors.New("submission is not pending")

	// ErrDuplicate signals a uniqueness violation (e.g. google_place_id).
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotOperational is returned when an imported business reports a
	// closed status upstream.
	ErrNotOperational = errors.New("business is not operational")
)

// ValidationError carries the fields that failed input validation.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func NewValidationError(msg string) *ValidationError { return &ValidationError{Msg: msg} }

func MissingFields(fields ...string) *ValidationError { return &ValidationError{Fields: fields} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthError distinguishes an absent identity from an insufficient one.
type AuthError struct {
	// Authenticated is false when no identity was presented at all.
	Authenticated bool
}

func (e *AuthError) Error() string {
	if !e.Authenticated {
		return "authentication required"
	}
	return "insufficient privileges"
}

var (
	ErrUnauthenticated = &AuthError{Authenticated: false}
	ErrForbidden       = &AuthError{Authenticated: true}
)

// PlacesStatus mirrors the status codes of the Google Places web service.
type PlacesStatus string

const (
	StatusOK             PlacesStatus = "OK"
	StatusZeroResults    PlacesStatus = "ZERO_RESULTS"
	StatusInvalidRequest PlacesStatus = "INVALID_REQUEST"
	StatusOverQueryLimit PlacesStatus = "OVER_QUERY_LIMIT"
	StatusRequestDenied  PlacesStatus = "REQUEST_DENIED"
	StatusNotFound       PlacesStatus = "NOT_FOUND"
	StatusUnknownError   PlacesStatus = "UNKNOWN_ERROR"
)

// PlacesError wraps a non-OK response from the external place service.
type PlacesError struct {
	Status  PlacesStatus
	Message string
}

func (e *PlacesError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("google places: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("google places: %s", e.Status)
}

// RateLimited reports whether the upstream throttled us.
func (e *PlacesError) RateLimited() bool { return e.Status == StatusOverQueryLimit }
