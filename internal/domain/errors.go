package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	// Validation errors (raised before any network call)
	ErrNoTimeSelected    = errors.New("select a time before booking")
	ErrTimeNotAvailable  = errors.New("selected time is not in the available list")
	ErrInvalidCourt      = errors.New("invalid court")
	ErrCourtClosed       = errors.New("court is closed for bookings")
	ErrNicknameRequired  = errors.New("nickname is required")
	ErrRoleRequired      = errors.New("select a position")
	ErrInvalidRole       = errors.New("unknown position")
	ErrEmailRequired     = errors.New("email is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
	ErrInvalidPagination = errors.New("page and limit must be positive")
	ErrFlowNotOpen       = errors.New("booking flow is not open")

	// Authentication errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("administrator access required")

	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidShareToken = errors.New("invalid or expired share link")

	// Advisory join errors; the backend stays authoritative
	ErrBookingFull   = errors.New("this game is already full")
	ErrAlreadyJoined = errors.New("a player with this name has already joined")

	// Upstream payload errors
	ErrMalformedResponse = errors.New("malformed response from booking service")
)

// APIError is a non-2xx response from the booking backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps well-known statuses onto the domain taxonomy
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// NewAPIError builds an APIError, falling back to a status based message
func NewAPIError(status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: message}
}

// IsValidationError checks if the error is a local validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoTimeSelected) ||
		errors.Is(err, ErrTimeNotAvailable) ||
		errors.Is(err, ErrInvalidCourt) ||
		errors.Is(err, ErrCourtClosed) ||
		errors.Is(err, ErrNicknameRequired) ||
		errors.Is(err, ErrRoleRequired) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrInvalidPagination) ||
		errors.Is(err, ErrFlowNotOpen)
}

// IsAuthError checks if the error requires the user to (re)login or lacks rights
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidShareToken)
}

// IsConflictError checks if the error is a join conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrBookingFull) || errors.Is(err, ErrAlreadyJoined)
}

// StatusCode maps err to the HTTP status the UI layer answers with
func StatusCode(err error) int {
	var apiErr *APIError
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case IsNotFoundError(err):
		return http.StatusNotFound
	case IsConflictError(err):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

// UserMessage returns the text shown in a notification for err
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrMalformedResponse):
		return "The booking service returned an unexpected answer. Please try again."
	case IsValidationError(err), IsAuthError(err), IsNotFoundError(err), IsConflictError(err):
		return rootMessage(err)
	default:
		return "Could not reach the booking service. Please try again."
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		ErrNoTimeSelected, ErrTimeNotAvailable, ErrInvalidCourt, ErrCourtClosed,
		ErrNicknameRequired, ErrRoleRequired, ErrInvalidRole, ErrEmailRequired,
		ErrPasswordRequired, ErrPasswordMismatch, ErrInvalidPagination, ErrFlowNotOpen,
		ErrUnauthenticated, ErrForbidden, ErrInvalidShareToken, ErrNotFound,
		ErrBookingFull, ErrAlreadyJoined,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
