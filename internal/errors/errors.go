package errors

import (
	"errors"
	"fmt"
)

// Common error types for the tracker client
var (
	// Session errors
	ErrSessionExpired   = errors.New("session expired")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoRefreshToken   = errors.New("no refresh token")

	// Remote API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// Client-side checks
	ErrValidation = errors.New("validation failed")
)

// GenericMessage is shown whenever the server's error body can't be understood.
const GenericMessage = "Something went wrong"

// AuthError is returned by login, register, refresh and password reset flows.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap maps a 401 onto ErrUnauthorized so callers can errors.Is it.
func (e *AuthError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// APIError is any other non-2xx response from a resource call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	}
	return nil
}

// ValidationError is raised before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SessionExpiredError means the refresh failed or no refresh token was held.
// The session has already been cleared when this is returned.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	if e.Cause == nil {
		return ErrSessionExpired.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSessionExpired, e.Cause)
}

func (e *SessionExpiredError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSessionExpired}
	}
	return []error{ErrSessionExpired, e.Cause}
}

// Message returns the text meant for a user. Raw error chains from the
// transport never reach the user; they collapse to GenericMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}
	// Checked first: an expired session carries the refresh failure as its cause.
	if Is(err, ErrSessionExpired) {
		return "Your session has expired, please log in again"
	}
	var authErr *AuthError
	if As(err, &authErr) {
		return authErr.Message
	}
	var apiErr *APIError
	if As(err, &apiErr) {
		return apiErr.Message
	}
	var valErr *ValidationError
	if As(err, &valErr) {
		return valErr.Message
	}
	return GenericMessage
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
