package errors_test

import (
	"fmt"
	"testing"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	t.Run("api 404 is not found", func(t *testing.T) {
		err := fmt.Errorf("[reports Get] %w", &errs.APIError{Status: 404, Message: "Report not found"})
		require.True(t, errs.Is(err, errs.ErrNotFound))
		require.False(t, errs.Is(err, errs.ErrUnauthorized))
	})

	t.Run("auth 401 is unauthorized", func(t *testing.T) {
		err := &errs.AuthError{Status: 401, Message: "Invalid credentials"}
		require.True(t, errs.Is(err, errs.ErrUnauthorized))
	})

	t.Run("validation", func(t *testing.T) {
		err := &errs.ValidationError{Field: "email", Message: "Invalid email address"}
		require.True(t, errs.Is(err, errs.ErrValidation))
	})

	t.Run("session expired keeps cause", func(t *testing.T) {
		cause := &errs.AuthError{Status: 401, Message: "Invalid refresh token"}
		err := &errs.SessionExpiredError{Cause: cause}
		require.True(t, errs.Is(err, errs.ErrSessionExpired))
		require.True(t, errs.Is(err, errs.ErrUnauthorized))

		var authErr *errs.AuthError
		require.True(t, errs.As(err, &authErr))
		require.Equal(t, "Invalid refresh token", authErr.Message)
	})
}

func TestMessage(t *testing.T) {
	require.Equal(t, "", errs.Message(nil))
	require.Equal(t, "Invalid credentials", errs.Message(&errs.AuthError{Status: 400, Message: "Invalid credentials"}))
	require.Equal(t, "Report not found", errs.Message(fmt.Errorf("wrapped: %w", &errs.APIError{Status: 404, Message: "Report not found"})))
	require.Equal(t, "Passwords don't match", errs.Message(&errs.ValidationError{Message: "Passwords don't match"}))
	require.Equal(t, "Your session has expired, please log in again", errs.Message(&errs.SessionExpiredError{}))
	require.Equal(t, errs.GenericMessage, errs.Message(fmt.Errorf("dial tcp: connection refused")))
}

func TestMessage_ExpiredSessionHidesRefreshFailure(t *testing.T) {
	err := fmt.Errorf("[reports List] %w", &errs.SessionExpiredError{
		Cause: &errs.AuthError{Status: 401, Message: "Invalid refresh token"},
	})
	require.Equal(t, "Your session has expired, please log in again", errs.Message(err))

	var authErr *errs.AuthError
	require.True(t, errs.As(err, &authErr), "cause stays reachable for logging")
}

func TestWrapf(t *testing.T) {
	require.NoError(t, errs.Wrapf(nil, "nothing"))

	err := errs.Wrapf(errs.ErrNotFound, "[people Get] id %s", "p1")
	require.EqualError(t, err, "[people Get] id p1: not found")
	require.True(t, errs.Is(err, errs.ErrNotFound))
}
