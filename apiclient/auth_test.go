package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/evangelism-tracker/apiclient"
	"github.com/jrsteele09/evangelism-tracker/apitest"
	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/utils"
	"github.com/jrsteele09/evangelism-tracker/users"
	"github.com/stretchr/testify/require"
)

func TestRegister_ForcesEvangelistRole(t *testing.T) {
	f := setup(t)
	reg := users.Registration{FullName: "Grace Okafor", Email: testEmail, PhoneNumber: utils.Ptr("+2348000000000")}

	created, err := f.client.Register(context.Background(), reg, testPassword)
	require.NoError(t, err)
	require.Equal(t, users.RoleEvangelist, created.Role)
	require.NotEmpty(t, created.ID)
	require.False(t, f.client.Session().IsAuthenticated(), "register does not log in")
	require.Empty(t, f.repo.Snapshot())

	calls := f.api.CallsTo(http.MethodPost, apiclient.RouteRegister)
	require.Len(t, calls, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	require.Equal(t, "evangelist", sent["role"])
	require.Equal(t, "Grace Okafor", sent["full_name"])
	require.Equal(t, "+2348000000000", sent["phone_number"])

	_, err = f.client.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
}

func TestRegister_Failures(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		f := setup(t)
		_, err := f.api.AddUser("Grace Okafor", testEmail, testPassword, users.RoleEvangelist)
		require.NoError(t, err)

		_, err = f.client.Register(context.Background(), users.Registration{FullName: "Grace O", Email: testEmail}, testPassword)
		var authErr *errs.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Email already registered", authErr.Message)
	})

	t.Run("short name is caught locally", func(t *testing.T) {
		f := setup(t)
		_, err := f.client.Register(context.Background(), users.Registration{FullName: "G", Email: testEmail}, testPassword)
		require.ErrorIs(t, err, errs.ErrValidation)
		require.Equal(t, "Full name must be at least 2 characters", errs.Message(err))
		require.Empty(t, f.api.Calls())
	})

	t.Run("short password is caught locally", func(t *testing.T) {
		f := setup(t)
		_, err := f.client.Register(context.Background(), users.Registration{FullName: "Grace", Email: testEmail}, "abc")
		require.Equal(t, "Password must be at least 6 characters", errs.Message(err))
		require.Empty(t, f.api.Calls())
	})
}

func TestRequestPasswordReset_AlwaysGeneric(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.api.AddUser("Grace Okafor", testEmail, testPassword, users.RoleEvangelist)
	require.NoError(t, err)

	known, err := f.client.RequestPasswordReset(ctx, testEmail)
	require.NoError(t, err)
	unknown, err := f.client.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, apiclient.ResetLinkSentMessage, known)
	require.Equal(t, known, unknown)

	f.api.Script(http.MethodPost, apiclient.RouteForgotPassword, apitest.Reply{Status: http.StatusNotFound, Body: map[string]string{"detail": "User not found"}})
	leaky, err := f.client.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, known, leaky)
}

func TestRequestPasswordReset_Failures(t *testing.T) {
	f := setup(t)

	_, err := f.client.RequestPasswordReset(context.Background(), "nope")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Empty(t, f.api.Calls())

	f.api.Script(http.MethodPost, apiclient.RouteForgotPassword, apitest.Reply{Status: http.StatusServiceUnavailable, Body: "Mail service unavailable"})
	_, err = f.client.RequestPasswordReset(context.Background(), testEmail)
	var authErr *errs.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Mail service unavailable", authErr.Message)
}

func TestResetPassword_EndToEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.api.AddUser("Grace Okafor", testEmail, testPassword, users.RoleEvangelist)
	require.NoError(t, err)

	_, err = f.client.RequestPasswordReset(ctx, testEmail)
	require.NoError(t, err)
	resetToken, ok := f.api.ResetTokenFor(testEmail)
	require.True(t, ok)

	msg, err := f.client.ResetPassword(ctx, resetToken, "newsecret", "newsecret")
	require.NoError(t, err)
	require.Equal(t, apiclient.ResetSuccessMessage, msg)

	_, err = f.client.Login(ctx, testEmail, testPassword)
	require.Error(t, err)
	_, err = f.client.Login(ctx, testEmail, "newsecret")
	require.NoError(t, err)
}

func TestResetPassword_BadTokenLeavesSession(t *testing.T) {
	f := setup(t)
	f.loginScripted(t)
	before := f.repo.Snapshot()

	f.api.Script(http.MethodPost, apiclient.RouteResetPassword, apitest.Reply{Status: http.StatusBadRequest, Body: map[string]string{"detail": "Invalid or expired token"}})
	_, err := f.client.ResetPassword(context.Background(), "bad", "p1", "p1")
	require.Equal(t, "Invalid or expired token", errs.Message(err))

	var authErr *errs.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusBadRequest, authErr.Status)

	s := f.client.Session()
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "T1", s.AccessToken())
	require.Equal(t, before, f.repo.Snapshot())

	calls := f.api.CallsTo(http.MethodPost, apiclient.RouteResetPassword)
	require.Len(t, calls, 1)
	require.JSONEq(t, `{"token":"bad","password":"p1","confirm_password":"p1"}`, string(calls[0].Body))
}

func TestResetPassword_MismatchNeverReachesNetwork(t *testing.T) {
	f := setup(t)

	_, err := f.client.ResetPassword(context.Background(), "tok", "secret1", "secret2")
	var valErr *errs.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Equal(t, "confirm_password", valErr.Field)
	require.Equal(t, "Passwords don't match", valErr.Message)
	require.Empty(t, f.api.Calls())
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"Invalid credentials"}`, "Invalid credentials"},
		{"detail list", `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"first of many", `{"detail":[{"msg":"field required"},{"msg":"value is not a valid email address"}]}`, "field required"},
		{"plain string", `"Email already registered"`, "Email already registered"},
		{"message key", `{"message":"Token expired"}`, "Token expired"},
		{"unparseable", `<html>502 Bad Gateway</html>`, errs.GenericMessage},
		{"empty", ``, errs.GenericMessage},
		{"empty detail list", `{"detail":[]}`, errs.GenericMessage},
		{"unknown shape", `{"error":"boom"}`, errs.GenericMessage},
		{"number", `42`, errs.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, apiclient.NormalizeMessage([]byte(tt.body)))
		})
	}
}
