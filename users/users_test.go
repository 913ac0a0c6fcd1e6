package users_test

import (
	"encoding/json"
	"testing"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/utils"
	"github.com/jrsteele09/evangelism-tracker/users"
	"github.com/stretchr/testify/require"
)

func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, field, ve.Field)
	require.Equal(t, message, ve.Message)
}

func TestCredentials_Validate(t *testing.T) {
	require.NoError(t, users.Credentials{Email: "a@b.com", Password: "secret1"}.Validate())
	requireFieldError(t, users.Credentials{Email: "a-b.com", Password: "secret1"}.Validate(), "email", "Invalid email address")
	requireFieldError(t, users.Credentials{Email: "a@b.com", Password: "12345"}.Validate(), "password", "Password must be at least 6 characters")
}

func TestRegisterRequest_Validate(t *testing.T) {
	valid := users.RegisterRequest{
		Registration: users.Registration{FullName: "Grace Okafor", Email: "grace@example.com"},
		Role:         users.RoleEvangelist,
		Password:     "secret1",
	}
	require.NoError(t, valid.Validate())

	short := valid
	short.FullName = "G"
	requireFieldError(t, short.Validate(), "full_name", "Full name must be at least 2 characters")
}

func TestRegisterRequest_JSONIsFlat(t *testing.T) {
	req := users.RegisterRequest{
		Registration: users.Registration{FullName: "Grace Okafor", Email: "grace@example.com", PhoneNumber: utils.Ptr("+234")},
		Role:         users.RoleEvangelist,
		Password:     "secret1",
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"full_name":"Grace Okafor","email":"grace@example.com","phone_number":"+234","role":"evangelist","password":"secret1"}`, string(b))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, users.ValidateEmail("a@b.com"))
	requireFieldError(t, users.ValidateEmail(""), "email", "Invalid email address")
}

func TestPasswordReset_Validate(t *testing.T) {
	require.NoError(t, users.PasswordReset{Token: "t", Password: "p1p1p1", ConfirmPassword: "p1p1p1"}.Validate())
	requireFieldError(t, users.PasswordReset{Token: "t", Password: "p1", ConfirmPassword: "p2"}.Validate(), "confirm_password", "Passwords don't match")
	require.NoError(t, users.PasswordReset{Token: "bad", Password: "p1", ConfirmPassword: "p1"}.Validate())
	requireFieldError(t, users.PasswordReset{Token: "t"}.Validate(), "password", "Password is required")
	requireFieldError(t, users.PasswordReset{Password: "p1p1p1", ConfirmPassword: "p1p1p1"}.Validate(), "token", "Reset token is missing")
}

func TestUserHelpers(t *testing.T) {
	var nobody *users.User
	require.False(t, nobody.IsAdmin())
	require.Equal(t, "", nobody.FirstName())

	u := &users.User{FullName: "  Grace Okafor ", Role: users.RoleAdmin}
	require.True(t, u.IsAdmin())
	require.Equal(t, "Grace", u.FirstName())
}
