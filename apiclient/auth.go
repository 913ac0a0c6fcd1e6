package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/jrsteele09/evangelism-tracker/token"
	"github.com/jrsteele09/evangelism-tracker/users"
)

const (
	ResetLinkSentMessage = "Password reset link sent to your email"
	ResetSuccessMessage  = "Password reset successful"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type loginResponse struct {
	tokenResponse
	User *users.User `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// Login exchanges credentials for a session. The session is set in memory
// before it is persisted, so a persistence error still leaves the client
// logged in for this process.
func (c *Client) Login(ctx context.Context, email, password string) (sessions.Session, error) {
	creds := users.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := creds.Validate(); err != nil {
		return sessions.Session{}, err
	}

	var out loginResponse
	if err := c.authCall(ctx, RouteLogin, creds, &out); err != nil {
		return sessions.Session{}, err
	}
	if out.AccessToken == "" || out.User == nil {
		return sessions.Session{}, &errs.AuthError{Status: http.StatusOK, Message: errs.GenericMessage}
	}

	next := sessions.Session{Token: token.NewPair(out.AccessToken, out.RefreshToken), Profile: out.User}
	if err := c.store.Set(ctx, next); err != nil {
		c.logger.Warn().Err(err).Msg("session not persisted")
		return c.store.Current(), fmt.Errorf("[apiclient Login] %w", err)
	}
	c.logger.Info().Str("user_id", out.User.ID).Msg("logged in")
	return c.store.Current(), nil
}

// Register creates an evangelist account. It does not log in.
func (c *Client) Register(ctx context.Context, reg users.Registration, password string) (*users.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)
	body := users.RegisterRequest{Registration: reg, Role: users.RoleEvangelist, Password: password}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	var created users.User
	if err := c.authCall(ctx, RouteRegister, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RequestPasswordReset always answers with the same confirmation on success
// whatever the server says. A 404 is treated as success so the client never
// reveals whether an account exists.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := users.ValidateEmail(email); err != nil {
		return "", err
	}

	err := c.authCall(ctx, RouteForgotPassword, emailRequest{Email: email}, nil)
	var authErr *errs.AuthError
	if err != nil && !(errs.As(err, &authErr) && authErr.Status == http.StatusNotFound) {
		return "", err
	}
	return ResetLinkSentMessage, nil
}

// ResetPassword sets a new password using the emailed token. The session is
// left alone.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password, confirm string) (string, error) {
	body := users.PasswordReset{Token: strings.TrimSpace(resetToken), Password: password, ConfirmPassword: confirm}
	if err := body.Validate(); err != nil {
		return "", err
	}
	if err := c.authCall(ctx, RouteResetPassword, body, nil); err != nil {
		return "", err
	}
	return ResetSuccessMessage, nil
}

// Logout needs no network and never fails to leave the client anonymous.
// The returned error only reports a persisted record that couldn't be removed.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("[apiclient Logout] %w", err)
	}
	return nil
}

// RestoreSession rehydrates the session from the persisted record without
// any network call. An expired credential is found on the first 401.
func (c *Client) RestoreSession(ctx context.Context) (sessions.Session, error) {
	s, err := c.store.Restore(ctx)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("[apiclient RestoreSession] %w", err)
	}
	return s, nil
}

// CurrentUser fetches the profile from the server and updates the cached copy.
func (c *Client) CurrentUser(ctx context.Context) (*users.User, error) {
	var me users.User
	if err := c.DoJSON(ctx, Request{Method: http.MethodGet, Path: RouteMe}, &me); err != nil {
		return nil, err
	}
	if err := c.store.UpdateProfile(ctx, &me); err != nil {
		return &me, fmt.Errorf("[apiclient CurrentUser] %w", err)
	}
	return &me, nil
}

// authCall posts to an unauthenticated auth endpoint. No bearer header is
// sent and a 401 is never refreshed. Non-2xx becomes an *errs.AuthError.
func (c *Client) authCall(ctx context.Context, path string, in, out any) error {
	p, err := c.newPending(Request{Method: http.MethodPost, Path: path, Body: in})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, p, nil)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return &errs.AuthError{Status: resp.Status, Message: NormalizeMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("[apiclient authCall] decode %s: %w", path, err)
	}
	return nil
}
