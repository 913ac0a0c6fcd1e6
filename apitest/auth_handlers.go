package apitest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/evangelism-tracker/users"
)

type contextKey string

const contextKeyUser contextKey = "user"

func userFrom(ctx context.Context) users.User {
	u, _ := ctx.Value(contextKeyUser).(users.User)
	return u
}

// requireAuth validates the bearer access token and puts the user in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := bearerToken(r)
		if access == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		userID, err := s.tokens.verify(access)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		u, err := s.accounts.getByID(userID)
		if err != nil || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyUser, u)))
	}
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenBody struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         *users.User `json:"user,omitempty"`
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		if err := decodeBody(r, &body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		var fields []fieldError
		if body.Email == "" {
			fields = append(fields, missing("email"))
		}
		if body.Password == "" {
			fields = append(fields, missing("password"))
		}
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}

		u, err := s.accounts.authenticate(body.Email, body.Password)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if !u.IsActive {
			writeDetail(w, http.StatusForbidden, "Inactive user")
			return
		}
		access, refresh, err := s.tokens.issue(u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Could not issue tokens")
			return
		}
		writeJSON(w, http.StatusOK, tokenBody{AccessToken: access, RefreshToken: refresh, TokenType: "bearer", User: &u})
	}
}

// registerHandler trusts the role it is sent; keeping self-registration
// unprivileged is the client's job.
func (s *Server) registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.RegisterRequest
		if err := decodeBody(r, &body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		var fields []fieldError
		if strings.TrimSpace(body.FullName) == "" {
			fields = append(fields, missing("full_name"))
		}
		if strings.TrimSpace(body.Email) == "" {
			fields = append(fields, missing("email"))
		}
		if body.Password == "" {
			fields = append(fields, missing("password"))
		}
		if len(fields) > 0 {
			writeFieldErrors(w, fields)
			return
		}
		role := body.Role
		if role == "" {
			role = users.RoleEvangelist
		}

		u, err := s.accounts.create(users.User{
			FullName:    body.FullName,
			Email:       body.Email,
			PhoneNumber: body.PhoneNumber,
			Role:        role,
		}, body.Password)
		if errors.Is(err, errEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Could not create user")
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func (s *Server) refreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := decodeBody(r, &body); err != nil || body.RefreshToken == "" {
			writeFieldErrors(w, []fieldError{missing("refresh_token")})
			return
		}
		userID, err := s.tokens.redeem(body.RefreshToken)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		u, err := s.accounts.getByID(userID)
		if err != nil || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		access, refresh, err := s.tokens.issue(u)
		if err != nil {
			writeDetail(w, http.StatusInternalServerError, "Could not issue tokens")
			return
		}
		writeJSON(w, http.StatusOK, tokenBody{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// forgotPasswordHandler answers the same way whether or not the account
// exists. The reset token is kept for ResetTokenFor.
func (s *Server) forgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil || body.Email == "" {
			writeFieldErrors(w, []fieldError{missing("email")})
			return
		}
		if u, err := s.accounts.getByEmail(body.Email); err == nil {
			s.lock.Lock()
			s.resetTokens[uuid.New().String()] = u.ID
			s.lock.Unlock()
		}
		writeJSON(w, http.StatusOK, messageBody{Message: "If the email is registered a reset link has been sent"})
	}
}

func (s *Server) resetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body users.PasswordReset
		if err := decodeBody(r, &body); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.Password != body.ConfirmPassword {
			writeDetail(w, http.StatusBadRequest, "Passwords do not match")
			return
		}

		s.lock.Lock()
		userID, ok := s.resetTokens[body.Token]
		if ok {
			delete(s.resetTokens, body.Token)
		}
		s.lock.Unlock()
		if !ok {
			writeDetail(w, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		if len(body.Password) < 6 {
			writeDetail(w, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}
		if err := s.accounts.setPassword(userID, body.Password); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid or expired token")
			return
		}
		writeJSON(w, http.StatusOK, messageBody{Message: "Password updated"})
	}
}

func (s *Server) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFrom(r.Context()))
	}
}
