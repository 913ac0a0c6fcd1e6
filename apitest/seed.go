package apitest

import (
	"fmt"

	"github.com/jrsteele09/evangelism-tracker/users"
)

// AddUser creates an active account directly, bypassing registration.
func (s *Server) AddUser(fullName, email, password string, role users.RoleType) (users.User, error) {
	u, err := s.accounts.create(users.User{FullName: fullName, Email: email, Role: role}, password)
	if err != nil {
		return users.User{}, fmt.Errorf("[apitest AddUser] %w", err)
	}
	return u, nil
}

// SetActive enables or disables an account.
func (s *Server) SetActive(userID string, active bool) error {
	return s.accounts.setActive(userID, active)
}

// ResetTokenFor returns a pending reset token for the user, if one was
// requested through forgot-password.
func (s *Server) ResetTokenFor(email string) (string, bool) {
	u, err := s.accounts.getByEmail(email)
	if err != nil {
		return "", false
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for tok, id := range s.resetTokens {
		if id == u.ID {
			return tok, true
		}
	}
	return "", false
}
