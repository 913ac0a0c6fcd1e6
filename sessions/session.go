package sessions

import (
	"github.com/jrsteele09/evangelism-tracker/token"
	"github.com/jrsteele09/evangelism-tracker/users"
	"golang.org/x/oauth2"
)

// Session is the authentication state of one client context. It is either
// fully authenticated (credentials and profile) or the zero value.
type Session struct {
	Token   *oauth2.Token // access and refresh credentials
	Profile *users.User   // cached identity, may be stale
}

func (s Session) IsAuthenticated() bool {
	return s.AccessToken() != "" && s.Profile != nil
}

func (s Session) AccessToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

func (s Session) RefreshToken() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.RefreshToken
}

// clone deep-copies so callers never share memory with the store.
func (s Session) clone() Session {
	return Session{Token: token.Clone(s.Token), Profile: cloneProfile(s.Profile)}
}

func cloneProfile(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	p := *u
	if u.PhoneNumber != nil {
		phone := *u.PhoneNumber
		p.PhoneNumber = &phone
	}
	return &p
}
