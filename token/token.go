package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// NewPair wraps the credentials returned by login or refresh. When the access
// credential is a JWT its exp claim is copied to Expiry for display only;
// expiry is still discovered through a 401, never checked up front.
func NewPair(access, refresh string) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if exp, ok := ExpiryOf(access); ok {
		t.Expiry = exp
	}
	return t
}

// ExpiryOf reads the exp claim without verifying the signature. The client
// holds no key; the server remains the authority on validity.
func ExpiryOf(access string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Clone returns a copy that is safe to hand out of a locked store.
func Clone(t *oauth2.Token) *oauth2.Token {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
