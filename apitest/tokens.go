package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/evangelism-tracker/users"
)

var errInvalidToken = errors.New("invalid token")

const (
	defaultAccessTTL   = 15 * time.Minute
	defaultRefreshTTL  = 7 * 24 * time.Hour
	refreshTokenLength = 32
)

type storedRefreshToken struct {
	userID string
	iat    time.Time
}

// issuer signs HS256 access tokens and keeps one opaque refresh token per
// user. Access tokens are only accepted while their jti is live, so tests can
// expire them all at once.
type issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	lock        sync.Mutex
	liveAccess  map[string]string // jti to user id
	refresh     map[string]storedRefreshToken
	userRefresh map[string]string // user id to refresh token
}

func newIssuer(accessTTL time.Duration) (*issuer, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("[apitest newIssuer] %w", err)
	}
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &issuer{
		secret:      secret,
		accessTTL:   accessTTL,
		refreshTTL:  defaultRefreshTTL,
		liveAccess:  make(map[string]string),
		refresh:     make(map[string]storedRefreshToken),
		userRefresh: make(map[string]string),
	}, nil
}

// issue creates a fresh pair and rotates out the user's previous refresh token.
func (i *issuer) issue(u users.User) (access, refresh string, err error) {
	jti := uuid.New().String()
	now := nowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":  u.ID,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(i.accessTTL).Unix(),
		"jti":  jti,
	}
	access, err = jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign JWT token: %w", err)
	}

	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	refresh = hex.EncodeToString(tokenBytes)

	i.lock.Lock()
	defer i.lock.Unlock()
	if old, ok := i.userRefresh[u.ID]; ok {
		delete(i.refresh, old)
	}
	i.refresh[refresh] = storedRefreshToken{userID: u.ID, iat: now}
	i.userRefresh[u.ID] = refresh
	i.liveAccess[jti] = u.ID
	return access, refresh, nil
}

// verify returns the user id of a live access token.
func (i *issuer) verify(access string) (string, error) {
	var claims jwtlib.RegisteredClaims
	_, err := jwtlib.ParseWithClaims(access, &claims, func(t *jwtlib.Token) (any, error) {
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(nowTimeFunc))
	if err != nil {
		return "", errInvalidToken
	}

	i.lock.Lock()
	defer i.lock.Unlock()
	userID, ok := i.liveAccess[claims.ID]
	if !ok || userID != claims.Subject {
		return "", errInvalidToken
	}
	return userID, nil
}

// redeem consumes a refresh token and returns its user id.
func (i *issuer) redeem(refresh string) (string, error) {
	i.lock.Lock()
	defer i.lock.Unlock()
	rt, ok := i.refresh[refresh]
	if !ok {
		return "", errInvalidToken
	}
	delete(i.refresh, refresh)
	delete(i.userRefresh, rt.userID)
	if nowTimeFunc().Sub(rt.iat) > i.refreshTTL {
		return "", errInvalidToken
	}
	return rt.userID, nil
}

func (i *issuer) expireAccess() {
	i.lock.Lock()
	defer i.lock.Unlock()
	clear(i.liveAccess)
}

func (i *issuer) revokeRefresh() {
	i.lock.Lock()
	defer i.lock.Unlock()
	clear(i.refresh)
	clear(i.userRefresh)
}
