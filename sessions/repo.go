package sessions

import "context"

// Keys of the persisted record. Together they are the only state that
// survives a restart.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserKey         = "user" // JSON-encoded users.User
)

// AllKeys lists every key of the persisted record.
var AllKeys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// Repo is a durable string key-value store for the persisted record.
type Repo interface {
	// Get returns the value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// SetAll writes every entry in one step
	SetAll(ctx context.Context, values map[string]string) error

	// Delete removes the keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error
}
