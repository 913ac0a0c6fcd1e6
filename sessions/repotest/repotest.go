// Package repotest holds the behaviour every sessions.Repo must share.
package repotest

import (
	"context"
	"testing"

	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/stretchr/testify/require"
)

// Run exercises repo through the full persisted-record lifecycle.
func Run(t *testing.T, repo sessions.Repo) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := repo.Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set all then get", func(t *testing.T) {
		require.NoError(t, repo.SetAll(ctx, map[string]string{
			sessions.AccessTokenKey:  "T1",
			sessions.RefreshTokenKey: "R1",
			sessions.UserKey:         `{"id":"u1"}`,
		}))

		for key, want := range map[string]string{
			sessions.AccessTokenKey:  "T1",
			sessions.RefreshTokenKey: "R1",
			sessions.UserKey:         `{"id":"u1"}`,
		} {
			got, ok, err := repo.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, ok, key)
			require.Equal(t, want, got)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, repo.SetAll(ctx, map[string]string{
			sessions.AccessTokenKey:  "T2",
			sessions.RefreshTokenKey: "R2",
		}))
		got, _, err := repo.Get(ctx, sessions.AccessTokenKey)
		require.NoError(t, err)
		require.Equal(t, "T2", got)

		user, ok, err := repo.Get(ctx, sessions.UserKey)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"id":"u1"}`, user)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, sessions.AllKeys...))
		require.NoError(t, repo.Delete(ctx, sessions.AllKeys...))
		for _, key := range sessions.AllKeys {
			_, ok, err := repo.Get(ctx, key)
			require.NoError(t, err)
			require.False(t, ok, key)
		}
	})
}
