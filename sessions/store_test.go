package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/sessions"
	fakesessionrepo "github.com/jrsteele09/evangelism-tracker/sessions/repofakes"
	"github.com/jrsteele09/evangelism-tracker/token"
	"github.com/jrsteele09/evangelism-tracker/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(id string) *users.User {
	return &users.User{ID: id, FullName: "Grace Okafor", Email: "grace@example.com", Role: users.RoleEvangelist, IsActive: true}
}

func newStore(t *testing.T) (*sessions.Store, *fakesessionrepo.FakeSessionRepo) {
	t.Helper()
	repo := fakesessionrepo.NewFakeSessionRepo()
	return sessions.NewStore(repo), repo
}

func TestStore_SetPersistsAllFields(t *testing.T) {
	store, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))

	cur := store.Current()
	require.True(t, cur.IsAuthenticated())
	require.Equal(t, "T1", cur.AccessToken())
	require.Equal(t, "R1", cur.RefreshToken())
	require.Equal(t, "u1", cur.Profile.ID)

	record := repo.Snapshot()
	require.Equal(t, "T1", record[sessions.AccessTokenKey])
	require.Equal(t, "R1", record[sessions.RefreshTokenKey])
	require.Contains(t, record[sessions.UserKey], `"id":"u1"`)
}

func TestStore_SetRejectsPartialSession(t *testing.T) {
	store, repo := newStore(t)

	err := store.Set(context.Background(), sessions.Session{Token: token.NewPair("T1", "R1")})
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
	require.False(t, store.Current().IsAuthenticated())
	require.Empty(t, repo.Snapshot())
}

func TestStore_CurrentIsACopy(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set(context.Background(), sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))

	cur := store.Current()
	cur.Token.AccessToken = "tampered"
	cur.Profile.ID = "tampered"

	require.Equal(t, "T1", store.Current().AccessToken())
	require.Equal(t, "u1", store.Current().Profile.ID)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store, repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	require.False(t, store.Current().IsAuthenticated())
	require.Empty(t, repo.Snapshot())
}

func TestStore_ClearDropsMemoryEvenIfRepoFails(t *testing.T) {
	store, repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))

	repo.FailWith = errors.New("disk full")
	require.Error(t, store.Clear(ctx))
	require.False(t, store.Current().IsAuthenticated())
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("access and user present", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		require.NoError(t, repo.SetAll(ctx, map[string]string{
			sessions.AccessTokenKey:  "T1",
			sessions.RefreshTokenKey: "R1",
			sessions.UserKey:         `{"id":"u1","full_name":"Grace Okafor","role":"evangelist"}`,
		}))
		store := sessions.NewStore(repo)

		s, err := store.Restore(ctx)
		require.NoError(t, err)
		require.True(t, s.IsAuthenticated())
		require.Equal(t, "R1", store.Current().RefreshToken())
		require.Equal(t, users.RoleEvangelist, store.Current().Profile.Role)
	})

	t.Run("user missing stays anonymous", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		require.NoError(t, repo.SetAll(ctx, map[string]string{sessions.AccessTokenKey: "T1", sessions.RefreshTokenKey: "R1"}))
		store := sessions.NewStore(repo)

		s, err := store.Restore(ctx)
		require.NoError(t, err)
		require.False(t, s.IsAuthenticated())
		require.False(t, store.Current().IsAuthenticated())
	})

	t.Run("access missing stays anonymous", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		require.NoError(t, repo.SetAll(ctx, map[string]string{sessions.UserKey: `{"id":"u1"}`}))
		store := sessions.NewStore(repo)

		s, err := store.Restore(ctx)
		require.NoError(t, err)
		require.False(t, s.IsAuthenticated())
	})

	t.Run("corrupt user", func(t *testing.T) {
		repo := fakesessionrepo.NewFakeSessionRepo()
		require.NoError(t, repo.SetAll(ctx, map[string]string{sessions.AccessTokenKey: "T1", sessions.UserKey: "{"}))
		store := sessions.NewStore(repo)

		_, err := store.Restore(ctx)
		require.Error(t, err)
		require.False(t, store.Current().IsAuthenticated())
	})
}

func TestStore_ReplaceTokensKeepsProfile(t *testing.T) {
	store, repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))

	s, err := store.ReplaceTokens(ctx, token.NewPair("T2", "R2"))
	require.NoError(t, err)
	require.Equal(t, "T2", s.AccessToken())
	require.Equal(t, "R2", s.RefreshToken())
	require.Equal(t, "u1", s.Profile.ID)
	require.Equal(t, "T2", repo.Snapshot()[sessions.AccessTokenKey])
	require.Equal(t, "R2", repo.Snapshot()[sessions.RefreshTokenKey])
}

func TestStore_ReplaceTokensAfterLogoutFails(t *testing.T) {
	store, repo := newStore(t)

	_, err := store.ReplaceTokens(context.Background(), token.NewPair("T2", "R2"))
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
	require.False(t, store.Current().IsAuthenticated())
	require.Empty(t, repo.Snapshot())
}

func TestStore_UpdateProfile(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.ErrorIs(t, store.UpdateProfile(ctx, testProfile("u1")), errs.ErrNotAuthenticated)

	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))
	updated := testProfile("u1")
	updated.FullName = "Grace O. Okafor"
	require.NoError(t, store.UpdateProfile(ctx, updated))
	require.Equal(t, "Grace O. Okafor", store.Current().Profile.FullName)
	require.Equal(t, "T1", store.Current().AccessToken())
}

func TestStore_Subscribe(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	ch, stop := store.Subscribe()
	defer stop()

	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))
	require.NoError(t, store.Clear(ctx))

	select {
	case s := <-ch:
		require.False(t, s.IsAuthenticated(), "only the latest change is kept")
	case <-time.After(time.Second):
		t.Fatal("no session change delivered")
	}
}

func TestStore_SubscribeStop(t *testing.T) {
	store, _ := newStore(t)
	ch, stop := store.Subscribe()
	stop()
	stop()

	_, open := <-ch
	require.False(t, open)
	require.NoError(t, store.Set(context.Background(), sessions.Session{Token: token.NewPair("T1", "R1"), Profile: testProfile("u1")}))
}

func TestStore_ConcurrentReadersNeverSeeMixedCredentials(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T0", "R0"), Profile: testProfile("u1")}))

	pairs := map[string]string{"T0": "R0", "T1": "R1", "T2": "R2", "T3": "R3"}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			access := []string{"T1", "T2", "T3"}[i%3]
			_, err := store.ReplaceTokens(ctx, token.NewPair(access, pairs[access]))
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 200; i++ {
		cur := store.Current()
		require.Equal(t, pairs[cur.AccessToken()], cur.RefreshToken())
	}
	wg.Wait()
}

func TestStore_ProfilePhoneIsNotShared(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	phone := "+2348000000000"
	profile := testProfile("u1")
	profile.PhoneNumber = &phone
	require.NoError(t, store.Set(ctx, sessions.Session{Token: token.NewPair("T1", "R1"), Profile: profile}))

	phone = "changed by caller"
	cur := store.Current()
	require.Equal(t, "+2348000000000", *cur.Profile.PhoneNumber)
	*cur.Profile.PhoneNumber = "changed by reader"
	require.Equal(t, "+2348000000000", *store.Current().Profile.PhoneNumber)

	updated := testProfile("u1")
	newPhone := "+2348111111111"
	updated.PhoneNumber = &newPhone
	require.NoError(t, store.UpdateProfile(ctx, updated))
	newPhone = "changed after update"
	require.Equal(t, "+2348111111111", *store.Current().Profile.PhoneNumber)
}
