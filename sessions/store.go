package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/token"
	"github.com/jrsteele09/evangelism-tracker/users"
	"golang.org/x/oauth2"
)

// Store owns the in-memory Session and keeps the persisted record in
// lockstep with it. Each Store is independent; nothing is process global.
type Store struct {
	mu      sync.RWMutex
	current Session
	repo    Repo
	subs    map[int]chan Session
	nextSub int
}

func NewStore(repo Repo) *Store {
	return &Store{
		repo: repo,
		subs: make(map[int]chan Session),
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Restore rehydrates the session from the persisted record without
// contacting the server. Both the access credential and the profile must be
// present; otherwise the store stays anonymous.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	access, hasAccess, err := s.repo.Get(ctx, AccessTokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("[sessions Restore] read access token: %w", err)
	}
	refresh, _, err := s.repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("[sessions Restore] read refresh token: %w", err)
	}
	rawUser, hasUser, err := s.repo.Get(ctx, UserKey)
	if err != nil {
		return Session{}, fmt.Errorf("[sessions Restore] read user: %w", err)
	}
	if !hasAccess || access == "" || !hasUser || rawUser == "" {
		return Session{}, nil
	}

	var profile users.User
	if err := json.Unmarshal([]byte(rawUser), &profile); err != nil {
		// A corrupt record can't be trusted for any field.
		return Session{}, fmt.Errorf("[sessions Restore] decode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Session{Token: token.NewPair(access, refresh), Profile: &profile}
	s.publish()
	return s.current.clone(), nil
}

// Set replaces the whole session and persisted record.
func (s *Store) Set(ctx context.Context, next Session) error {
	if !next.IsAuthenticated() {
		return fmt.Errorf("[sessions Set] session needs an access token and a profile: %w", errs.ErrNotAuthenticated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next.clone()
	s.publish()
	return s.persist(ctx)
}

// ReplaceTokens swaps in refreshed credentials and keeps the cached profile.
// It fails if the session was cleared while the refresh was in flight, so a
// logout is never undone by a late refresh.
func (s *Store) ReplaceTokens(ctx context.Context, t *oauth2.Token) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.IsAuthenticated() {
		return Session{}, fmt.Errorf("[sessions ReplaceTokens] %w", errs.ErrNotAuthenticated)
	}
	s.current = Session{Token: token.Clone(t), Profile: s.current.Profile}
	s.publish()
	return s.current.clone(), s.persist(ctx)
}

// UpdateProfile refreshes the cached profile of the current session.
func (s *Store) UpdateProfile(ctx context.Context, profile *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.IsAuthenticated() {
		return fmt.Errorf("[sessions UpdateProfile] %w", errs.ErrNotAuthenticated)
	}
	s.current = Session{Token: s.current.Token, Profile: cloneProfile(profile)}
	s.publish()
	return s.persist(ctx)
}

// Clear drops the session and the persisted record. The in-memory session is
// anonymous as soon as Clear is called, even if the repo then fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAuthenticated := s.current.IsAuthenticated()
	s.current = Session{}
	if wasAuthenticated {
		s.publish()
	}
	if err := s.repo.Delete(ctx, AllKeys...); err != nil {
		return fmt.Errorf("[sessions Clear] %w", err)
	}
	return nil
}

// Subscribe delivers the latest session after each change. Slow readers only
// see the most recent value. Call the returned func to stop.
func (s *Store) Subscribe() (<-chan Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Session, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publish must be called with mu held.
func (s *Store) publish() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.current.clone()
	}
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	rawUser, err := json.Marshal(s.current.Profile)
	if err != nil {
		return fmt.Errorf("[sessions persist] encode user: %w", err)
	}
	if err := s.repo.SetAll(ctx, map[string]string{
		AccessTokenKey:  s.current.AccessToken(),
		RefreshTokenKey: s.current.RefreshToken(),
		UserKey:         string(rawUser),
	}); err != nil {
		return fmt.Errorf("[sessions persist] %w", err)
	}
	return nil
}
