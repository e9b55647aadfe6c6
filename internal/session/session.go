package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// NewID returns a fresh opaque session id for the browser cookie
func NewID() string {
	return uuid.NewString()
}

// Session is the per-browser identity context. Hydrate loads it from the
// store, Login and Logout write through to the store.
type Session struct {
	id    string
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	token string
	user  *domain.User
}

// New binds a session id to a store without reading it
func New(store Store, id string) *Session {
	return &Session{id: id, store: store, now: time.Now}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Hydrate loads token and user from the store. An expired token or an
// unreadable user clears the persisted session.
func (s *Session) Hydrate(ctx context.Context) error {
	token, err := s.store.Get(ctx, s.id, KeyToken)
	if err != nil {
		return err
	}
	rawUser, err := s.store.Get(ctx, s.id, KeyUser)
	if err != nil {
		return err
	}

	var user *domain.User
	if rawUser != "" {
		user = &domain.User{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			user = nil
		}
	}

	if token == "" || user == nil || TokenExpired(token, s.now()) {
		s.reset()
		if token != "" || rawUser != "" {
			return s.store.Delete(ctx, s.id, KeyToken, KeyUser)
		}
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login persists token and user and makes them current
func (s *Session) Login(ctx context.Context, token string, user *domain.User) error {
	if token == "" || user == nil {
		return domain.ErrUnauthenticated
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, s.id, KeyToken, token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.id, KeyUser, string(raw)); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// Logout clears token and user from the store and from memory
func (s *Session) Logout(ctx context.Context) error {
	s.reset()
	return s.store.Delete(ctx, s.id, KeyToken, KeyUser)
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Authenticated reports whether a user is logged in
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// User returns a copy of the logged in user or nil
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin reports whether the logged in user is an administrator
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

// Token implements apiclient.TokenSource
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrUnauthenticated
	}
	if TokenExpired(s.token, s.now()) {
		return "", domain.ErrUnauthenticated
	}
	return s.token, nil
}

// TokenExpired reads the exp claim without verifying the signature, which
// belongs to the backend. Tokens that are not JWTs or carry no exp never
// expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
