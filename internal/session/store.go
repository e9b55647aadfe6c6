package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/sportify-web/pkg/redis"
)

// Keys persisted per session
const (
	KeyToken = "token"
	KeyUser  = "user"
)

const keyPrefix = "session:"

// Store persists session values across requests
type Store interface {
	// Get returns "" with a nil error when the key is absent
	Get(ctx context.Context, sid, key string) (string, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

// RedisStore keeps each session in the hash session:{sid}
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis backed store; every write refreshes the TTL
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, error) {
	val, err := s.client.HGet(ctx, keyPrefix+sid, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	if err := s.client.HSetWithTTL(ctx, keyPrefix+sid, s.ttl, key, value); err != nil {
		return fmt.Errorf("failed to write session %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if err := s.client.HDel(ctx, keyPrefix+sid, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// MemoryStore is an in-process store for tests and single instance dev mode
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// NewMemoryStore creates a memory store; ttl <= 0 never expires
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, sid, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sid]
	if !ok || s.expired(e) {
		return "", nil
	}
	return e.values[key], nil
}

func (s *MemoryStore) Set(ctx context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sid]
	if !ok || s.expired(e) {
		e = &memoryEntry{values: make(map[string]string)}
		s.sessions[sid] = e
	}
	e.values[key] = value
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sid]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(e.values, k)
	}
	if len(e.values) == 0 {
		delete(s.sessions, sid)
	}
	return nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.sessions {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
