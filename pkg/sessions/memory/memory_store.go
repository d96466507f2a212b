package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/clock"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/sessions/persistence"
)

// Store keeps encrypted sessions in process. Sessions do not survive a
// restart and are not shared between replicas.
type Store struct {
	mu       sync.Mutex
	values   map[string][]byte
	timeouts map[string]time.Time
	locks    map[string]time.Time
	clock    clock.Clock
}

var _ persistence.Store = (*Store)(nil)

// NewMemorySessionStore creates an in memory store wrapped in a
// persistence.Manager.
func NewMemorySessionStore(_ *options.SessionOptions, cookieOpts *options.Cookie) (sessions.SessionStore, error) {
	return persistence.NewManager(newStore(), cookieOpts), nil
}

func newStore() *Store {
	return &Store{
		values:   make(map[string][]byte),
		timeouts: make(map[string]time.Time),
		locks:    make(map[string]time.Time),
	}
}

// Save stores the session data with a specified expiration time.
func (s *Store) Save(_ context.Context, key string, value []byte, expiration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.timeouts[key] = s.clock.Now().Add(expiration)
	return nil
}

// Load retrieves unexpired session data.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout, ok := s.timeouts[key]; ok && s.clock.Now().After(timeout) {
		delete(s.values, key)
		delete(s.timeouts, key)
		return nil, errors.New("session expired")
	}

	value, ok := s.values[key]
	if !ok {
		return nil, errors.New("session not found")
	}
	return value, nil
}

// Clear removes the session data.
func (s *Store) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	delete(s.timeouts, key)
	return nil
}

// Lock returns a lock for the given key.
func (s *Store) Lock(key string) sessions.Lock {
	return &lock{key: key, store: s}
}

// VerifyConnection is a no-op for in-memory storage.
func (s *Store) VerifyConnection(_ context.Context) error {
	return nil
}

type lock struct {
	key   string
	store *Store
	held  bool
}

func (l *lock) Obtain(_ context.Context, expiration time.Duration) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	if until, ok := l.store.locks[l.key]; ok && l.store.clock.Now().Before(until) {
		return sessions.ErrLockNotObtained
	}
	l.store.locks[l.key] = l.store.clock.Now().Add(expiration)
	l.held = true
	return nil
}

func (l *lock) Release(_ context.Context) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	if !l.held {
		return errors.New("tried to release not existing lock")
	}
	delete(l.store.locks, l.key)
	l.held = false
	return nil
}
