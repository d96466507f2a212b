package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
)

type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	locked  map[string]bool
	lockErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, locked: map[string]bool{}}
}

func (f *fakeStore) Save(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (f *fakeStore) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeStore) Lock(key string) sessions.Lock {
	return &fakeLock{store: f, key: key}
}

func (f *fakeStore) VerifyConnection(context.Context) error {
	return nil
}

type fakeLock struct {
	store *fakeStore
	key   string
}

func (l *fakeLock) Obtain(context.Context, time.Duration) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if l.store.lockErr != nil {
		return l.store.lockErr
	}
	if l.store.locked[l.key] {
		return sessions.ErrLockNotObtained
	}
	l.store.locked[l.key] = true
	return nil
}

func (l *fakeLock) Release(context.Context) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	delete(l.store.locked, l.key)
	return nil
}
