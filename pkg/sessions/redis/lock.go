package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
)

// Lock is a sessions.Lock backed by a redislock key.
type Lock struct {
	locker *redislock.Client
	lock   *redislock.Lock
	key    string
}

// NewLock returns an unobtained lock on key.
func NewLock(locker *redislock.Client, key string) sessions.Lock {
	return &Lock{
		locker: locker,
		key:    key,
	}
}

// Obtain takes the lock without retrying. sessions.ErrLockNotObtained is
// returned when another writer holds it.
func (l *Lock) Obtain(ctx context.Context, expiration time.Duration) error {
	lock, err := l.locker.Obtain(ctx, l.key, expiration, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return sessions.ErrLockNotObtained
	}
	if err != nil {
		return err
	}
	l.lock = lock
	return nil
}

// Release gives up a lock obtained by Obtain.
func (l *Lock) Release(ctx context.Context) error {
	if l.lock == nil {
		return fmt.Errorf("tried to release not existing lock")
	}
	err := l.lock.Release(ctx)
	l.lock = nil
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
