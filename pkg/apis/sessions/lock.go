package sessions

import (
	"context"
	"time"
)

// NoOpLock is used by stores that have nothing to serialize.
type NoOpLock struct{}

func (l *NoOpLock) Obtain(ctx context.Context, expiration time.Duration) error {
	return nil
}

func (l *NoOpLock) Release(ctx context.Context) error {
	return nil
}
