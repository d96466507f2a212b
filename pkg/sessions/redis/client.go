package redis

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/redis/go-redis/v9"
)

// Client is the part of redis the session store talks to. Standalone,
// sentinel and cluster connections all sit behind a redis.UniversalClient.
type Client struct {
	rdb    redis.UniversalClient
	locker *redislock.Client
}

func newClient(rdb redis.UniversalClient) *Client {
	return &Client{
		rdb:    rdb,
		locker: redislock.New(rdb),
	}
}

// Get returns the raw value stored under key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

// Set stores value under key for expiration.
func (c *Client) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Del removes key.
func (c *Client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Lock returns an unobtained lock on key.
func (c *Client) Lock(key string) sessions.Lock {
	return NewLock(c.locker, key)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
