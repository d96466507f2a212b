package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/sessions/persistence"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps encrypted session blobs in redis under their ticket id.
type SessionStore struct {
	Client *Client
}

var _ persistence.Store = (*SessionStore)(nil)

// NewRedisSessionStore connects to redis and puts the ticket manager in
// front of it.
func NewRedisSessionStore(opts *options.SessionOptions, cookieOpts *options.Cookie) (sessions.SessionStore, error) {
	client, err := NewRedisClient(opts.Redis)
	if err != nil {
		return nil, fmt.Errorf("error constructing redis client: %v", err)
	}
	return persistence.NewManager(&SessionStore{Client: client}, cookieOpts), nil
}

func (store *SessionStore) Save(ctx context.Context, key string, value []byte, exp time.Duration) error {
	if err := store.Client.Set(ctx, key, value, exp); err != nil {
		return fmt.Errorf("error saving redis session: %v", err)
	}
	return nil
}

func (store *SessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := store.Client.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s not found in redis", key)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading redis session: %v", err)
	}
	return value, nil
}

func (store *SessionStore) Clear(ctx context.Context, key string) error {
	if err := store.Client.Del(ctx, key); err != nil {
		return fmt.Errorf("error clearing the session from redis: %v", err)
	}
	return nil
}

func (store *SessionStore) Lock(key string) sessions.Lock {
	return store.Client.Lock(key)
}

// VerifyConnection backs the readiness endpoint.
func (store *SessionStore) VerifyConnection(ctx context.Context) error {
	return store.Client.Ping(ctx)
}

// NewRedisClient connects to a single server, a sentinel-managed primary or a
// cluster, depending on opts.
func NewRedisClient(opts options.RedisStoreOptions) (*Client, error) {
	switch {
	case opts.UseSentinel && opts.UseCluster:
		return nil, fmt.Errorf("options redis-use-sentinel and redis-use-cluster are mutually exclusive")

	case opts.UseSentinel:
		addrs, err := addrsOf(opts.SentinelConnectionURLs)
		if err != nil {
			return nil, err
		}
		return newClient(redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    opts.SentinelMasterName,
			SentinelAddrs: addrs,
			Password:      opts.Password,
		})), nil

	case opts.UseCluster:
		addrs, err := addrsOf(opts.ClusterConnectionURLs)
		if err != nil {
			return nil, err
		}
		return newClient(redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: opts.Password,
		})), nil
	}

	ro, err := redis.ParseURL(opts.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redis url: %s", err)
	}
	if opts.Password != "" {
		ro.Password = opts.Password
	}
	if ro.TLSConfig, err = clientTLS(opts, ro.TLSConfig); err != nil {
		return nil, err
	}
	return newClient(redis.NewClient(ro)), nil
}

// clientTLS layers the CA file and the skip-verify switch onto the TLS
// settings implied by the connection URL. A nil result keeps plain TCP.
func clientTLS(opts options.RedisStoreOptions, cfg *tls.Config) (*tls.Config, error) {
	if !opts.InsecureSkipTLSVerify && opts.CAPath == "" {
		return cfg, nil
	}
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	cfg.InsecureSkipVerify = opts.InsecureSkipTLSVerify // #nosec G402

	if opts.CAPath == "" {
		return cfg, nil
	}
	pem, err := os.ReadFile(opts.CAPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %q, %v", opts.CAPath, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		logger.Errorf("system cert pool unavailable for redis, trusting %s only", opts.CAPath)
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		logger.Errorf("no certificates found in %s, using system certs only", opts.CAPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func addrsOf(urls []string) ([]string, error) {
	addrs := make([]string, 0, len(urls))
	for _, u := range urls {
		ro, err := redis.ParseURL(u)
		if err != nil {
			return nil, fmt.Errorf("could not parse redis urls: unable to parse redis url: %v", err)
		}
		addrs = append(addrs, ro.Addr)
	}
	return addrs, nil
}
