package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/sessions/redis"
)

// redisCheckTimeout bounds the start-up round trip to redis.
const redisCheckTimeout = 10 * time.Second

// validateSessionStore checks the store type and, for redis, that the server
// accepts a write, returns it and deletes it again.
func validateSessionStore(o *options.Options) []string {
	switch o.Session.Type {
	case options.CookieSessionStoreType, options.MemorySessionStoreType:
		return nil
	case options.RedisSessionStoreType:
	default:
		return []string{fmt.Sprintf("unknown session store type %q", o.Session.Type)}
	}

	client, err := redis.NewRedisClient(o.Session.Redis)
	if err != nil {
		return []string{fmt.Sprintf("unable to initialize a redis client: %v", err)}
	}
	defer client.Close()

	nonce, err := encryption.NonceString(16)
	if err != nil {
		return []string{fmt.Sprintf("unable to generate a redis initialization test key: %v", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCheckTimeout)
	defer cancel()
	return redisRoundTrip(ctx, client, o.Cookie.Name+"-healthcheck-"+nonce, nonce)
}

func redisRoundTrip(ctx context.Context, client *redis.Client, key, val string) []string {
	var msgs []string

	if err := client.Set(ctx, key, []byte(val), time.Minute); err != nil {
		msgs = append(msgs, fmt.Sprintf("unable to set a redis initialization key: %v", err))
	} else if got, err := client.Get(ctx, key); err != nil {
		msgs = append(msgs, fmt.Sprintf("unable to retrieve redis initialization key: %v", err))
	} else if string(got) != val {
		msgs = append(msgs, "the retrieved redis initialization key did not match the value we set")
	}

	if err := client.Del(ctx, key); err != nil {
		msgs = append(msgs, fmt.Sprintf("unable to delete the redis initialization key: %v", err))
	}
	return msgs
}
