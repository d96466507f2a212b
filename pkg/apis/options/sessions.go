package options

import (
	"github.com/spf13/pflag"
)

// SessionOptions selects where sessions live between requests.
type SessionOptions struct {
	Type  string            `flag:"session-store-type" cfg:"session_store_type"`
	Redis RedisStoreOptions `cfg:",squash"`
}

// Session store types. The cookie store keeps everything in the browser;
// the others keep a ticket there and the session on the server.
var (
	CookieSessionStoreType = "cookie"
	RedisSessionStoreType  = "redis"
	// MemorySessionStoreType only suits a single replica.
	MemorySessionStoreType = "memory"
)

// RedisStoreOptions locates a standalone server, a sentinel group or a
// cluster. Sentinel and cluster mode are mutually exclusive.
type RedisStoreOptions struct {
	ConnectionURL          string   `flag:"redis-connection-url" cfg:"redis_connection_url"`
	Password               string   `flag:"redis-password" cfg:"redis_password"`
	UseSentinel            bool     `flag:"redis-use-sentinel" cfg:"redis_use_sentinel"`
	SentinelMasterName     string   `flag:"redis-sentinel-master-name" cfg:"redis_sentinel_master_name"`
	SentinelConnectionURLs []string `flag:"redis-sentinel-connection-urls" cfg:"redis_sentinel_connection_urls"`
	UseCluster             bool     `flag:"redis-use-cluster" cfg:"redis_use_cluster"`
	ClusterConnectionURLs  []string `flag:"redis-cluster-connection-urls" cfg:"redis_cluster_connection_urls"`
	CAPath                 string   `flag:"redis-ca-path" cfg:"redis_ca_path"`
	InsecureSkipTLSVerify  bool     `flag:"redis-insecure-skip-tls-verify" cfg:"redis_insecure_skip_tls_verify"`
}

func sessionOptionsDefaults() SessionOptions {
	return SessionOptions{
		Type: CookieSessionStoreType,
		Redis: RedisStoreOptions{
			SentinelConnectionURLs: []string{},
			ClusterConnectionURLs:  []string{},
		},
	}
}

func sessionFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("session", pflag.ExitOnError)

	fs.String("session-store-type", CookieSessionStoreType, "where sessions are kept: cookie, redis or memory")
	fs.String("redis-connection-url", "", "redis server for the redis store, as redis://[USER[:PASSWORD]@]HOST[:PORT][/DB] or rediss:// for TLS")
	fs.String("redis-password", "", "redis password, overriding one in the connection URLs")
	fs.Bool("redis-use-sentinel", false, "find the redis primary through sentinels (see --redis-sentinel-master-name and --redis-sentinel-connection-urls)")
	fs.String("redis-sentinel-master-name", "", "name of the primary the sentinels watch")
	fs.StringSlice("redis-sentinel-connection-urls", []string{}, "redis:// URLs of the sentinels")
	fs.Bool("redis-use-cluster", false, "connect to a redis cluster (see --redis-cluster-connection-urls)")
	fs.StringSlice("redis-cluster-connection-urls", []string{}, "redis:// URLs of the cluster seed nodes")
	fs.String("redis-ca-path", "", "PEM file of extra CAs to trust for redis TLS")
	fs.Bool("redis-insecure-skip-tls-verify", false, "do not verify the redis server certificate")

	return fs
}
