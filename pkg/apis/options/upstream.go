package options

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultUpstreamFlushInterval is the default value for the Upstream FlushInterval.
	DefaultUpstreamFlushInterval = 1 * time.Second

	// DefaultUpstreamTimeout is the maximum duration a network dial to an upstream server for a response.
	DefaultUpstreamTimeout = 30 * time.Second
)

// UpstreamOptions configures the application the standalone proxy fronts.
type UpstreamOptions struct {
	// Upstream is an http(s) URL to proxy to, or a file:// directory to serve.
	Upstream              string        `flag:"upstream" cfg:"upstream"`
	PassHostHeader        bool          `flag:"pass-host-header" cfg:"pass_host_header"`
	PassUserHeaders       bool          `flag:"pass-user-headers" cfg:"pass_user_headers"`
	PassAccessToken       bool          `flag:"pass-access-token" cfg:"pass_access_token"`
	FlushInterval         time.Duration `flag:"flush-interval" cfg:"flush_interval"`
	Timeout               time.Duration `flag:"upstream-timeout" cfg:"upstream_timeout"`
	InsecureSkipTLSVerify bool          `flag:"ssl-upstream-insecure-skip-verify" cfg:"ssl_upstream_insecure_skip_verify"`
	AuthorizedUsersFile   string        `flag:"authorized-users-file" cfg:"authorized_users_file"`
}

func upstreamDefaults() UpstreamOptions {
	return UpstreamOptions{
		PassHostHeader:  true,
		PassUserHeaders: true,
		FlushInterval:   DefaultUpstreamFlushInterval,
		Timeout:         DefaultUpstreamTimeout,
	}
}

func upstreamFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("upstream", pflag.ExitOnError)

	flagSet.String("upstream", "", "the http url of the upstream endpoint or a file:// directory to serve")
	flagSet.Bool("pass-host-header", true, "pass the request Host Header to upstream")
	flagSet.Bool("pass-user-headers", true, "pass X-Forwarded-User to upstream")
	flagSet.Bool("pass-access-token", false, "pass OAuth access_token to upstream via X-Forwarded-Access-Token header")
	flagSet.Duration("flush-interval", DefaultUpstreamFlushInterval, "period between response flushing when streaming responses")
	flagSet.Duration("upstream-timeout", DefaultUpstreamTimeout, "maximum amount of time the server will wait for a response from the upstream")
	flagSet.Bool("ssl-upstream-insecure-skip-verify", false, "skip validation of certificates presented when using HTTPS upstreams")
	flagSet.String("authorized-users-file", "", "file with one Canvas user id per line; when set only these users are authorized")

	return flagSet
}
