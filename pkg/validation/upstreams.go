package validation

import (
	"fmt"
	"net/url"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
)

// validateUpstream checks the upstream can be proxied to.
func validateUpstream(o options.UpstreamOptions) []string {
	msgs := []string{}

	if o.Upstream == "" {
		msgs = append(msgs, "missing setting: upstream")
	} else {
		u, err := url.Parse(o.Upstream)
		switch {
		case err != nil:
			msgs = append(msgs, fmt.Sprintf("error parsing upstream: %v", err))
		case u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file":
			msgs = append(msgs, fmt.Sprintf("upstream %q has an unsupported scheme %q: use http, https or file", o.Upstream, u.Scheme))
		}
	}

	if o.FlushInterval < 0 {
		msgs = append(msgs, fmt.Sprintf("flush-interval (%q) must not be negative", o.FlushInterval))
	}
	if o.Timeout < 0 {
		msgs = append(msgs, fmt.Sprintf("upstream-timeout (%q) must not be negative", o.Timeout))
	}
	return msgs
}
