package upstream

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/justinas/alice"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// ProxyErrorHandler renders the error page when the upstream cannot be
// reached.
type ProxyErrorHandler func(http.ResponseWriter, *http.Request, error)

// NewProxy creates the handler serving requests the gate allowed. The
// upstream is either an http(s) server or a file:// directory.
func NewProxy(opts options.UpstreamOptions, errorHandler ProxyErrorHandler) (http.Handler, error) {
	u, err := url.Parse(opts.Upstream)
	if err != nil {
		return nil, fmt.Errorf("error parsing upstream %q: %w", opts.Upstream, err)
	}

	var handler http.Handler
	switch u.Scheme {
	case fileScheme:
		logger.Printf("serving file system %q", u.Path)
		handler = newFileServer(opts.Upstream, u.Path)
	case httpScheme, httpsScheme:
		logger.Printf("proxying to upstream %q", opts.Upstream)
		handler = newHTTPProxy(opts, u, errorHandler)
	default:
		return nil, fmt.Errorf("unknown scheme for upstream %q: %q", opts.Upstream, u.Scheme)
	}

	return alice.New(newIdentityHeaders(opts)).Then(handler), nil
}
