package upstream

import (
	"crypto/tls"
	"net/http"
	"net/http/httputil"
	"net/url"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
)

const (
	httpScheme  = "http"
	httpsScheme = "https"
)

// httpProxy forwards allowed requests to a single http(s) upstream.
type httpProxy struct {
	upstream string
	proxy    *httputil.ReverseProxy
}

// newHTTPProxy builds the reverse proxy for u. Only the scheme and host of u
// are used: request paths and queries reach the upstream as the client sent
// them, encoded slashes included.
func newHTTPProxy(opts options.UpstreamOptions, u *url.URL, errorHandler ProxyErrorHandler) *httpProxy {
	target := &url.URL{Scheme: u.Scheme, Host: u.Host}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Timeout > 0 {
		transport.ResponseHeaderTimeout = opts.Timeout
	}
	if opts.InsecureSkipTLSVerify {
		/* #nosec G402 */
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if opts.PassHostHeader {
				pr.Out.Host = pr.In.Host
			}
		},
		Transport:     transport,
		FlushInterval: opts.FlushInterval,
	}
	if errorHandler != nil {
		proxy.ErrorHandler = errorHandler
	}

	return &httpProxy{upstream: u.String(), proxy: proxy}
}

func (h *httpProxy) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if scope := middlewareapi.GetRequestScope(req); scope != nil {
		scope.Upstream = h.upstream
	}
	h.proxy.ServeHTTP(rw, req)
}
