package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/justinas/alice"

	requestutil "github.com/canvas-auth/canvas-auth-proxy/pkg/requests/util"
)

// NewRedirectToHTTPS permanently redirects plain HTTP requests to HTTPS.
// A request counts as HTTPS when it arrived over TLS, or when a trusted
// reverse proxy says so in X-Forwarded-Proto. An explicit port in the
// original host is replaced by httpsPort.
func NewRedirectToHTTPS(httpsPort string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			if isHTTPS(req) {
				next.ServeHTTP(rw, req)
				return
			}

			target := *req.URL
			target.Scheme = "https"
			target.Host = requestutil.GetRequestHost(req)
			if host, _, err := net.SplitHostPort(target.Host); err == nil {
				target.Host = net.JoinHostPort(host, httpsPort)
			}

			http.Redirect(rw, req, target.String(), http.StatusPermanentRedirect)
		})
	}
}

// isHTTPS reports the scheme the client used. X-Forwarded-Proto only counts
// when the request came through a trusted reverse proxy.
func isHTTPS(req *http.Request) bool {
	return strings.EqualFold(requestutil.GetRequestProto(req), "https")
}
