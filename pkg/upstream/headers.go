package upstream

import (
	"net/http"

	"github.com/justinas/alice"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
)

const (
	// XForwardedUser carries the Canvas user id to the upstream.
	XForwardedUser = "X-Forwarded-User"
	// XForwardedAccessToken carries the Canvas access token to the upstream.
	XForwardedAccessToken = "X-Forwarded-Access-Token"
)

// newIdentityHeaders sets the upstream identity headers from the session in
// the request scope. Client supplied values are always removed so the
// upstream can trust what it receives.
func newIdentityHeaders(opts options.UpstreamOptions) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			req.Header.Del(XForwardedUser)
			req.Header.Del(XForwardedAccessToken)

			scope := middlewareapi.GetRequestScope(req)
			if scope != nil && scope.Session.IsAuthenticated() {
				session := scope.Session
				if opts.PassUserHeaders {
					req.Header.Set(XForwardedUser, session.UserID)
				}
				if opts.PassAccessToken && session.AccessToken != "" {
					req.Header.Set(XForwardedAccessToken, session.AccessToken)
				}
			}

			next.ServeHTTP(rw, req)
		})
	}
}
