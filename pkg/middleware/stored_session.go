package middleware

import (
	"errors"
	"net/http"

	"github.com/justinas/alice"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	sessionsapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// NewStoredSessionLoader loads the session identified by the request cookies
// into the request scope. A request without a session, or with one that
// cannot be loaded, continues with an empty session.
// A session loaded by a previous handler is not replaced.
func NewStoredSessionLoader(store sessionsapi.SessionStore) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			// A scope is always injected before this handler.
			scope := middlewareapi.GetRequestScope(req)
			if scope.Session != nil {
				next.ServeHTTP(rw, req)
				return
			}

			session, err := store.Load(req)
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				logger.Errorf("Error loading session: %v, removing session", err)
				if err := store.Clear(rw, req); err != nil {
					logger.Errorf("Error removing session: %v", err)
				}
			}
			if err != nil {
				session = nil
			}
			if session == nil {
				session = &sessionsapi.SessionState{}
			}

			scope.Session = session
			next.ServeHTTP(rw, req)
		})
	}
}
