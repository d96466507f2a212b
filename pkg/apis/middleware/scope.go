package middleware

import (
	"context"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
)

type scopeKey struct{}

var requestScopeKey = scopeKey{}

// RequestScope carries per request state from the scope middleware to the
// handlers after it. Handlers share the one pointer, so writes are seen by
// everything that runs later, including the request logger.
type RequestScope struct {
	// ReverseProxy tracks whether we are running behind a reverse proxy and
	// should trust the X-Forwarded-* headers.
	ReverseProxy bool

	// RequestID is set to the request's `X-Request-Id` header if set.
	// Otherwise a random UUID is set.
	RequestID string

	// MountPrefix is the path the gate is mounted under for this request.
	// It is empty when mounted at the root.
	MountPrefix string

	// Session is the session loaded for this request, if any. The gate only
	// reads it; the login flow is the sole writer.
	Session *sessions.SessionState

	// Upstream tracks which upstream was used for this request, for logging.
	Upstream string
}

// GetRequestScope returns the scope the scope middleware attached, or nil
// outside the handler chain.
func GetRequestScope(req *http.Request) *RequestScope {
	scope, _ := req.Context().Value(requestScopeKey).(*RequestScope)
	return scope
}

// AddRequestScope returns a shallow copy of req carrying scope.
func AddRequestScope(req *http.Request, scope *RequestScope) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), requestScopeKey, scope))
}
