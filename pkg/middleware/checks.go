package middleware

import (
	"context"
	"net/http"

	"github.com/justinas/alice"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// NewHealthCheck answers "OK" for any of paths, or for any of userAgents,
// without passing the request on. Liveness only: nothing is checked.
func NewHealthCheck(paths, userAgents []string) alice.Constructor {
	isPath := nonEmptySet(paths)
	isAgent := nonEmptySet(userAgents)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			if isPath[req.URL.EscapedPath()] || isAgent[req.Header.Get("User-Agent")] {
				writeCheck(rw, http.StatusOK, "OK")
				return
			}
			next.ServeHTTP(rw, req)
		})
	}
}

// Verifiable is a dependency the readiness check can reach, in practice the
// session store.
type Verifiable interface {
	VerifyConnection(context.Context) error
}

// NewReadynessCheck answers path with "OK" once store is reachable, and with
// a 500 naming the error otherwise. An empty path disables the check.
func NewReadynessCheck(path string, store Verifiable) alice.Constructor {
	return func(next http.Handler) http.Handler {
		if path == "" {
			return next
		}
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			if req.URL.EscapedPath() != path {
				next.ServeHTTP(rw, req)
				return
			}
			if err := store.VerifyConnection(req.Context()); err != nil {
				logger.Errorf("Readiness check failed: %v", err)
				writeCheck(rw, http.StatusInternalServerError, "error: "+err.Error())
				return
			}
			writeCheck(rw, http.StatusOK, "OK")
		})
	}
}

func writeCheck(rw http.ResponseWriter, status int, body string) {
	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(status)
	rw.Write([]byte(body))
}

func nonEmptySet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
