package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/justinas/alice"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
)

// NewScope starts every request with a fresh RequestScope. The request id
// comes from idHeader when the client or an edge proxy set one.
func NewScope(reverseProxy bool, idHeader, mountPrefix string) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(idHeader)
			if id == "" {
				id = uuid.NewString()
			}
			next.ServeHTTP(rw, middlewareapi.AddRequestScope(req, &middlewareapi.RequestScope{
				ReverseProxy: reverseProxy,
				RequestID:    id,
				MountPrefix:  mountPrefix,
			}))
		})
	}
}
