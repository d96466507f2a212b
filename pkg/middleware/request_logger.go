package middleware

import (
	"net/http"
	"time"

	"github.com/justinas/alice"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// NewRequestLogger logs every request once the rest of the chain has
// served it.
func NewRequestLogger() alice.Constructor {
	return requestLogger
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		start := time.Now()
		url := *req.URL
		mrw := NewResponseWriter(rw)

		next.ServeHTTP(mrw, req)

		var user, upstream string
		if scope := middlewareapi.GetRequestScope(req); scope != nil {
			if scope.Session.IsAuthenticated() {
				user = scope.Session.UserID
			}
			upstream = scope.Upstream
		}

		logger.PrintReq(user, upstream, req, url, time.Since(start), mrw.Status(), mrw.Size())
	})
}
