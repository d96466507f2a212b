package middleware

import (
	"net/http"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
)

// statusRecorder remembers the status and body size written through it.
// Hijacking and deadlines reach the wrapped writer through Unwrap.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

// NewResponseWriter wraps rw to record the status and size of the response.
// A writer that already records them is returned unchanged, so nested
// middleware agree on the figures.
func NewResponseWriter(rw http.ResponseWriter) middlewareapi.ResponseWriter {
	if recorder, ok := rw.(middlewareapi.ResponseWriter); ok {
		return recorder
	}
	return &statusRecorder{ResponseWriter: rw}
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Flush implicitly commits a 200 like Write does.
func (r *statusRecorder) Flush() {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	_ = http.NewResponseController(r.ResponseWriter).Flush()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *statusRecorder) Status() int { return r.status }

func (r *statusRecorder) Size() int { return r.size }
