package upstream

import (
	"net/http"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
)

const fileScheme = "file"

// newFileServer serves the directory root, logging requests against id.
func newFileServer(id, root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if scope := middlewareapi.GetRequestScope(req); scope != nil {
			scope.Upstream = id
		}
		files.ServeHTTP(rw, req)
	})
}
