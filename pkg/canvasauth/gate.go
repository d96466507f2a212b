package canvasauth

import (
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/authgate"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
)

// Authenticate wraps next with the gate. Requests the gate does not allow
// are redirected to login or to the unauthorized page. AJAX requests that
// need a login get a 401 instead of a redirect.
func (a *CanvasAuth) Authenticate(next http.Handler) http.Handler {
	return a.sessionChain.Then(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		prefix := a.mountPrefix(req)
		decision := a.gate.Decide(authgate.Request{
			Context:     req.Context(),
			Path:        req.URL.Path,
			FullPath:    req.URL.RequestURI(),
			MountPrefix: prefix,
			Session:     a.session(req),
		})
		a.metrics.decisions.WithLabelValues(decision.Kind.String()).Inc()

		switch decision.Kind {
		case authgate.RedirectToLogin:
			if isAjax(req) {
				// no point redirecting an AJAX request
				errorJSON(rw, http.StatusUnauthorized)
				return
			}
			http.Redirect(rw, req, a.LoginURL(req, decision.OriginalPath), http.StatusFound)
		case authgate.RedirectToUnauthorized:
			logger.PrintAuthf(a.session(req).UserID, req, logger.AuthFailure, "Unauthorized for %s", req.URL.Path)
			http.Redirect(rw, req, pathmatch.JoinPath(prefix, a.opts.Paths.UnauthorizedRedirect), http.StatusFound)
		default:
			next.ServeHTTP(rw, req)
		}
	}))
}
