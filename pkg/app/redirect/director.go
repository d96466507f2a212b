package redirect

import (
	"net/http"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// RedirectParam is the query parameter carrying the post login destination.
const RedirectParam = "redirect"

// AppDirector determines where a user is sent once the login flow completes.
type AppDirector interface {
	// GetRedirect returns the validated redirect requested by req, or "" if
	// none was requested.
	GetRedirect(req *http.Request) string
	// Resolve returns redirect if it is still valid, else the fallback.
	Resolve(redirect string) string
}

// AppDirectorOpts are the requirements for constructing a new AppDirector.
type AppDirectorOpts struct {
	// ControlPaths are the full login route paths. Redirects into them
	// would loop and are rejected.
	ControlPaths []string
	// Fallback is used when no valid redirect is available.
	Fallback  string
	Validator Validator
}

// NewAppDirector constructs a new AppDirector.
func NewAppDirector(opts AppDirectorOpts) AppDirector {
	return &appDirector{
		controlPaths: opts.ControlPaths,
		fallback:     opts.Fallback,
		validator:    opts.Validator,
	}
}

type appDirector struct {
	controlPaths []string
	fallback     string
	validator    Validator
}

func (a *appDirector) GetRedirect(req *http.Request) string {
	redirect := req.URL.Query().Get(RedirectParam)
	if redirect == "" {
		return ""
	}
	if !a.isValid(redirect) {
		logger.Errorf("Invalid redirect provided in %s querystring parameter: %s", RedirectParam, redirect)
		return ""
	}
	return redirect
}

func (a *appDirector) Resolve(redirect string) string {
	if a.isValid(redirect) {
		return redirect
	}
	if redirect != "" {
		logger.Errorf("Discarding invalid stored redirect: %s", redirect)
	}
	return a.fallback
}

func (a *appDirector) isValid(redirect string) bool {
	return a.validator.IsValidRedirect(redirect) && !a.isControlPath(redirect)
}

// isControlPath reports whether the relative redirect targets one of the
// login routes.
func (a *appDirector) isControlPath(redirect string) bool {
	path := redirect
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, p := range a.controlPaths {
		if path == p {
			return true
		}
	}
	return false
}
