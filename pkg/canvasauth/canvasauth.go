package canvasauth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	sessionsapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/app/pagewriter"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/app/redirect"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/authgate"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/canvas"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/oauthstate"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
	requestutil "github.com/canvas-auth/canvas-auth-proxy/pkg/requests/util"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/version"
)

const (
	applicationJSON = "application/json"

	// errorParam carries the failure reason to the login failure page.
	errorParam          = "error"
	expireSessionsParam = "expire_sessions"
)

var (
	// ErrExchangeFailure is matched by every failed code exchange.
	ErrExchangeFailure = errors.New("token exchange failed")
	// ErrRevocationFailure is matched by every failed token revocation.
	ErrRevocationFailure = errors.New("token revocation failed")
)

var noCacheHeaders = map[string]string{
	"Expires":         time.Unix(0, 0).Format(time.RFC1123),
	"Cache-Control":   "no-cache, no-store, must-revalidate, max-age=0",
	"X-Accel-Expires": "0", // https://www.nginx.com/resources/wiki/start/topics/examples/x-accel/
}

// CanvasAuth serves the login control endpoints and gates every other
// request on a Canvas authenticated session.
type CanvasAuth struct {
	opts         options.Options
	store        sessionsapi.SessionStore
	client       canvas.Client
	canvasConfig canvas.Config
	gate         *authgate.Gate
	validator    redirect.Validator
	pages        *pagewriter.Writer
	redirectURL  *url.URL
	sessionChain alice.Chain
	metrics      *metrics
}

// New creates a CanvasAuth from validated options. opts is copied and never
// modified afterwards.
func New(opts options.Options, store sessionsapi.SessionStore, client canvas.Client) (*CanvasAuth, error) {
	return newCanvasAuth(opts, store, client, prometheus.DefaultRegisterer)
}

func newCanvasAuth(opts options.Options, store sessionsapi.SessionStore, client canvas.Client, registerer prometheus.Registerer) (*CanvasAuth, error) {
	if store == nil {
		return nil, errors.New("a session store is required")
	}
	if client == nil {
		return nil, errors.New("a canvas client is required")
	}

	matcher, err := pathmatch.NewMatcher(opts.ControlPaths(), opts.Paths.ProtectedPaths, opts.Paths.PublicPaths)
	if err != nil {
		return nil, fmt.Errorf("error building path matcher: %w", err)
	}

	clientSecret, err := opts.Canvas.GetClientSecret()
	if err != nil {
		return nil, err
	}

	redirectURL, err := url.Parse(opts.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redirect url %q: %w", opts.RedirectURL, err)
	}

	pages, err := pagewriter.NewWriter(pagewriter.Opts{
		TemplatesPath: opts.Templates.Path,
		ProxyPrefix:   strings.TrimRight(opts.MountPrefix, "/"),
		LoginPath:     opts.Paths.LoginPath,
		Footer:        opts.Templates.Footer,
		Version:       version.VERSION,
		Debug:         opts.Templates.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("error initialising page writer: %w", err)
	}

	a := &CanvasAuth{
		opts:   opts,
		store:  store,
		client: client,
		canvasConfig: canvas.Config{
			BaseURL:      opts.Canvas.URL,
			ClientID:     opts.Canvas.ClientID,
			ClientSecret: clientSecret,
		},
		gate:        authgate.New(matcher, opts.Authorized),
		validator:   redirect.NewValidator(opts.WhitelistDomains),
		pages:       pages,
		redirectURL: redirectURL,
		metrics:     newMetrics(registerer),
	}
	a.sessionChain = alice.New(a.ensureScope, middleware.NewStoredSessionLoader(store))
	return a, nil
}

// Handler serves the control endpoints and passes every request the gate
// allows on to next.
func (a *CanvasAuth) Handler(next http.Handler) http.Handler {
	r := mux.NewRouter()
	a.Routes(r)
	r.PathPrefix("/").Handler(a.Authenticate(next))
	return a.sessionChain.Then(r)
}

// Routes registers the control endpoints, under the mount prefix, on r.
func (a *CanvasAuth) Routes(r *mux.Router) {
	paths := a.opts.Paths
	routes := []struct {
		path    string
		handler http.HandlerFunc
	}{
		{paths.LoginPath, a.BeginLogin},
		{paths.TokenPath, a.TokenCallback},
		{paths.LogoutPath, a.Logout},
		{paths.LogoutRedirect, a.LoggedOut},
		{paths.UnauthorizedRedirect, a.Unauthorized},
		{paths.FailureRedirect, a.LoginFailure},
	}
	for _, route := range routes {
		r.Path(pathmatch.JoinPath(a.opts.MountPrefix, route.path)).
			Handler(a.sessionChain.Then(onlyGet(route.handler)))
	}
}

// onlyGet answers every method but GET and HEAD with 405. Control paths are
// never passed on to the application.
func onlyGet(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			rw.Header().Set("Allow", "GET, HEAD")
			http.Error(rw, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(rw, req)
	})
}

// LoginURL returns the login path under the request's mount prefix. A non
// empty redirect is passed along as the post login destination.
func (a *CanvasAuth) LoginURL(req *http.Request, redirectTo string) string {
	loginURL := pathmatch.JoinPath(a.mountPrefix(req), a.opts.Paths.LoginPath)
	if redirectTo == "" {
		return loginURL
	}
	return loginURL + "?" + url.Values{redirect.RedirectParam: []string{redirectTo}}.Encode()
}

// ProxyErrorHandler renders the error page for a failed upstream request.
func (a *CanvasAuth) ProxyErrorHandler(rw http.ResponseWriter, req *http.Request, proxyErr error) {
	a.pages.ProxyErrorHandler(rw, req, proxyErr)
}

// RobotsTxt disallows crawling of the gated application.
func (a *CanvasAuth) RobotsTxt(rw http.ResponseWriter, req *http.Request) {
	a.pages.WriteRobotsTxt(rw, req)
}

// ensureScope injects a RequestScope unless an outer handler already has.
func (a *CanvasAuth) ensureScope(next http.Handler) http.Handler {
	withScope := middleware.NewScope(a.opts.ReverseProxy, requestutil.XRequestID, a.opts.MountPrefix)(next)
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if middlewareapi.GetRequestScope(req) != nil {
			next.ServeHTTP(rw, req)
			return
		}
		withScope.ServeHTTP(rw, req)
	})
}

func (a *CanvasAuth) mountPrefix(req *http.Request) string {
	if middlewareapi.GetRequestScope(req) == nil {
		return strings.TrimRight(a.opts.MountPrefix, "/")
	}
	return requestutil.GetMountPrefix(req)
}

// session returns the session loaded into the request scope. The session
// chain guarantees both exist.
func (a *CanvasAuth) session(req *http.Request) *sessionsapi.SessionState {
	scope := middlewareapi.GetRequestScope(req)
	if scope.Session == nil {
		scope.Session = &sessionsapi.SessionState{}
	}
	return scope.Session
}

// director resolves post login redirects for the request's mount prefix.
func (a *CanvasAuth) director(prefix string) redirect.AppDirector {
	return redirect.NewAppDirector(redirect.AppDirectorOpts{
		ControlPaths: []string{
			pathmatch.JoinPath(prefix, a.opts.Paths.LoginPath),
			pathmatch.JoinPath(prefix, a.opts.Paths.TokenPath),
			pathmatch.JoinPath(prefix, a.opts.Paths.LogoutPath),
		},
		Fallback:  oauthstate.DefaultRedirect(prefix),
		Validator: a.validator,
	})
}

// getOAuthRedirectURI returns the URL Canvas sends the browser back to with
// the authorization code.
func (a *CanvasAuth) getOAuthRedirectURI(req *http.Request, prefix string) string {
	// if `a.redirectURL` already has a host, return it
	if a.redirectURL.Host != "" {
		return a.redirectURL.String()
	}

	// Otherwise figure out the scheme + host from the request
	rd := *a.redirectURL
	rd.Host = requestutil.GetRequestHost(req)
	rd.Scheme = requestutil.GetRequestProto(req)
	if rd.Path == "" {
		rd.Path = pathmatch.JoinPath(prefix, a.opts.Paths.TokenPath)
	}
	return rd.String()
}

func (a *CanvasAuth) errorPage(rw http.ResponseWriter, req *http.Request, code int, appError string) {
	requestID := ""
	if scope := middlewareapi.GetRequestScope(req); scope != nil {
		requestID = scope.RequestID
	}
	a.pages.WriteErrorPage(rw, pagewriter.ErrorPageOpts{
		Status:      code,
		RedirectURL: oauthstate.DefaultRedirect(a.mountPrefix(req)),
		RequestID:   requestID,
		AppError:    appError,
	})
}

// prepareNoCache prepares headers for preventing browser caching.
func prepareNoCache(rw http.ResponseWriter) {
	for k, v := range noCacheHeaders {
		rw.Header().Set(k, v)
	}
}

// isAjax checks if a request is an ajax request
func isAjax(req *http.Request) bool {
	acceptValues := req.Header.Values("Accept")
	// Iterate over multiple Accept headers, i.e.
	// Accept: application/json
	// Accept: text/plain
	for _, mimeTypes := range acceptValues {
		// Iterate over multiple mimetypes in a single header, i.e.
		// Accept: application/json, text/plain, */*
		for _, mimeType := range strings.Split(mimeTypes, ",") {
			if strings.TrimSpace(mimeType) == applicationJSON {
				return true
			}
		}
	}
	return false
}

// errorJSON returns the error code with an application/json mime type
func errorJSON(rw http.ResponseWriter, code int) {
	rw.Header().Set("Content-Type", applicationJSON)
	rw.WriteHeader(code)
}
