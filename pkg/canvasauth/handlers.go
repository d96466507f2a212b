package canvasauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	sessionsapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/app/pagewriter"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/canvas"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/oauthstate"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
)

// BeginLogin records a new login attempt on the session and redirects to the
// Canvas authorize endpoint.
func (a *CanvasAuth) BeginLogin(rw http.ResponseWriter, req *http.Request) {
	prepareNoCache(rw)
	prefix := a.mountPrefix(req)
	session := a.session(req)

	redirectTo := a.director(prefix).GetRedirect(req)
	state, _, err := oauthstate.BeginLogin(session, redirectTo, prefix)
	if err != nil {
		logger.Errorf("Error starting login: %v", err)
		a.errorPage(rw, req, http.StatusInternalServerError, err.Error())
		return
	}

	if err := a.store.Save(rw, req, session); err != nil {
		logger.Errorf("Error saving session state for %s: %v", req.RemoteAddr, err)
		a.errorPage(rw, req, http.StatusInternalServerError, err.Error())
		return
	}

	authURL := a.canvasConfig.AuthCodeURL(state, a.getOAuthRedirectURI(req, prefix), req.URL.Query())
	http.Redirect(rw, req, authURL, http.StatusFound)
}

// TokenCallback completes a login attempt by exchanging the authorization
// code Canvas returned.
func (a *CanvasAuth) TokenCallback(rw http.ResponseWriter, req *http.Request) {
	prepareNoCache(rw)
	prefix := a.mountPrefix(req)
	session := a.session(req)
	q := req.URL.Query()

	if err := oauthstate.Verify(q.Get("state"), session); err != nil {
		logger.PrintAuthf("", req, logger.AuthFailure, "Login rejected: %v", err)
		a.metrics.logins.WithLabelValues(loginStateMismatch).Inc()
		a.failLogin(rw, req, session, prefix, err.Error())
		return
	}

	resp, err := a.exchange(req, prefix, q.Get("code"))
	if err != nil {
		logger.PrintAuthf("", req, logger.AuthError, "Error redeeming code during OAuth2 callback: %v", err)
		a.metrics.logins.WithLabelValues(loginExchangeFailure).Inc()
		a.failLogin(rw, req, session, prefix, q.Get(errorParam))
		return
	}

	redirectTo := session.OAuthRedirect
	session.Install(resp.UserID, resp.AccessToken)
	session.CreatedAtNow()
	if err := a.store.Save(rw, req, session); err != nil {
		logger.Errorf("Error saving session state for %s: %v", req.RemoteAddr, err)
		a.errorPage(rw, req, http.StatusInternalServerError, err.Error())
		return
	}

	a.notifyAuthenticated(req.Context(), resp)

	logger.PrintAuthf(resp.UserID, req, logger.AuthSuccess, "Authenticated via Canvas OAuth2: %s", session)
	a.metrics.logins.WithLabelValues(loginSuccess).Inc()
	http.Redirect(rw, req, a.director(prefix).Resolve(redirectTo), http.StatusFound)
}

// exchange redeems code with Canvas. An empty code fails without calling
// Canvas.
func (a *CanvasAuth) exchange(req *http.Request, prefix, code string) (*canvas.TokenResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrExchangeFailure)
	}

	ctx, cancel := a.providerContext(req.Context())
	defer cancel()

	resp, err := a.client.Exchange(ctx, code, a.getOAuthRedirectURI(req, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailure, err)
	}
	if resp == nil || resp.UserID == "" {
		return nil, fmt.Errorf("%w: no user in token response", ErrExchangeFailure)
	}
	return resp, nil
}

// failLogin clears the session and sends the browser to the login failure
// page. A non empty reason is shown on that page.
func (a *CanvasAuth) failLogin(rw http.ResponseWriter, req *http.Request, session *sessionsapi.SessionState, prefix, reason string) {
	session.Clear()
	if err := a.store.Save(rw, req, session); err != nil {
		logger.Errorf("Error saving session state for %s: %v", req.RemoteAddr, err)
	}

	failureURL := pathmatch.JoinPath(prefix, a.opts.Paths.FailureRedirect)
	if reason != "" {
		failureURL += "?" + url.Values{errorParam: []string{reason}}.Encode()
	}
	http.Redirect(rw, req, failureURL, http.StatusFound)
}

// notifyAuthenticated calls the OnAuthenticated callback. Its outcome,
// including a panic, never changes the response.
func (a *CanvasAuth) notifyAuthenticated(ctx context.Context, resp *canvas.TokenResponse) {
	if a.opts.OnAuthenticated == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("OnAuthenticated callback panicked for user %s: %v", resp.UserID, r)
		}
	}()
	a.opts.OnAuthenticated(ctx, resp)
}

// Logout revokes the Canvas token, if any, and removes the session.
func (a *CanvasAuth) Logout(rw http.ResponseWriter, req *http.Request) {
	prepareNoCache(rw)
	prefix := a.mountPrefix(req)
	session := a.session(req)
	userID := session.UserID

	if session.AccessToken != "" {
		if err := a.revoke(req, session.AccessToken); err != nil {
			logger.PrintAuthf(userID, req, logger.AuthError, "Error revoking token on logout: %v", err)
		}
	}

	// The session is gone for this request whatever the store reports.
	session.Clear()
	if err := a.store.Clear(rw, req); err != nil {
		logger.Errorf("Error clearing session for %s: %v", req.RemoteAddr, err)
	}

	logger.PrintAuthf(userID, req, logger.AuthSuccess, "Logged out")
	a.metrics.logouts.Inc()
	http.Redirect(rw, req, pathmatch.JoinPath(prefix, a.opts.Paths.LogoutRedirect), http.StatusFound)
}

func (a *CanvasAuth) revoke(req *http.Request, accessToken string) error {
	ctx, cancel := a.providerContext(req.Context())
	defer cancel()

	resp, err := a.client.Revoke(ctx, accessToken, expireSessions(req))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRevocationFailure, err)
	}
	if resp != nil && resp.ForwardURL != "" {
		logger.Printf("Canvas suggested continuing logout at %s", resp.ForwardURL)
	}
	return nil
}

// providerContext bounds a call to Canvas by the exchange timeout.
func (a *CanvasAuth) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.Canvas.ExchangeTimeout > 0 {
		return context.WithTimeout(ctx, a.opts.Canvas.ExchangeTimeout)
	}
	return context.WithCancel(ctx)
}

// expireSessions reports whether logout should also end the user's Canvas
// web sessions. Any value other than "0" or "false" enables it.
func expireSessions(req *http.Request) bool {
	q := req.URL.Query()
	if !q.Has(expireSessionsParam) {
		return false
	}
	switch q.Get(expireSessionsParam) {
	case "0", "false":
		return false
	default:
		return true
	}
}

// LoggedOut renders the page shown after logout.
func (a *CanvasAuth) LoggedOut(rw http.ResponseWriter, req *http.Request) {
	a.pages.WriteLandingPage(rw, req, pagewriter.LoggedOut())
}

// Unauthorized renders the page shown when the authorized predicate rejects
// a session.
func (a *CanvasAuth) Unauthorized(rw http.ResponseWriter, req *http.Request) {
	a.pages.WriteLandingPage(rw, req, pagewriter.Unauthorized())
}

// LoginFailure renders the page shown when a login attempt fails.
func (a *CanvasAuth) LoginFailure(rw http.ResponseWriter, req *http.Request) {
	a.pages.WriteLandingPage(rw, req, pagewriter.LoginFailure(req.URL.Query().Get(errorParam)))
}
