package authgate

import (
	"context"
	"fmt"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
)

// Kind enumerates the possible outcomes of a gate decision.
type Kind int

const (
	// Allow lets the request through to the application.
	Allow Kind = iota
	// RedirectToLogin sends an anonymous request for a protected path to login.
	RedirectToLogin
	// RedirectToUnauthorized rejects a session the authorized predicate refused.
	RedirectToUnauthorized
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToUnauthorized:
		return "redirect-to-unauthorized"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is computed per request and never stored. OriginalPath is only
// set for RedirectToLogin.
type Decision struct {
	Kind         Kind
	OriginalPath string
}

// Request carries what the gate reads from an inbound request.
type Request struct {
	Context context.Context
	// Path is the request path including the mount prefix.
	Path string
	// FullPath is Path plus the query string. It becomes the post login
	// redirect target.
	FullPath    string
	MountPrefix string
	Session     *sessions.SessionState
}

// Gate decides whether requests may proceed.
type Gate struct {
	matcher    *pathmatch.Matcher
	authorized func(context.Context, *sessions.SessionState) bool
}

// New creates a Gate. A nil authorized predicate authorizes every
// authenticated session.
func New(matcher *pathmatch.Matcher, authorized func(context.Context, *sessions.SessionState) bool) *Gate {
	return &Gate{
		matcher:    matcher,
		authorized: authorized,
	}
}

// Decide classifies the request path and checks the session. It has no side
// effects beyond calling the authorized predicate.
func (g *Gate) Decide(req Request) Decision {
	switch g.matcher.Classify(req.Path, req.MountPrefix) {
	case pathmatch.Public, pathmatch.Self:
		return Decision{Kind: Allow}
	}

	if !req.Session.IsAuthenticated() {
		return Decision{Kind: RedirectToLogin, OriginalPath: req.FullPath}
	}

	if g.authorized != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		if !g.authorized(ctx, req.Session) {
			return Decision{Kind: RedirectToUnauthorized}
		}
	}

	return Decision{Kind: Allow}
}
