package oauthstate

import (
	"errors"
	"fmt"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
)

// stateLength is the number of random bytes in a state token.
const stateLength = 32

// ErrStateMismatch is matched by every error returned from Verify.
var ErrStateMismatch = errors.New("oauth state mismatch")

// StateMismatchError describes a failed state check. It records which
// values were present, never the values themselves.
type StateMismatchError struct {
	StoredPresent   bool
	ReturnedPresent bool
}

func (e *StateMismatchError) Error() string {
	switch {
	case !e.StoredPresent:
		return "invalid state: no login attempt in progress"
	case !e.ReturnedPresent:
		return "invalid state: callback did not return a state"
	default:
		return "invalid state: returned state does not match"
	}
}

func (e *StateMismatchError) Is(target error) bool {
	return target == ErrStateMismatch
}

// BeginLogin starts a login attempt on session with a fresh random state.
// An empty redirect defaults to the mount prefix, or "/" at the root.
func BeginLogin(session *sessions.SessionState, redirect, mountPrefix string) (state, redirectPath string, err error) {
	state, err = encryption.NonceString(stateLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	redirectPath = redirect
	if redirectPath == "" {
		redirectPath = DefaultRedirect(mountPrefix)
	}

	session.BeginPendingLogin(state, redirectPath)
	return state, redirectPath, nil
}

// Verify compares the state returned by the provider with the one stored at
// login. Empty values never match.
func Verify(returnedState string, session *sessions.SessionState) error {
	stored := ""
	if session != nil {
		stored = session.OAuthState
	}
	if stored == "" || returnedState == "" || !encryption.EqualTokens(stored, returnedState) {
		return &StateMismatchError{
			StoredPresent:   stored != "",
			ReturnedPresent: returnedState != "",
		}
	}
	return nil
}

// DefaultRedirect is where a login returns to when no target is known.
func DefaultRedirect(mountPrefix string) string {
	if mountPrefix == "" {
		return "/"
	}
	return mountPrefix
}
