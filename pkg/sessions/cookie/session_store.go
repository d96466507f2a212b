package cookie

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	pkgcookies "github.com/canvas-auth/canvas-auth-proxy/pkg/cookies"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
)

const (
	// maxCookieLength leaves some room under the 4096 bytes browsers keep
	// for a whole Set-Cookie value.
	maxCookieLength = 4000

	cipherPurpose = "canvas-auth session cookie"
)

var _ sessions.SessionStore = &SessionStore{}

// SessionStore keeps the whole session, sealed with AES-GCM and signed, in
// a single client side cookie. A Canvas session is a user id and a token,
// so it never needs to be split across cookies.
type SessionStore struct {
	Cookie       *options.Cookie
	CookieCipher encryption.Cipher
}

// NewCookieSessionStore derives the session cipher from the cookie secret.
func NewCookieSessionStore(_ *options.SessionOptions, cookieOpts *options.Cookie) (sessions.SessionStore, error) {
	key, err := encryption.DeriveKey(encryption.SecretBytes(cookieOpts.Secret), cipherPurpose, 32)
	if err != nil {
		return nil, err
	}
	cipher, err := encryption.NewGCMCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error initialising cipher: %v", err)
	}

	return &SessionStore{Cookie: cookieOpts, CookieCipher: cipher}, nil
}

// Save seals ss into the session cookie.
func (s *SessionStore) Save(rw http.ResponseWriter, req *http.Request, ss *sessions.SessionState) error {
	if ss.CreatedAt == nil || ss.CreatedAt.IsZero() {
		ss.CreatedAtNow()
	}
	value, err := ss.EncodeSessionState(s.CookieCipher, true)
	if err != nil {
		return err
	}

	c, err := pkgcookies.NewBuilder(*s.Cookie).
		WithSignedValue(true).
		WithStart(*ss.CreatedAt).
		MakeCookie(req, string(value))
	if err != nil {
		return err
	}
	if n := len(c.String()); n > maxCookieLength {
		return fmt.Errorf("session cookie is %d bytes, more than the %d a browser keeps", n, maxCookieLength)
	}

	http.SetCookie(rw, c)
	return nil
}

// Load opens the session cookie. A missing cookie is http.ErrNoCookie.
func (s *SessionStore) Load(req *http.Request) (*sessions.SessionState, error) {
	c, err := req.Cookie(s.Cookie.Name)
	if err != nil {
		return nil, err
	}

	value, err := pkgcookies.NewBuilder(*s.Cookie).ValidateCookie(c)
	if err != nil {
		return nil, errors.New("cookie signature not valid")
	}
	return sessions.DecodeSessionState([]byte(value), s.CookieCipher, true)
}

// Clear expires the session cookie if the request carried one.
func (s *SessionStore) Clear(rw http.ResponseWriter, req *http.Request) error {
	if _, err := req.Cookie(s.Cookie.Name); err == nil {
		http.SetCookie(rw, pkgcookies.NewBuilder(*s.Cookie).ClearCookie(req))
	}
	return nil
}

// VerifyConnection has nothing to check for cookies.
func (s *SessionStore) VerifyConnection(_ context.Context) error {
	return nil
}
