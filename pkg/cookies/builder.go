package cookies

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
)

// Builder makes the session cookie and checks it on the way back in. The
// With methods return modified copies.
type Builder struct {
	opts     options.Cookie
	sameSite http.SameSite
	signed   bool
	start    time.Time
}

// NewBuilder takes validated cookie options. An unknown SameSite value
// falls back to the browser default.
func NewBuilder(opts options.Cookie) Builder {
	sameSite, err := ParseSameSite(opts.SameSite)
	if err != nil {
		sameSite = http.SameSiteDefaultMode
	}
	return Builder{opts: opts, sameSite: sameSite}
}

// WithSignedValue makes MakeCookie sign the value with the cookie secret.
func (b Builder) WithSignedValue(signed bool) Builder {
	b.signed = signed
	return b
}

// WithStart pins the time the cookie's expiry and signature count from.
func (b Builder) WithStart(start time.Time) Builder {
	b.start = start
	return b
}

func (b Builder) MakeCookie(req *http.Request, value string) (*http.Cookie, error) {
	issued := b.issued()
	if b.signed {
		signed, err := encryption.SignedValue(b.opts.Secret, b.opts.Name, []byte(value), issued)
		if err != nil {
			return nil, fmt.Errorf("could not sign cookie value: %v", err)
		}
		value = signed
	}

	c := b.base(req, value)
	if b.opts.Expire > 0 {
		c.Expires = issued.Add(b.opts.Expire)
	}
	return c, nil
}

// ClearCookie returns a cookie that makes the browser drop ours.
func (b Builder) ClearCookie(req *http.Request) *http.Cookie {
	c := b.base(req, "")
	c.Expires = b.issued().Add(-time.Hour)
	c.MaxAge = -1
	return c
}

// ValidateCookie checks the signature and age of c and returns the value it
// was made with.
func (b Builder) ValidateCookie(c *http.Cookie) (string, error) {
	val, _, ok := encryption.Validate(c, b.opts.Secret, b.opts.Expire)
	if !ok {
		return "", errors.New("cookie failed validation")
	}
	return string(val), nil
}

func (b Builder) base(req *http.Request, value string) *http.Cookie {
	return &http.Cookie{
		Name:     b.opts.Name,
		Value:    value,
		Path:     b.opts.Path,
		Domain:   GetCookieDomain(req, b.opts.Domain),
		HttpOnly: b.opts.HTTPOnly,
		Secure:   b.opts.Secure,
		SameSite: b.sameSite,
	}
}

func (b Builder) issued() time.Time {
	if b.start.IsZero() {
		return time.Now()
	}
	return b.start
}
