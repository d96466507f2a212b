package validation

import (
	"fmt"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/cookies"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
)

// maxCookieNameLength keeps the name well inside the size a browser stores
// for the whole cookie.
const maxCookieNameLength = 256

func validateCookie(o options.Cookie) []string {
	var msgs []string
	if msg := cookieSecretProblem(o.Secret); msg != "" {
		msgs = append(msgs, msg)
	}
	if o.Expire <= 0 {
		msgs = append(msgs, fmt.Sprintf("cookie_expire (%q) must be greater than 0", o.Expire.String()))
	}
	if _, err := cookies.ParseSameSite(o.SameSite); err != nil {
		msgs = append(msgs, fmt.Sprintf("cookie_samesite (%q) must be one of ['', 'lax', 'strict', 'none']", o.SameSite))
	}
	if (&http.Cookie{Name: o.Name}).String() == "" {
		msgs = append(msgs, fmt.Sprintf("invalid cookie name: %q", o.Name))
	}
	if len(o.Name) > maxCookieNameLength {
		msgs = append(msgs, fmt.Sprintf("cookie name should be under %d characters: cookie name is %d characters", maxCookieNameLength, len(o.Name)))
	}
	return msgs
}

// cookieSecretProblem describes why secret cannot key the session cipher,
// or returns "" when it can.
func cookieSecretProblem(secret string) string {
	if secret == "" {
		return "missing setting: cookie-secret"
	}
	n := len(encryption.SecretBytes(secret))
	if n == 16 || n == 24 || n == 32 {
		return ""
	}
	return fmt.Sprintf("cookie_secret must be 16, 24, or 32 bytes to create an AES cipher, but is %d bytes", n)
}
