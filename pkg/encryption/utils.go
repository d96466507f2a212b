package encryption

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// SecretBytes decodes a url-safe base64 secret, padded or not. A secret that
// does not decode to an AES key size is used as is, so a 32 character
// secret keeps working even when it happens to be valid base64.
func SecretBytes(secret string) []byte {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return []byte(secret)
	}
	switch len(b) {
	case 16, 24, 32:
		return b
	}
	return []byte(secret)
}

// DeriveKey expands secret into a length byte key bound to purpose with
// HKDF-SHA256. Different purposes yield independent keys from one secret.
func DeriveKey(secret []byte, purpose string, length int) ([]byte, error) {
	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", purpose, err)
	}
	return key, nil
}

// A signed cookie value is "value|issued|mac": the base64 value, the unix
// second it was issued and an HMAC-SHA256 over cookie name, value and issue
// time. The value itself is encrypted by the session stores.

// maxClockSkew is how far in the future an issue time may lie.
const maxClockSkew = 5 * time.Minute

// Validate checks the MAC of a signed cookie and that it was issued within
// expiration of now. Browsers do not send the expiry back, so the issue
// time is all there is to go on.
func Validate(cookie *http.Cookie, seed string, expiration time.Duration) (value []byte, issued time.Time, ok bool) {
	parts := strings.Split(cookie.Value, "|")
	if len(parts) != 3 {
		return nil, time.Time{}, false
	}
	mac, err := base64.URLEncoding.DecodeString(parts[2])
	if err != nil || !hmac.Equal(mac, cookieMAC(seed, cookie.Name, parts[0], parts[1])) {
		return nil, time.Time{}, false
	}

	secs, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, time.Time{}, false
	}
	issued = time.Unix(secs, 0)
	now := time.Now()
	if !issued.After(now.Add(-expiration)) || !issued.Before(now.Add(maxClockSkew)) {
		return nil, time.Time{}, false
	}

	value, err = base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, time.Time{}, false
	}
	return value, issued, true
}

// SignedValue encodes value for the cookie called key so that Validate
// accepts it until the cookie expires.
func SignedValue(seed string, key string, value []byte, now time.Time) (string, error) {
	encoded := base64.URLEncoding.EncodeToString(value)
	issued := strconv.FormatInt(now.Unix(), 10)
	mac := base64.URLEncoding.EncodeToString(cookieMAC(seed, key, encoded, issued))
	return encoded + "|" + issued + "|" + mac, nil
}

func cookieMAC(seed string, fields ...string) []byte {
	h := hmac.New(sha256.New, []byte(seed))
	for _, f := range fields {
		h.Write([]byte(f))
	}
	return h.Sum(nil)
}
