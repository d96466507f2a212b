package encryption

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Nonce generates a random n-byte slice
func Nonce(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// NonceString returns a URL safe encoding of a random n-byte nonce.
func NonceString(length int) (string, error) {
	b, err := Nonce(length)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// EqualTokens compares two opaque tokens in constant time.
func EqualTokens(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
