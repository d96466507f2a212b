package sessions

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/encryption"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// SessionState is the per browser session record. It is in one of three
// phases: anonymous (empty), pending authorization (OAuthState set) or
// authenticated (UserID set).
type SessionState struct {
	CreatedAt *time.Time `msgpack:"ca,omitempty"`

	// Pending login attempt
	OAuthState    string `msgpack:"os,omitempty"`
	OAuthRedirect string `msgpack:"or,omitempty"`

	// Authenticated principal
	UserID      string `msgpack:"u,omitempty"`
	AccessToken string `msgpack:"at,omitempty"`
}

// CreatedAtNow sets a SessionState's CreatedAt to now
func (s *SessionState) CreatedAtNow() {
	now := time.Now()
	s.CreatedAt = &now
}

// Age returns the age of a session
func (s *SessionState) Age() time.Duration {
	if s.CreatedAt != nil && !s.CreatedAt.IsZero() {
		return time.Now().Truncate(time.Second).Sub(*s.CreatedAt)
	}
	return 0
}

// BeginPendingLogin records an in flight login attempt.
func (s *SessionState) BeginPendingLogin(state, redirect string) {
	s.OAuthState = state
	s.OAuthRedirect = redirect
}

// IsPending is true while a login attempt awaits its callback.
func (s *SessionState) IsPending() bool {
	return s.OAuthState != ""
}

// Install overwrites the identity fields and consumes any pending login
// attempt.
func (s *SessionState) Install(userID, accessToken string) {
	s.UserID = userID
	s.AccessToken = accessToken
	s.OAuthState = ""
	s.OAuthRedirect = ""
}

// Clear removes all identity and state fields.
func (s *SessionState) Clear() {
	s.OAuthState = ""
	s.OAuthRedirect = ""
	s.UserID = ""
	s.AccessToken = ""
}

// IsAuthenticated is the single check for whether a session is logged in.
func (s *SessionState) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

// String constructs a summary of the session state. Secrets are never
// printed.
func (s *SessionState) String() string {
	o := fmt.Sprintf("Session{user_id:%s", s.UserID)
	if s.AccessToken != "" {
		o += " token:true"
	}
	if s.OAuthState != "" {
		o += fmt.Sprintf(" pending:true redirect:%s", s.OAuthRedirect)
	}
	if s.CreatedAt != nil && !s.CreatedAt.IsZero() {
		o += fmt.Sprintf(" created:%s", s.CreatedAt)
	}
	return o + "}"
}

// EncodeSessionState returns an encrypted, optionally lz4 compressed,
// msgpack encoded version of the SessionState.
func (s *SessionState) EncodeSessionState(c encryption.Cipher, compress bool) ([]byte, error) {
	packed, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("error marshalling session state to msgpack: %w", err)
	}

	if compress {
		packed, err = lz4Compress(packed)
		if err != nil {
			return nil, err
		}
	}

	return c.Encrypt(packed)
}

// DecodeSessionState decodes a session created by EncodeSessionState.
func DecodeSessionState(data []byte, c encryption.Cipher, compressed bool) (*SessionState, error) {
	packed, err := c.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("error decrypting the session state: %w", err)
	}

	if compressed {
		packed, err = lz4Decompress(packed)
		if err != nil {
			return nil, err
		}
	}

	var ss SessionState
	if err := msgpack.Unmarshal(packed, &ss); err != nil {
		return nil, fmt.Errorf("error unmarshalling data to session state: %w", err)
	}
	return &ss, nil
}

func lz4Compress(payload []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := lz4.NewWriter(buf)
	err := zw.Apply(
		lz4.BlockSizeOption(lz4.Block64Kb),
		lz4.CompressionLevelOption(lz4.Fast),
	)
	if err != nil {
		return nil, fmt.Errorf("error applying lz4 options: %w", err)
	}

	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("error compressing session state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("error closing lz4 writer: %w", err)
	}
	return buf.Bytes(), nil
}

func lz4Decompress(compressed []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(compressed))
	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("error decompressing session state: %w", err)
	}
	return payload, nil
}
