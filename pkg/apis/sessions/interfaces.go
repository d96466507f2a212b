package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// SessionStore is an interface to storing user sessions in the proxy
type SessionStore interface {
	Save(rw http.ResponseWriter, req *http.Request, s *SessionState) error
	Load(req *http.Request) (*SessionState, error)
	Clear(rw http.ResponseWriter, req *http.Request) error
	VerifyConnection(ctx context.Context) error
}

// ErrLockNotObtained is returned when a session is already being written
// by another request.
var ErrLockNotObtained = errors.New("lock: not obtained")

// Lock serializes writes to one stored session.
type Lock interface {
	Obtain(ctx context.Context, expiration time.Duration) error
	Release(ctx context.Context) error
}
