package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
)

// writeLockExpiration bounds how long a crashed writer can block a session.
const writeLockExpiration = 5 * time.Second

// Manager puts a server side Store behind the session cookie. The cookie
// only carries a ticket naming the stored entry and the key that decrypts it.
type Manager struct {
	Store   Store
	Options *options.Cookie
}

var _ sessions.SessionStore = (*Manager)(nil)

func NewManager(store Store, cookieOpts *options.Cookie) *Manager {
	return &Manager{Store: store, Options: cookieOpts}
}

// Save writes s under the request's ticket, minting one on the first save.
// Concurrent writers to the same ticket fail with sessions.ErrLockNotObtained.
func (m *Manager) Save(rw http.ResponseWriter, req *http.Request, s *sessions.SessionState) error {
	if s.CreatedAt == nil || s.CreatedAt.IsZero() {
		s.CreatedAtNow()
	}

	t, err := m.ticketFor(req)
	if err != nil {
		return err
	}

	ctx := req.Context()
	lock := m.Store.Lock(t.lockKey())
	if err := lock.Obtain(ctx, writeLockExpiration); err != nil {
		return fmt.Errorf("error obtaining session lock: %w", err)
	}
	// An unreleased lock expires by itself.
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()

	save := func(key string, val []byte, exp time.Duration) error {
		return m.Store.Save(ctx, key, val, exp)
	}
	if err := t.saveSession(s, save); err != nil {
		return err
	}
	return t.setCookie(rw, req, s)
}

// ticketFor reuses the ticket the request carries, or mints a fresh one.
func (m *Manager) ticketFor(req *http.Request) (*ticket, error) {
	if t, err := decodeTicketFromRequest(req, m.Options); err == nil {
		return t, nil
	}
	t, err := newTicket(m.Options)
	if err != nil {
		return nil, fmt.Errorf("error creating a session ticket: %v", err)
	}
	return t, nil
}

func (m *Manager) Load(req *http.Request) (*sessions.SessionState, error) {
	t, err := decodeTicketFromRequest(req, m.Options)
	if err != nil {
		return nil, err
	}
	return t.loadSession(func(key string) ([]byte, error) {
		return m.Store.Load(req.Context(), key)
	})
}

// Clear expires the cookie and deletes the stored entry. A request without
// a cookie is not an error; one whose ticket cannot be read still gets the
// cookie expired.
func (m *Manager) Clear(rw http.ResponseWriter, req *http.Request) error {
	t, err := decodeTicketFromRequest(req, m.Options)
	if err != nil {
		(&ticket{options: m.Options}).clearCookie(rw, req)
		if errors.Is(err, http.ErrNoCookie) {
			return nil
		}
		return fmt.Errorf("error decoding ticket to clear session: %v", err)
	}

	t.clearCookie(rw, req)
	return t.clearSession(func(key string) error {
		return m.Store.Clear(req.Context(), key)
	})
}

func (m *Manager) VerifyConnection(ctx context.Context) error {
	return m.Store.VerifyConnection(ctx)
}
