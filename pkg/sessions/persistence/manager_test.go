package persistence

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Manager", func() {
	var (
		store      *fakeStore
		manager    *Manager
		cookieOpts *options.Cookie
	)

	BeforeEach(func() {
		store = newFakeStore()
		cookieOpts = &options.Cookie{
			Name:     "_canvas_auth",
			Secret:   "0123456789abcdefghijklmnopqrstuv",
			Path:     "/",
			Expire:   time.Hour,
			Secure:   true,
			HTTPOnly: true,
		}
		manager = NewManager(store, cookieOpts)
	})

	saveAndReplay := func(req *http.Request, s *sessions.SessionState) *http.Request {
		rw := httptest.NewRecorder()
		Expect(manager.Save(rw, req, s)).To(Succeed())

		next := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rw.Result().Cookies() {
			next.AddCookie(c)
		}
		return next
	}

	It("round trips a session through the store", func() {
		s := &sessions.SessionState{}
		s.Install("42", "1~token")

		req := saveAndReplay(httptest.NewRequest(http.MethodGet, "/", nil), s)

		loaded, err := manager.Load(req)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded.UserID).To(Equal("42"))
		Expect(loaded.AccessToken).To(Equal("1~token"))
		Expect(store.data).To(HaveLen(1))
		for key := range store.data {
			Expect(strings.HasPrefix(key, "_canvas_auth-")).To(BeTrue())
		}
	})

	It("reuses the ticket of an existing session", func() {
		s := &sessions.SessionState{}
		s.BeginPendingLogin("state", "/courses")
		req := saveAndReplay(httptest.NewRequest(http.MethodGet, "/", nil), s)

		s.Install("42", "1~token")
		saveAndReplay(req, s)

		Expect(store.data).To(HaveLen(1))
	})

	It("does not write while another request holds the session lock", func() {
		store.lockErr = sessions.ErrLockNotObtained

		err := manager.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), &sessions.SessionState{})
		Expect(err).To(MatchError(sessions.ErrLockNotObtained))
		Expect(store.data).To(BeEmpty())
	})

	It("releases the lock after saving", func() {
		Expect(manager.Save(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), &sessions.SessionState{})).To(Succeed())
		Expect(store.locked).To(BeEmpty())
	})

	It("fails to load without a cookie", func() {
		_, err := manager.Load(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(err).To(MatchError(http.ErrNoCookie))
	})

	It("rejects a ticket signed with another secret", func() {
		req := saveAndReplay(httptest.NewRequest(http.MethodGet, "/", nil), &sessions.SessionState{})

		other := NewManager(store, &options.Cookie{Name: "_canvas_auth", Secret: "vutsrqponmlkjihgfedcba9876543210", Expire: time.Hour})
		_, err := other.Load(req)
		Expect(err).To(MatchError(ContainSubstring("session ticket cookie failed validation")))
	})

	It("clears the stored session and the cookie", func() {
		s := &sessions.SessionState{}
		s.Install("42", "1~token")
		req := saveAndReplay(httptest.NewRequest(http.MethodGet, "/", nil), s)

		rw := httptest.NewRecorder()
		Expect(manager.Clear(rw, req)).To(Succeed())
		Expect(store.data).To(BeEmpty())

		cleared := rw.Result().Cookies()
		Expect(cleared).To(HaveLen(1))
		Expect(cleared[0].Value).To(BeEmpty())
		Expect(cleared[0].MaxAge).To(BeNumerically("<", 0))
	})

	It("clears the cookie without error when there is no session", func() {
		rw := httptest.NewRecorder()
		Expect(manager.Clear(rw, httptest.NewRequest(http.MethodGet, "/", nil))).To(Succeed())
		Expect(rw.Result().Cookies()).To(HaveLen(1))
	})

	It("expires the cookie and reports a ticket it cannot read", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "_canvas_auth", Value: "garbage"})

		rw := httptest.NewRecorder()
		err := manager.Clear(rw, req)
		Expect(err).To(MatchError(ContainSubstring("error decoding ticket to clear session")))
		Expect(rw.Result().Cookies()).To(HaveLen(1))
		Expect(rw.Result().Cookies()[0].MaxAge).To(BeNumerically("<", 0))
	})

	It("starts a new ticket when the cookie cannot be read", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "_canvas_auth", Value: "garbage"})

		saveAndReplay(req, &sessions.SessionState{UserID: "42"})
		Expect(store.data).To(HaveLen(1))
	})
})
