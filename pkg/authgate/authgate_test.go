package authgate

import (
	"context"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/pathmatch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gate", func() {
	var (
		matcher       *pathmatch.Matcher
		authenticated *sessions.SessionState
		calls         int
	)

	BeforeEach(func() {
		var err error
		matcher, err = pathmatch.NewMatcher(
			[]string{"/canvas-auth-login", "/canvas-auth-token"},
			[]string{"regex:.*"},
			[]string{"/public"},
		)
		Expect(err).ToNot(HaveOccurred())

		authenticated = &sessions.SessionState{}
		authenticated.Install("42", "tok")
		calls = 0
	})

	denyAll := func(context.Context, *sessions.SessionState) bool {
		calls++
		return false
	}

	type decideInput struct {
		path       string
		fullPath   string
		prefix     string
		session    func() *sessions.SessionState
		authorized bool
		deny       bool
		expected   Decision
	}

	DescribeTable("Decide",
		func(in decideInput) {
			var predicate func(context.Context, *sessions.SessionState) bool
			if in.deny {
				predicate = denyAll
			}
			var s *sessions.SessionState
			if in.session != nil {
				s = in.session()
			}
			g := New(matcher, predicate)
			Expect(g.Decide(Request{
				Path:        in.path,
				FullPath:    in.fullPath,
				MountPrefix: in.prefix,
				Session:     s,
			})).To(Equal(in.expected))
		},
		Entry("public paths are allowed without a session", decideInput{
			path:     "/public",
			expected: Decision{Kind: Allow},
		}),
		Entry("control paths are allowed without a session", decideInput{
			path:     "/app/canvas-auth-login",
			prefix:   "/app",
			expected: Decision{Kind: Allow},
		}),
		Entry("protected paths redirect anonymous sessions with the full path", decideInput{
			path:     "/app/courses",
			fullPath: "/app/courses?page=2",
			prefix:   "/app",
			session:  func() *sessions.SessionState { return &sessions.SessionState{} },
			expected: Decision{Kind: RedirectToLogin, OriginalPath: "/app/courses?page=2"},
		}),
		Entry("a missing session is anonymous", decideInput{
			path:     "/courses",
			fullPath: "/courses",
			expected: Decision{Kind: RedirectToLogin, OriginalPath: "/courses"},
		}),
		Entry("a pending login is still anonymous", decideInput{
			path:     "/courses",
			fullPath: "/courses",
			session: func() *sessions.SessionState {
				s := &sessions.SessionState{}
				s.BeginPendingLogin("state", "/courses")
				return s
			},
			expected: Decision{Kind: RedirectToLogin, OriginalPath: "/courses"},
		}),
		Entry("authenticated sessions are allowed without a predicate", decideInput{
			path:     "/courses",
			session:  func() *sessions.SessionState { return authenticated },
			expected: Decision{Kind: Allow},
		}),
		Entry("a denying predicate redirects to unauthorized", decideInput{
			path:     "/courses",
			session:  func() *sessions.SessionState { return authenticated },
			deny:     true,
			expected: Decision{Kind: RedirectToUnauthorized},
		}),
	)

	It("only consults the predicate for authenticated protected requests", func() {
		g := New(matcher, denyAll)
		g.Decide(Request{Path: "/public", Session: authenticated})
		g.Decide(Request{Path: "/courses", Session: &sessions.SessionState{}})
		Expect(calls).To(Equal(0))

		g.Decide(Request{Path: "/courses", Session: authenticated, Context: context.Background()})
		Expect(calls).To(Equal(1))
	})

	It("passes the session to the predicate", func() {
		var seen *sessions.SessionState
		g := New(matcher, func(_ context.Context, s *sessions.SessionState) bool {
			seen = s
			return s.UserID == "42"
		})
		Expect(g.Decide(Request{Path: "/courses", Session: authenticated}).Kind).To(Equal(Allow))
		Expect(seen).To(BeIdenticalTo(authenticated))
	})

	It("does not mutate the session", func() {
		s := &sessions.SessionState{}
		s.BeginPendingLogin("state", "/x")
		before := *s
		New(matcher, nil).Decide(Request{Path: "/courses", Session: s})
		Expect(*s).To(Equal(before))
	})

	It("names kinds", func() {
		Expect(RedirectToLogin.String()).To(Equal("redirect-to-login"))
	})
})
