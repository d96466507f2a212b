package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequestScope", func() {
	It("is nil on a request outside the chain", func() {
		Expect(middleware.GetRequestScope(httptest.NewRequest(http.MethodGet, "/", nil))).To(BeNil())
	})

	It("shares one scope between the handlers of a request", func() {
		scope := &middleware.RequestScope{MountPrefix: "/myapp"}
		req := middleware.AddRequestScope(httptest.NewRequest(http.MethodGet, "/", nil), scope)

		middleware.GetRequestScope(req).Session = &sessions.SessionState{UserID: "123"}

		Expect(scope.Session.UserID).To(Equal("123"))
		Expect(middleware.GetRequestScope(req.Clone(context.Background()))).To(BeNil())
		Expect(middleware.GetRequestScope(req.Clone(req.Context()))).To(BeIdenticalTo(scope))
	})

	It("ignores an unrelated value stored under a look-alike key", func() {
		type otherKey string
		ctx := context.WithValue(context.Background(), otherKey("request-scope"), &middleware.RequestScope{})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		Expect(middleware.GetRequestScope(req)).To(BeNil())
	})
})
