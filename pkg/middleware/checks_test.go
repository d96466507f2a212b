package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeVerifiable struct {
	err   error
	calls int
}

func (v *fakeVerifiable) VerifyConnection(_ context.Context) error {
	v.calls++
	return v.err
}

var _ = Describe("Checks", func() {
	serve := func(handler http.Handler, target, userAgent string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if userAgent != "" {
			req.Header.Set("User-Agent", userAgent)
		}
		rw := httptest.NewRecorder()
		handler.ServeHTTP(rw, req)
		return rw
	}

	DescribeTable("NewHealthCheck",
		func(target, userAgent string, expectedStatus int, expectedBody string) {
			handler := NewHealthCheck([]string{"/ping", ""}, []string{"ELB-HealthChecker/2.0", ""})(http.NotFoundHandler())
			rw := serve(handler, target, userAgent)
			Expect(rw.Code).To(Equal(expectedStatus))
			Expect(rw.Body.String()).To(Equal(expectedBody))
		},
		Entry("answers the ping path", "http://example.com/ping", "", http.StatusOK, "OK"),
		Entry("answers a health checking user agent", "http://example.com/courses", "ELB-HealthChecker/2.0", http.StatusOK, "OK"),
		Entry("passes other paths on", "http://example.com/courses", "Mozilla/5.0", http.StatusNotFound, "404 page not found\n"),
		Entry("ignores empty configured values", "http://example.com/courses", "", http.StatusNotFound, "404 page not found\n"),
		Entry("matches the escaped path exactly", "http://example.com/ping/", "", http.StatusNotFound, "404 page not found\n"),
	)

	Context("NewReadynessCheck", func() {
		It("answers OK when the store is reachable", func() {
			store := &fakeVerifiable{}
			rw := serve(NewReadynessCheck("/ready", store)(http.NotFoundHandler()), "http://example.com/ready", "")
			Expect(rw.Code).To(Equal(http.StatusOK))
			Expect(rw.Body.String()).To(Equal("OK"))
			Expect(store.calls).To(Equal(1))
		})

		It("names the error when the store cannot be reached", func() {
			store := &fakeVerifiable{err: errors.New("connection refused")}
			rw := serve(NewReadynessCheck("/ready", store)(http.NotFoundHandler()), "http://example.com/ready", "")
			Expect(rw.Code).To(Equal(http.StatusInternalServerError))
			Expect(rw.Body.String()).To(Equal("error: connection refused"))
		})

		It("does not touch the store for other paths", func() {
			store := &fakeVerifiable{}
			rw := serve(NewReadynessCheck("/ready", store)(http.NotFoundHandler()), "http://example.com/courses", "")
			Expect(rw.Code).To(Equal(http.StatusNotFound))
			Expect(store.calls).To(BeZero())
		})

		It("is disabled without a path", func() {
			store := &fakeVerifiable{}
			rw := serve(NewReadynessCheck("", store)(http.NotFoundHandler()), "http://example.com/", "")
			Expect(rw.Code).To(Equal(http.StatusNotFound))
			Expect(store.calls).To(BeZero())
		})
	})
})
