package upstream

import (
	"net/http"
	"net/http/httptest"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("File upstream", func() {
	DescribeTable("serves the directory",
		func(path string, code int, body string) {
			scope := &middlewareapi.RequestScope{}
			req := middlewareapi.AddRequestScope(httptest.NewRequest(http.MethodGet, path, nil), scope)
			rw := httptest.NewRecorder()

			newFileServer("file://"+filesDir, filesDir).ServeHTTP(rw, req)

			Expect(rw.Code).To(Equal(code))
			Expect(rw.Body.String()).To(Equal(body))
			Expect(scope.Upstream).To(Equal("file://" + filesDir))
		},
		Entry("a top level file", "/foo", http.StatusOK, "foo"),
		Entry("another top level file", "/bar", http.StatusOK, "bar"),
		Entry("a file in a subdirectory", "/subdir/baz", http.StatusOK, "baz"),
		Entry("a missing file", "/baz", http.StatusNotFound, "404 page not found\n"),
	)

	It("serves without a request scope", func() {
		rw := httptest.NewRecorder()
		newFileServer("static", filesDir).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/foo", nil))
		Expect(rw.Body.String()).To(Equal("foo"))
	})
})
