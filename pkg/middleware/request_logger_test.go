package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RequestLogger", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger.SetOutput(buf)
		logger.SetReqTemplate("{{.Client}} {{.User}} {{.RequestMethod}} {{.Upstream}} {{.RequestURI}} {{.StatusCode}} {{.ResponseSize}}")
		DeferCleanup(func() {
			logger.SetOutput(GinkgoWriter)
			logger.SetReqTemplate(logger.DefaultRequestLoggingFormat)
			logger.SetExcludePaths(nil)
		})
	})

	logged := func(target string, session *sessions.SessionState, next http.Handler) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.RemoteAddr = "10.0.0.7"
		req = middlewareapi.AddRequestScope(req, &middlewareapi.RequestScope{Session: session})
		NewRequestLogger()(next).ServeHTTP(httptest.NewRecorder(), req)
		return buf.String()
	}

	It("writes one line per request", func() {
		Expect(logged("/courses/1", nil, testHandler())).To(Equal("10.0.0.7 - GET - \"/courses/1\" 200 4\n"))
	})

	It("names the upstream and keeps the query", func() {
		Expect(logged("/courses/1?page=2", nil, testUpstreamHandler("lms"))).
			To(Equal("10.0.0.7 - GET lms \"/courses/1?page=2\" 200 4\n"))
	})

	It("names the Canvas user of an installed session", func() {
		Expect(logged("/", &sessions.SessionState{UserID: "42", AccessToken: "1~token"}, testHandler())).
			To(HavePrefix("10.0.0.7 42 GET"))
	})

	It("does not name anyone while a login is pending", func() {
		Expect(logged("/", &sessions.SessionState{OAuthState: "state"}, testHandler())).
			To(HavePrefix("10.0.0.7 - GET"))
	})

	It("skips excluded paths only", func() {
		logger.SetExcludePaths([]string{"/ping"})
		Expect(logged("/ping", nil, testHandler())).To(BeEmpty())
		Expect(logged("/pinged", nil, testHandler())).ToNot(BeEmpty())
	})

	It("counts the size of a response written in pieces", func() {
		chunks := http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(http.StatusTeapot)
			_, _ = rw.Write([]byte("short "))
			_, _ = rw.Write([]byte("and stout"))
		})
		Expect(logged("/", nil, chunks)).To(HaveSuffix(" 418 15\n"))
	})
})
