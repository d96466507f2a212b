package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Instrumentation suite", func() {
	type requestTableInput struct {
		requestString   string
		handler         http.Handler
		expectedStatus  int
		expectedMetrics string
	}

	DescribeTable("when serving a request",
		func(in *requestTableInput) {
			registry := prometheus.NewRegistry()
			req := httptest.NewRequest("", in.requestString, nil)
			rw := httptest.NewRecorder()

			handler := NewRequestMetrics(registry)(in.handler)
			handler.ServeHTTP(rw, req)

			Expect(rw.Code).To(Equal(in.expectedStatus))
			Expect(testutil.GatherAndCompare(registry, strings.NewReader(in.expectedMetrics), "canvas_auth_requests_total")).To(Succeed())
		},
		Entry("successfully", &requestTableInput{
			requestString:  "http://example.com/courses",
			handler:        testHandler(),
			expectedStatus: 200,
			expectedMetrics: `
# HELP canvas_auth_requests_total Total number of requests by HTTP status code.
# TYPE canvas_auth_requests_total counter
canvas_auth_requests_total{code="200"} 1
`,
		}),
		Entry("with not found", &requestTableInput{
			requestString:  "http://example.com/",
			handler:        http.NotFoundHandler(),
			expectedStatus: 404,
			expectedMetrics: `
# HELP canvas_auth_requests_total Total number of requests by HTTP status code.
# TYPE canvas_auth_requests_total counter
canvas_auth_requests_total{code="404"} 1
`,
		}),
	)

	It("keeps counting into the same collectors when rebuilt", func() {
		registry := prometheus.NewRegistry()
		for i := 0; i < 2; i++ {
			handler := NewRequestMetrics(registry)(testHandler())
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		}
		Expect(testutil.GatherAndCount(registry, "canvas_auth_requests_total")).To(Equal(1))
		Expect(testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP canvas_auth_requests_total Total number of requests by HTTP status code.
# TYPE canvas_auth_requests_total counter
canvas_auth_requests_total{code="200"} 2
`), "canvas_auth_requests_total")).To(Succeed())
	})

	It("records latency by method", func() {
		registry := prometheus.NewRegistry()
		NewRequestMetrics(registry)(testHandler()).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		Expect(testutil.GatherAndCount(registry, "canvas_auth_response_duration_seconds")).To(Equal(1))
	})

	It("serves the registry", func() {
		registry := prometheus.NewRegistry()
		counter := RegisterCollector(registry, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "canvas_auth_test_total",
			Help: "test",
		}))
		counter.Inc()

		rw := httptest.NewRecorder()
		NewMetricsHandler(registry, registry).ServeHTTP(rw, httptest.NewRequest("GET", "/metrics", nil))

		Expect(rw.Code).To(Equal(http.StatusOK))
		Expect(rw.Body.String()).To(ContainSubstring("canvas_auth_test_total 1"))
	})
})
