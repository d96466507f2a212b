package requests

import (
	"context"
	"net/http"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/version"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	var b *Builder

	BeforeEach(func() {
		b = New(echoServer.URL + "/json/path")
	})

	send := func() echoed {
		var got echoed
		Expect(b.Do().UnmarshalInto(&got)).To(Succeed())
		return got
	}

	It("sends a GET with the proxy's User-Agent", func() {
		got := send()
		Expect(got.Method).To(Equal(http.MethodGet))
		Expect(got.RequestURI).To(Equal("/json/path"))
		Expect(got.Body).To(BeEmpty())
		Expect(got.Header.Get("User-Agent")).To(Equal("canvas-auth-proxy/" + version.VERSION))
	})

	It("sends a body with the method", func() {
		const form = "code=goodcode&client_id=123"
		b = New(echoServer.URL+"/json/token").
			WithMethod(http.MethodPost).
			WithBody(strings.NewReader(form)).
			SetHeader("Content-Type", "application/x-www-form-urlencoded")

		e := send()
		Expect(e.Method).To(Equal(http.MethodPost))
		Expect(e.Body).To(Equal(form))
		Expect(e.Header.Get("Content-Type")).To(Equal("application/x-www-form-urlencoded"))
	})

	It("sends a bearer token on a DELETE", func() {
		b = b.WithMethod(http.MethodDelete).SetHeader("Authorization", "Bearer tok")

		e := send()
		Expect(e.Method).To(Equal(http.MethodDelete))
		Expect(e.Header.Get("Authorization")).To(Equal("Bearer tok"))
	})

	It("keeps a caller supplied User-Agent", func() {
		b = b.SetHeader("User-Agent", "test-agent")
		Expect(send().Header.Values("User-Agent")).To(ConsistOf("test-agent"))
	})

	It("sends at most once", func() {
		first := b.Do()
		Expect(first.Error()).ToNot(HaveOccurred())

		b.WithMethod(http.MethodPost)
		Expect(b.Do()).To(BeIdenticalTo(first))
		Expect(send().Method).To(Equal(http.MethodGet))
	})

	It("uses the given client", func() {
		used := false
		b = b.WithClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			used = true
			return http.DefaultTransport.RoundTrip(req)
		})})
		send()
		Expect(used).To(BeTrue())
	})

	It("reports a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(b.WithContext(ctx).Do().Error()).To(MatchError(ContainSubstring("context canceled")))
	})

	It("reports a request that cannot be built", func() {
		result := b.WithMethod("INVALID-\t-METHOD").Do()
		Expect(result.Error()).To(MatchError(ContainSubstring("error creating request")))
		Expect(result.StatusCode()).To(BeZero())
	})

	Context("UnmarshalJSON", func() {
		It("parses the body", func() {
			json, err := b.Do().UnmarshalJSON()
			Expect(err).ToNot(HaveOccurred())
			Expect(json.Get("Method").MustString()).To(Equal("GET"))
			Expect(json.Get("RequestURI").MustString()).To(Equal("/json/path"))
		})

		It("reads an empty body as an empty object", func() {
			json, err := New(echoServer.URL + "/empty/path").Do().UnmarshalJSON()
			Expect(err).ToNot(HaveOccurred())
			Expect(json.MustMap()).To(BeEmpty())
		})

		It("refuses a non 2xx answer", func() {
			result := New(echoServer.URL + "/not-found").Do()
			Expect(result.StatusCode()).To(Equal(http.StatusNotFound))
			_, err := result.UnmarshalJSON()
			Expect(err).To(MatchError(ContainSubstring("unexpected status \"404\": 404 page not found")))
		})

		It("reports a body that is not JSON", func() {
			_, err := New(echoServer.URL + "/string/path").Do().UnmarshalJSON()
			Expect(err).To(MatchError(ContainSubstring("invalid character 'O' looking for beginning of value")))
		})
	})
})

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
