package validation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	cookieSecret = "secretthirtytwobytes+abcdefghijk"
	canvasURL    = "https://canvas.example.com"
	clientID     = "10000000000001"
	clientSecret = "xyzzyplugh"
)

func testOptions() *options.Options {
	o := options.NewOptions()
	o.Canvas.URL = canvasURL
	o.Canvas.ClientID = clientID
	o.Canvas.ClientSecret = clientSecret
	o.Cookie.Secret = cookieSecret
	o.Upstream.Upstream = "http://127.0.0.1:8080/"
	return o
}

// invalid renders msgs the way Validate reports them.
func invalid(msgs ...string) string {
	if len(msgs) == 1 {
		return "invalid configuration: " + msgs[0]
	}
	return "invalid configuration: [" + strings.Join(msgs, ", ") + "]"
}

var _ = Describe("Validate", func() {
	It("lists every missing setting of empty options", func() {
		Expect(Validate(options.NewOptions())).To(MatchError(invalid(
			"missing setting: canvas-url",
			"missing setting: client-id",
			"missing setting: client-secret or client-secret-file",
			"missing setting: cookie-secret",
			"missing setting: upstream",
		)))
	})

	It("reads the client secret from a file", func() {
		secretFile := filepath.Join(GinkgoT().TempDir(), "client-secret")
		Expect(os.WriteFile(secretFile, []byte("testcase\n"), 0600)).To(Succeed())

		o := testOptions()
		o.Canvas.ClientSecret = ""
		o.Canvas.ClientSecretFile = secretFile
		Expect(Validate(o)).To(Succeed())
		Expect(o.Canvas.GetClientSecret()).To(Equal("testcase"))
	})

	It("reports a client secret file it cannot read", func() {
		o := testOptions()
		o.Canvas.ClientSecret = ""
		o.Canvas.ClientSecretFile = "/nonexistent/client-secret"
		Expect(Validate(o)).To(MatchError(invalid("could not read client secret file: /nonexistent/client-secret")))

		_, err := o.Canvas.GetClientSecret()
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("accepted options",
		func(mutate func(*options.Options)) {
			o := testOptions()
			mutate(o)
			Expect(Validate(o)).To(Succeed())
		},
		Entry("defaults", func(*options.Options) {}),
		Entry("plain http canvas on localhost", func(o *options.Options) { o.Canvas.URL = "http://localhost:3000" }),
		Entry("32 byte url-safe base64 secret", func(o *options.Options) { o.Cookie.Secret = "yHBw2lh2Cvo6aI_jn_qMTr-pRAjtq0nzVgDJNb36jgQ=" }),
		Entry("32 byte secret without padding", func(o *options.Options) { o.Cookie.Secret = "yHBw2lh2Cvo6aI_jn_qMTr-pRAjtq0nzVgDJNb36jgQ" }),
		Entry("24 byte secret", func(o *options.Options) { o.Cookie.Secret = "Kp33Gj-GQmYtz4zZUyUDdqQKx5_Hgkv3" }),
		Entry("16 byte secret", func(o *options.Options) { o.Cookie.Secret = "LFEqZYvYUwKwzn0tEuTpLA==" }),
		Entry("file upstream", func(o *options.Options) { o.Upstream.Upstream = "file:///var/www/static" }),
		Entry("mixed path rules", func(o *options.Options) {
			o.Paths.ProtectedPaths = []string{"regex:/api/.*", "/admin"}
			o.Paths.PublicPaths = []string{"/api/health"}
		}),
		Entry("mount prefix", func(o *options.Options) { o.MountPrefix = "/myapp" }),
		Entry("redirect url", func(o *options.Options) { o.RedirectURL = "https://myhost.com/canvas-auth-token" }),
		Entry("client IP header behind a proxy", func(o *options.Options) {
			o.ReverseProxy = true
			o.RealClientIPHeader = "X-Forwarded-For"
		}),
		Entry("unsupported client IP header without a proxy", func(o *options.Options) { o.RealClientIPHeader = "Forwarded" }),
	)

	DescribeTable("rejected options",
		func(mutate func(*options.Options), matcher OmegaMatcher) {
			o := testOptions()
			mutate(o)
			Expect(Validate(o)).To(MatchError(matcher))
		},
		Entry("canvas url without a scheme",
			func(o *options.Options) { o.Canvas.URL = "canvas.example.com" },
			Equal(invalid("invalid canvas-url \"canvas.example.com\": an absolute http or https URL is required"))),
		Entry("canvas url with another scheme",
			func(o *options.Options) { o.Canvas.URL = "ftp://canvas.example.com" },
			ContainSubstring("invalid canvas-url")),
		Entry("unix upstream",
			func(o *options.Options) { o.Upstream.Upstream = "unix:///var/run/app.sock" },
			Equal(invalid("upstream \"unix:///var/run/app.sock\" has an unsupported scheme \"unix\": use http, https or file"))),
		Entry("broken protected pattern",
			func(o *options.Options) { o.Paths.ProtectedPaths = []string{"/admin", "regex:/api/(.*"} },
			ContainSubstring("invalid protected path: invalid path pattern \"/api/(.*\"")),
		Entry("broken public pattern",
			func(o *options.Options) { o.Paths.PublicPaths = []string{"regex:[z-a]"} },
			ContainSubstring("invalid public path:")),
		Entry("control path used twice",
			func(o *options.Options) { o.Paths.LogoutRedirect = o.Paths.UnauthorizedRedirect },
			Equal(invalid("control path \"/unauthorized\" is used for more than one endpoint"))),
		Entry("relative control path",
			func(o *options.Options) { o.Paths.LoginPath = "login" },
			Equal(invalid("control path \"login\" must start with /"))),
		Entry("relative mount prefix",
			func(o *options.Options) { o.MountPrefix = "myapp" },
			Equal(invalid("mount-prefix \"myapp\" must start with /"))),
		Entry("unparseable redirect url",
			func(o *options.Options) { o.RedirectURL = "https://myhost.com/%zz" },
			ContainSubstring("error parsing redirect-url")),
		Entry("certificate without a key",
			func(o *options.Options) { o.Server.TLSCertFile = "/nonexistent/tls.crt" },
			ContainSubstring("tls-cert-file and tls-key-file must be set together")),
		Entry("old TLS version",
			func(o *options.Options) { o.Server.TLSMinVersion = "TLS1.0" },
			Equal(invalid("tls-min-version (\"TLS1.0\") must be one of ['TLS1.2', 'TLS1.3']"))),
		Entry("unsupported client IP header behind a proxy",
			func(o *options.Options) {
				o.ReverseProxy = true
				o.RealClientIPHeader = "Forwarded"
			},
			Equal(invalid("real_client_ip_header (Forwarded) not accepted parameter value: the http header key (Forwarded) is either invalid or unsupported"))),
	)
})
