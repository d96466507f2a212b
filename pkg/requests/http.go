package requests

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/version"
)

// ProxyEnvironmentVariable overrides the outbound proxy used to reach Canvas.
const ProxyEnvironmentVariable = "CANVAS_AUTH_OUTBOUND_PROXY"

type userAgentTransport struct {
	next http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r2 := req.Clone(req.Context())
	setDefaultUserAgent(r2.Header)
	return t.next.RoundTrip(r2)
}

// DefaultHTTPClient is used by every Builder that is not given a client.
var DefaultHTTPClient = &http.Client{Transport: &userAgentTransport{next: http.DefaultTransport}}

func setDefaultUserAgent(header http.Header) {
	if header != nil && len(header.Values("User-Agent")) == 0 {
		header.Set("User-Agent", "canvas-auth-proxy/"+version.VERSION)
	}
}

// NewHTTPClient returns a client which sets the default User-Agent and
// honours CANVAS_AUTH_OUTBOUND_PROXY when it is set.
func NewHTTPClient() (*http.Client, error) {
	proxy := os.Getenv(ProxyEnvironmentVariable)
	if proxy == "" {
		return DefaultHTTPClient, nil
	}

	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("error while parsing %s url: %w", ProxyEnvironmentVariable, err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	return &http.Client{Transport: &userAgentTransport{next: transport}}, nil
}
