package cookies

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	requestutil "github.com/canvas-auth/canvas-auth-proxy/pkg/requests/util"
)

// GetCookieDomain returns the configured domain when it matches the request
// host (or X-Forwarded-Host when proxied), and "" otherwise.
func GetCookieDomain(req *http.Request, domain string) string {
	if domain == "" {
		return ""
	}
	host := requestutil.GetRequestHost(req)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if !strings.HasSuffix(host, domain) {
		logger.Errorf("Warning: request host is %q but using configured cookie domain of %q", host, domain)
	}
	return domain
}

// ParseSameSite parses a valid http.SameSite value from a user supplied string
// for use of making cookies.
func ParseSameSite(v string) (http.SameSite, error) {
	switch v {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	case "":
		return http.SameSiteDefaultMode, nil
	default:
		return 0, fmt.Errorf("invalid value for SameSite: %s", v)
	}
}
