package validation

import (
	"fmt"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/ip"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

// validateReverseProxy checks the real client IP header and, when running
// behind a reverse proxy, makes the logger report the address it recorded.
func validateReverseProxy(o *options.Options) []string {
	if !o.ReverseProxy {
		return []string{}
	}

	parser, err := ip.NewHeaderParser(o.RealClientIPHeader)
	if err != nil {
		return []string{fmt.Sprintf("real_client_ip_header (%s) not accepted parameter value: %v", o.RealClientIPHeader, err)}
	}

	logger.SetGetClientFunc(func(r *http.Request) string {
		return parser.ClientString(r)
	})
	return []string{}
}
