package util

import (
	"net/http"
	"strings"

	middlewareapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/middleware"
)

const (
	XForwardedProto = "X-Forwarded-Proto"
	XForwardedHost  = "X-Forwarded-Host"
	XForwardedURI   = "X-Forwarded-Uri"
	XRequestID      = "X-Request-Id"
)

// forwarded prefers the named X-Forwarded header over own, but only for
// requests that came through a trusted reverse proxy.
func forwarded(req *http.Request, header, own string) string {
	if v := req.Header.Get(header); v != "" && IsProxied(req) {
		return v
	}
	return own
}

// GetRequestProto is the scheme the client used. Server side requests carry
// no URL scheme, so their TLS state decides.
func GetRequestProto(req *http.Request) string {
	own := req.URL.Scheme
	if own == "" {
		own = "http"
		if req.TLS != nil {
			own = "https"
		}
	}
	return forwarded(req, XForwardedProto, own)
}

// GetRequestHost is the host the client asked for.
func GetRequestHost(req *http.Request) string {
	return forwarded(req, XForwardedHost, req.Host)
}

// GetRequestURI is the path and query the client asked for.
func GetRequestURI(req *http.Request) string {
	return forwarded(req, XForwardedURI, req.URL.RequestURI())
}

// GetMountPrefix is the prefix the gate is mounted under, without a
// trailing slash.
func GetMountPrefix(req *http.Request) string {
	if scope := middlewareapi.GetRequestScope(req); scope != nil {
		return strings.TrimRight(scope.MountPrefix, "/")
	}
	return ""
}

// IsProxied reports whether the request scope trusts forwarding headers.
func IsProxied(req *http.Request) bool {
	scope := middlewareapi.GetRequestScope(req)
	return scope != nil && scope.ReverseProxy
}
