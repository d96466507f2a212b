package ip

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// supportedHeaders carry the client address in the X-Forwarded-For format.
var supportedHeaders = map[string]struct{}{
	"X-Forwarded-For":          {},
	"X-Real-Ip":                {},
	"X-Proxyuser-Ip":           {},
	"X-Envoy-External-Address": {},
	// Cloudflare
	"Cf-Connecting-Ip": {},
}

// HeaderParser reads the end user address a trusted reverse proxy recorded
// in a request header.
type HeaderParser struct {
	header string
}

// NewHeaderParser returns a parser for headerKey, which must be one of the
// headers that use the X-Forwarded-For format.
func NewHeaderParser(headerKey string) (*HeaderParser, error) {
	headerKey = http.CanonicalHeaderKey(headerKey)
	if _, ok := supportedHeaders[headerKey]; !ok {
		return nil, fmt.Errorf("the http header key (%s) is either invalid or unsupported", headerKey)
	}
	return &HeaderParser{header: headerKey}, nil
}

// RealClientIP returns the first address in the header, or nil when the
// header is absent. Addresses may carry a port: "<ip>:<port>" for v4 and
// "[<ip>]:<port>" for v6.
func (p *HeaderParser) RealClientIP(h http.Header) (net.IP, error) {
	ipStr := h.Get(p.header)
	if ipStr == "" {
		return nil, nil
	}

	// Each proxy appends itself, so the first entry is the client.
	if commaIndex := strings.IndexRune(ipStr, ','); commaIndex != -1 {
		ipStr = ipStr[:commaIndex]
	}
	ipStr = strings.TrimSpace(ipStr)

	if host, _, err := net.SplitHostPort(ipStr); err == nil {
		ipStr = host
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("unable to parse ip (%s) from %s header", ipStr, p.header)
	}
	return ip, nil
}

// ClientString describes the client of req for logging. Without a parser,
// or when the header holds no usable address, it is the connected peer.
func (p *HeaderParser) ClientString(req *http.Request) string {
	if p != nil {
		if realIP, err := p.RealClientIP(req.Header); err == nil && realIP != nil {
			return realIP.String()
		}
	}

	remoteIP, err := remoteIP(req)
	if err != nil {
		return req.RemoteAddr
	}
	return remoteIP.String()
}

func remoteIP(req *http.Request) (net.IP, error) {
	ipStr, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("unable to get ip and port from http.RemoteAddr (%s)", req.RemoteAddr)
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("unable to parse ip (%s)", ipStr)
	}
	return ip, nil
}
