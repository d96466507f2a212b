package redirect

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/util"
)

// slashPair matches two slashes of either direction separated only by
// whitespace or dots, which browsers read as the start of another host.
var slashPair = regexp.MustCompile(`[/\\](?:[\s\v]*|\.{1,2})[/\\]`)

// Validator decides whether a redirect taken from a request may be followed.
type Validator interface {
	IsValidRedirect(redirect string) bool
}

// NewValidator accepts local paths and absolute URLs on allowedDomains.
func NewValidator(allowedDomains []string) Validator {
	return domainValidator(allowedDomains)
}

type domainValidator []string

func (v domainValidator) IsValidRedirect(redirect string) bool {
	if strings.HasPrefix(redirect, "/") {
		if strings.HasPrefix(redirect, "//") || slashPair.MatchString(redirect) {
			logger.Printf("Rejecting invalid redirect %q: path leads off site", redirect)
			return false
		}
		return true
	}

	if !strings.HasPrefix(redirect, "http://") && !strings.HasPrefix(redirect, "https://") {
		if redirect != "" {
			logger.Printf("Rejecting invalid redirect %q: not an absolute or relative URL", redirect)
		}
		return false
	}
	u, err := url.Parse(redirect)
	if err != nil {
		logger.Printf("Rejecting invalid redirect %q: %v", redirect, err)
		return false
	}
	if !util.IsEndpointAllowed(u, v) {
		logger.Printf("Rejecting invalid redirect %q: domain / port not in whitelist", redirect)
		return false
	}
	return true
}
