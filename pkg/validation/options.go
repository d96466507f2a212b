package validation

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	k8serrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
)

// Validate checks that required options are set and validates those that they
// are of the correct format. Every problem found is reported in the returned
// aggregate error.
func Validate(o *options.Options) error {
	msgs := validateCanvas(o.Canvas)
	msgs = append(msgs, validateCookie(o.Cookie)...)
	msgs = append(msgs, validateSessionStore(o)...)
	msgs = append(msgs, validatePaths(o)...)
	msgs = append(msgs, validateUpstream(o.Upstream)...)
	msgs = append(msgs, validateServer(o.Server)...)
	msgs = append(msgs, validateReverseProxy(o)...)

	if o.RedirectURL != "" {
		if _, err := url.Parse(o.RedirectURL); err != nil {
			msgs = append(msgs, fmt.Sprintf("error parsing redirect-url=%q %s", o.RedirectURL, err))
		}
	}

	msgs = configureLogger(o.Logging, o.Server.PingPath, msgs)

	return newAggregate(msgs)
}

// newAggregate collects msgs into a single error. It returns nil when there
// is nothing to report.
func newAggregate(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(msgs))
	for _, msg := range msgs {
		errs = append(errs, errors.New(msg))
	}
	return fmt.Errorf("invalid configuration: %w", k8serrors.NewAggregate(errs))
}

func validateCanvas(o options.Canvas) []string {
	msgs := []string{}

	if o.URL == "" {
		msgs = append(msgs, "missing setting: canvas-url")
	} else if u, err := url.Parse(o.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		msgs = append(msgs, fmt.Sprintf("invalid canvas-url %q: an absolute http or https URL is required", o.URL))
	}

	if o.ClientID == "" {
		msgs = append(msgs, "missing setting: client-id")
	}
	if o.ClientSecret == "" && o.ClientSecretFile == "" {
		msgs = append(msgs, "missing setting: client-secret or client-secret-file")
	}
	if o.ClientSecret == "" && o.ClientSecretFile != "" {
		if _, err := os.ReadFile(o.ClientSecretFile); err != nil {
			msgs = append(msgs, "could not read client secret file: "+o.ClientSecretFile)
		}
	}
	if o.ExchangeTimeout < 0 {
		msgs = append(msgs, fmt.Sprintf("exchange-timeout (%q) must not be negative", o.ExchangeTimeout))
	}
	return msgs
}

func validateServer(o options.Server) []string {
	msgs := []string{}

	if o.TLSCertFile != "" || o.TLSKeyFile != "" {
		if o.TLSCertFile == "" || o.TLSKeyFile == "" {
			msgs = append(msgs, "tls-cert-file and tls-key-file must be set together")
		}
		for _, f := range []string{o.TLSCertFile, o.TLSKeyFile} {
			if f == "" {
				continue
			}
			if _, err := os.Stat(f); err != nil {
				msgs = append(msgs, fmt.Sprintf("unable to read TLS file: %v", err))
			}
		}
	}

	switch o.TLSMinVersion {
	case "", "TLS1.2", "TLS1.3":
	default:
		msgs = append(msgs, fmt.Sprintf("tls-min-version (%q) must be one of ['TLS1.2', 'TLS1.3']", o.TLSMinVersion))
	}

	for _, p := range []string{o.PingPath, o.ReadyPath} {
		if p != "" && !strings.HasPrefix(p, "/") {
			msgs = append(msgs, fmt.Sprintf("health check path %q must start with /", p))
		}
	}
	return msgs
}
