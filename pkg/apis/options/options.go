package options

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/canvas"
	"github.com/spf13/pflag"
)

// AuthorizedFunc decides whether an authenticated session may reach a
// protected path. A nil AuthorizedFunc authorizes everyone.
type AuthorizedFunc func(ctx context.Context, session *sessions.SessionState) bool

// OnAuthenticatedFunc is called once after a successful code exchange.
// Its outcome never changes the response.
type OnAuthenticatedFunc func(ctx context.Context, resp *canvas.TokenResponse)

// Options holds Configuration Options that can be set by Command Line Flag,
// Environment Variable or Config File.
//
// Options must not be modified once they have been validated.
type Options struct {
	MountPrefix        string `flag:"mount-prefix" cfg:"mount_prefix"`
	ReverseProxy       bool   `flag:"reverse-proxy" cfg:"reverse_proxy"`
	RealClientIPHeader string `flag:"real-client-ip-header" cfg:"real_client_ip_header"`
	RedirectURL        string `flag:"redirect-url" cfg:"redirect_url"`
	// WhitelistDomains are the absolute redirect domains accepted after login.
	WhitelistDomains []string `flag:"whitelist-domain" cfg:"whitelist_domains"`

	Canvas    Canvas          `cfg:",squash"`
	Paths     Paths           `cfg:",squash"`
	Server    Server          `cfg:",squash"`
	Upstream  UpstreamOptions `cfg:",squash"`
	Cookie    Cookie          `cfg:",squash"`
	Session   SessionOptions  `cfg:",squash"`
	Logging   Logging         `cfg:",squash"`
	Templates Templates       `cfg:",squash"`

	// Authorized and OnAuthenticated are set by embedding applications.
	Authorized      AuthorizedFunc      `cfg:",internal"`
	OnAuthenticated OnAuthenticatedFunc `cfg:",internal"`
}

// Canvas holds the OAuth2 client registration with the Canvas instance.
type Canvas struct {
	URL              string        `flag:"canvas-url" cfg:"canvas_url"`
	ClientID         string        `flag:"client-id" cfg:"client_id"`
	ClientSecret     string        `flag:"client-secret" cfg:"client_secret"`
	ClientSecretFile string        `flag:"client-secret-file" cfg:"client_secret_file"`
	ExchangeTimeout  time.Duration `flag:"exchange-timeout" cfg:"exchange_timeout"`
}

// NewOptions constructs a new Options with defaulted values
func NewOptions() *Options {
	return &Options{
		RealClientIPHeader: "X-Real-IP",
		WhitelistDomains:   []string{},
		Canvas:             canvasDefaults(),
		Paths:              pathsDefaults(),
		Server:             serverDefaults(),
		Upstream:           upstreamDefaults(),
		Cookie:             cookieDefaults(),
		Session:            sessionOptionsDefaults(),
		Logging:            loggingDefaults(),
		Templates:          templatesDefaults(),
	}
}

// GetClientSecret returns the client secret, reading ClientSecretFile when no
// secret is set inline.
func (c Canvas) GetClientSecret() (string, error) {
	if c.ClientSecret != "" || c.ClientSecretFile == "" {
		return c.ClientSecret, nil
	}

	fileClientSecret, err := os.ReadFile(c.ClientSecretFile)
	if err != nil {
		return "", fmt.Errorf("could not read client secret file %s: %w", c.ClientSecretFile, err)
	}
	return strings.TrimSpace(string(fileClientSecret)), nil
}

func canvasDefaults() Canvas {
	return Canvas{
		ExchangeTimeout: 10 * time.Second,
	}
}

// NewFlagSet creates a new FlagSet with all of the flags required by Options
func NewFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("canvas-auth-proxy", pflag.ExitOnError)

	flagSet.String("mount-prefix", "", "the path prefix the application is mounted under (eg /myapp)")
	flagSet.Bool("reverse-proxy", false, "are we running behind a reverse proxy, trust X-Forwarded-* headers")
	flagSet.String("real-client-ip-header", "X-Real-IP", "Header used to determine the real IP of the client for logging (one of: X-Forwarded-For, X-Real-IP, X-ProxyUser-IP, X-Envoy-External-Address, or CF-Connecting-IP)")
	flagSet.String("redirect-url", "", "the OAuth Redirect URL. ie: \"https://internalapp.yourcompany.com/canvas-auth-token\"")
	flagSet.StringSlice("whitelist-domain", []string{}, "allowed domains for redirection after authentication. Prefix domain with a . or a *. to allow subdomains (eg .example.com, *.example.com)")

	flagSet.String("canvas-url", "", "the base URL of the Canvas instance (eg https://canvas.instructure.com)")
	flagSet.String("client-id", "", "the Canvas developer key client ID")
	flagSet.String("client-secret", "", "the Canvas developer key client secret")
	flagSet.String("client-secret-file", "", "the file with the client secret")
	flagSet.Duration("exchange-timeout", 10*time.Second, "bound on each token exchange or revocation call to Canvas")

	flagSet.AddFlagSet(pathsFlagSet())
	flagSet.AddFlagSet(serverFlagSet())
	flagSet.AddFlagSet(upstreamFlagSet())
	flagSet.AddFlagSet(cookieFlagSet())
	flagSet.AddFlagSet(sessionFlagSet())
	flagSet.AddFlagSet(loggingFlagSet())
	flagSet.AddFlagSet(templatesFlagSet())

	return flagSet
}
