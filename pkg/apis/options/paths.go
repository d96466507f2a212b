package options

import (
	"github.com/spf13/pflag"
)

// Paths holds the control endpoints served by the gate and the ordered
// pattern lists used to classify every other path.
//
// Patterns prefixed with `regex:` are regular expressions matched against the
// whole path. Any other pattern is a literal path.
type Paths struct {
	LoginPath            string `flag:"login-path" cfg:"login_path"`
	TokenPath            string `flag:"token-path" cfg:"token_path"`
	LogoutPath           string `flag:"logout-path" cfg:"logout_path"`
	LogoutRedirect       string `flag:"logout-redirect" cfg:"logout_redirect"`
	UnauthorizedRedirect string `flag:"unauthorized-redirect" cfg:"unauthorized_redirect"`
	FailureRedirect      string `flag:"failure-redirect" cfg:"failure_redirect"`

	ProtectedPaths []string `flag:"protected-path" cfg:"protected_paths"`
	PublicPaths    []string `flag:"public-path" cfg:"public_paths"`
	PathRulesFile  string   `flag:"path-rules-file" cfg:"path_rules_file"`
}

// PathRules is the YAML document read from PathRulesFile.
type PathRules struct {
	ProtectedPaths []string `json:"protectedPaths,omitempty"`
	PublicPaths    []string `json:"publicPaths,omitempty"`
}

// MatchEverything protects every path that is not a control endpoint.
const MatchEverything = "regex:.*"

func pathsDefaults() Paths {
	return Paths{
		LoginPath:            "/canvas-auth-login",
		TokenPath:            "/canvas-auth-token",
		LogoutPath:           "/canvas-auth-logout",
		LogoutRedirect:       "/logged-out",
		UnauthorizedRedirect: "/unauthorized",
		FailureRedirect:      "/login-failure",
		ProtectedPaths:       []string{MatchEverything},
		PublicPaths:          []string{},
	}
}

func pathsFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("paths", pflag.ExitOnError)

	flagSet.String("login-path", "/canvas-auth-login", "path that starts the Canvas login flow")
	flagSet.String("token-path", "/canvas-auth-token", "path Canvas redirects back to with the authorization code")
	flagSet.String("logout-path", "/canvas-auth-logout", "path that revokes the Canvas token and clears the session")
	flagSet.String("logout-redirect", "/logged-out", "path redirected to after logout")
	flagSet.String("unauthorized-redirect", "/unauthorized", "path redirected to when an authenticated user is not authorized")
	flagSet.String("failure-redirect", "/login-failure", "path redirected to when a login attempt fails")
	flagSet.StringArray("protected-path", []string{MatchEverything}, "path requiring authentication, literal or `regex:<expr>` (may be given multiple times)")
	flagSet.StringArray("public-path", []string{}, "path exempt from authentication even when protected, literal or `regex:<expr>` (may be given multiple times)")
	flagSet.String("path-rules-file", "", "YAML file with protectedPaths and publicPaths, replacing the flag values")

	return flagSet
}

// Authenticate replaces the protected path patterns. It must be called before
// the options are validated.
func (o *Options) Authenticate(paths ...string) {
	o.Paths.ProtectedPaths = paths
}

// ControlPaths lists the control endpoints relative to the mount prefix.
func (o *Options) ControlPaths() []string {
	return []string{
		o.Paths.LoginPath,
		o.Paths.TokenPath,
		o.Paths.LogoutPath,
		o.Paths.LogoutRedirect,
		o.Paths.UnauthorizedRedirect,
		o.Paths.FailureRedirect,
	}
}

// ApplyPathRules overrides the pattern lists with those set in rules.
func (o *Options) ApplyPathRules(rules *PathRules) {
	if rules == nil {
		return
	}
	if rules.ProtectedPaths != nil {
		o.Paths.ProtectedPaths = rules.ProtectedPaths
	}
	if rules.PublicPaths != nil {
		o.Paths.PublicPaths = rules.PublicPaths
	}
}
