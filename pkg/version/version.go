package version

// VERSION contains version information, set at build time with
// -ldflags "-X github.com/canvas-auth/canvas-auth-proxy/pkg/version.VERSION=..."
var VERSION = "undefined"
