package options

import (
	"github.com/spf13/pflag"
)

// Server holds the listener configuration of the standalone proxy.
type Server struct {
	HTTPAddress     string   `flag:"http-address" cfg:"http_address"`
	HTTPSAddress    string   `flag:"https-address" cfg:"https_address"`
	TLSCertFile     string   `flag:"tls-cert-file" cfg:"tls_cert_file"`
	TLSKeyFile      string   `flag:"tls-key-file" cfg:"tls_key_file"`
	TLSMinVersion   string   `flag:"tls-min-version" cfg:"tls_min_version"`
	TLSCipherSuites []string `flag:"tls-cipher-suite" cfg:"tls_cipher_suites"`
	MetricsAddress  string   `flag:"metrics-address" cfg:"metrics_address"`
	ForceHTTPS      bool     `flag:"force-https" cfg:"force_https"`

	PingPath  string `flag:"ping-path" cfg:"ping_path"`
	ReadyPath string `flag:"ready-path" cfg:"ready_path"`
}

func serverDefaults() Server {
	return Server{
		HTTPAddress:     "127.0.0.1:4180",
		HTTPSAddress:    ":443",
		TLSCipherSuites: []string{},
		PingPath:        "/ping",
		ReadyPath:       "/ready",
	}
}

func serverFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("server", pflag.ExitOnError)

	flagSet.String("http-address", "127.0.0.1:4180", "<addr>:<port> to listen on for HTTP clients")
	flagSet.String("https-address", ":443", "<addr>:<port> to listen on for HTTPS clients")
	flagSet.String("tls-cert-file", "", "path to certificate file")
	flagSet.String("tls-key-file", "", "path to private key file")
	flagSet.String("tls-min-version", "", "minimal TLS version for HTTPS clients (either \"TLS1.2\" or \"TLS1.3\")")
	flagSet.StringSlice("tls-cipher-suite", []string{}, "restricts TLS cipher suites to those listed (e.g. TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256) (may be given multiple times)")
	flagSet.String("metrics-address", "", "the address /metrics will be served on (e.g. \":9100\")")
	flagSet.Bool("force-https", false, "force HTTPS redirect for HTTP requests")
	flagSet.String("ping-path", "/ping", "the ping endpoint that can be used for basic health checks")
	flagSet.String("ready-path", "/ready", "the ready endpoint that can be used for deep health checks")

	return flagSet
}
