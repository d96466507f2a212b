package http

import (
	"crypto/tls"
	"errors"
	"fmt"
)

func tlsConfig(opts *TLS) (*tls.Config, error) {
	if opts == nil || opts.CertFile == "" || opts.KeyFile == "" {
		return nil, errors.New("a certificate and key file are required")
	}

	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not load certificate: %v", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{"http/1.1"},
	}

	switch opts.MinVersion {
	case "", "TLS1.2":
	case "TLS1.3":
		config.MinVersion = tls.VersionTLS13
	default:
		return nil, fmt.Errorf("unknown TLS min version %q", opts.MinVersion)
	}

	if len(opts.CipherSuites) > 0 {
		if config.CipherSuites, err = cipherSuiteIDs(opts.CipherSuites); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// cipherSuiteIDs maps Go cipher suite names to their ids. Insecure suites
// are rejected.
func cipherSuiteIDs(names []string) ([]uint16, error) {
	known := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		known[suite.Name] = suite.ID
	}

	ids := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown or insecure TLS cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
