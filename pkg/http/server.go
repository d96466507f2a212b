package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

const (
	readHeaderTimeout = time.Minute
	shutdownTimeout   = 30 * time.Second
)

// Listener names, as reported by Addr.
const (
	HTTP    = "http"
	HTTPS   = "https"
	Metrics = "metrics"
)

// Opts lists the listeners of a Server. An empty address, or "-", disables
// that listener.
type Opts struct {
	// Handler serves the gated application on HTTPAddress and HTTPSAddress.
	Handler      http.Handler
	HTTPAddress  string
	HTTPSAddress string
	// TLS is required when HTTPSAddress is set.
	TLS *TLS

	// MetricsHandler serves MetricsAddress, apart from the application.
	MetricsHandler http.Handler
	MetricsAddress string
}

// TLS holds the certificate and protocol settings of the HTTPS listener.
type TLS struct {
	CertFile string
	KeyFile  string
	// MinVersion is "TLS1.2" or "TLS1.3". Empty means TLS1.2.
	MinVersion   string
	CipherSuites []string
}

// Server serves every configured listener until its context is cancelled.
type Server struct {
	listeners []*boundListener
}

type boundListener struct {
	name     string
	listener net.Listener
	handler  http.Handler
}

// NewServer binds every enabled listener. Nothing is served until Start.
func NewServer(opts Opts) (*Server, error) {
	s := &Server{}

	if err := s.bind(HTTP, opts.HTTPAddress, opts.Handler, nil); err != nil {
		return nil, s.closeAfter(err)
	}

	if enabled(opts.HTTPSAddress) {
		config, err := tlsConfig(opts.TLS)
		if err != nil {
			return nil, s.closeAfter(fmt.Errorf("invalid TLS configuration: %v", err))
		}
		if err := s.bind(HTTPS, opts.HTTPSAddress, opts.Handler, config); err != nil {
			return nil, s.closeAfter(err)
		}
	}

	if err := s.bind(Metrics, opts.MetricsAddress, opts.MetricsHandler, nil); err != nil {
		return nil, s.closeAfter(err)
	}
	return s, nil
}

func enabled(addr string) bool {
	return addr != "" && addr != "-"
}

func (s *Server) bind(name, addr string, handler http.Handler, config *tls.Config) error {
	if !enabled(addr) {
		return nil
	}
	if handler == nil {
		return fmt.Errorf("no handler for the %s listener", name)
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%s listen (%s) failed: %w", name, addr, err)
	}
	if config != nil {
		l = tls.NewListener(l, config)
	}

	s.listeners = append(s.listeners, &boundListener{name: name, listener: l, handler: handler})
	return nil
}

// closeAfter releases the listeners bound before err.
func (s *Server) closeAfter(err error) error {
	for _, bl := range s.listeners {
		bl.listener.Close()
	}
	s.listeners = nil
	return err
}

// Addr returns the bound address of the named listener, or nil when it is
// disabled.
func (s *Server) Addr(name string) net.Addr {
	for _, bl := range s.listeners {
		if bl.name == name {
			return bl.listener.Addr()
		}
	}
	return nil
}

// Start blocks until ctx is cancelled, then shuts every listener down
// gracefully. The first serve or shutdown error is returned.
func (s *Server) Start(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)

	for _, bl := range s.listeners {
		bl := bl
		srv := &http.Server{Handler: bl.handler, ReadHeaderTimeout: readHeaderTimeout}

		g.Go(func() error {
			logger.Printf("%s: listening on %s", bl.name, bl.listener.Addr())
			if err := srv.Serve(bl.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error serving %s: %v", bl.name, err)
			}
			return nil
		})

		g.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("error shutting down %s: %v", bl.name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
