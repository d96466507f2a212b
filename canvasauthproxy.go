package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	sessionsapi "github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/canvas"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/canvasauth"
	proxyhttp "github.com/canvas-auth/canvas-auth-proxy/pkg/http"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/middleware"
	requestutil "github.com/canvas-auth/canvas-auth-proxy/pkg/requests/util"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/sessions"
	"github.com/canvas-auth/canvas-auth-proxy/pkg/upstream"
)

const robotsPath = "/robots.txt"

// CanvasAuthProxy is the standalone server: it gates every request on a
// Canvas login and proxies the allowed ones to the upstream.
type CanvasAuthProxy struct {
	handler http.Handler
	server  *proxyhttp.Server
}

// NewCanvasAuthProxy creates a CanvasAuthProxy from validated options. The
// authorized users file, if any, is watched until done is closed.
func NewCanvasAuthProxy(opts *options.Options, done <-chan bool) (*CanvasAuthProxy, error) {
	authorized, err := newAuthorized(opts.Upstream.AuthorizedUsersFile, done)
	if err != nil {
		return nil, err
	}

	clientSecret, err := opts.Canvas.GetClientSecret()
	if err != nil {
		return nil, err
	}
	client, err := canvas.NewClient(canvas.Config{
		BaseURL:      opts.Canvas.URL,
		ClientID:     opts.Canvas.ClientID,
		ClientSecret: clientSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error initialising canvas client: %v", err)
	}

	p, err := newCanvasAuthProxy(*opts, client, authorized)
	if err != nil {
		return nil, err
	}
	if err := p.setupServer(opts); err != nil {
		return nil, fmt.Errorf("error setting up server: %v", err)
	}
	return p, nil
}

// newCanvasAuthProxy builds the handler chain without binding any listener.
func newCanvasAuthProxy(opts options.Options, client canvas.Client, authorized options.AuthorizedFunc) (*CanvasAuthProxy, error) {
	if authorized != nil {
		opts.Authorized = authorized
	}

	sessionStore, err := sessions.NewSessionStore(&opts.Session, &opts.Cookie)
	if err != nil {
		return nil, fmt.Errorf("error initialising session store: %v", err)
	}

	canvasAuth, err := canvasauth.New(opts, sessionStore, client)
	if err != nil {
		return nil, fmt.Errorf("error initialising canvas auth: %v", err)
	}

	upstreamProxy, err := upstream.NewProxy(opts.Upstream, canvasAuth.ProxyErrorHandler)
	if err != nil {
		return nil, fmt.Errorf("error initialising upstream proxy: %v", err)
	}

	preAuthChain, err := buildPreAuthChain(opts, sessionStore)
	if err != nil {
		return nil, fmt.Errorf("could not build pre-auth chain: %v", err)
	}

	r := mux.NewRouter()
	r.Path(robotsPath).HandlerFunc(canvasAuth.RobotsTxt)
	r.PathPrefix("/").Handler(canvasAuth.Handler(upstreamProxy))

	logger.Printf("Canvas Auth Proxy configured for %s client ID: %s", opts.Canvas.URL, opts.Canvas.ClientID)
	logger.Printf("Proxying %s under mount prefix %q", opts.Upstream.Upstream, opts.MountPrefix)

	return &CanvasAuthProxy{
		handler: preAuthChain.Then(r),
	}, nil
}

func (p *CanvasAuthProxy) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	p.handler.ServeHTTP(rw, req)
}

// Start serves until SIGINT or SIGTERM.
func (p *CanvasAuthProxy) Start() error {
	if p.server == nil {
		// We have to call setupServer before Start is called.
		// If this doesn't happen it's a programming error.
		panic("server has not been initialized")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return p.server.Start(ctx)
}

func (p *CanvasAuthProxy) setupServer(opts *options.Options) error {
	serverOpts := proxyhttp.Opts{
		Handler:        p,
		HTTPAddress:    opts.Server.HTTPAddress,
		MetricsHandler: middleware.NewMetricsHandlerWithDefaultRegistry(),
		MetricsAddress: opts.Server.MetricsAddress,
	}
	if opts.Server.TLSCertFile != "" {
		serverOpts.HTTPSAddress = opts.Server.HTTPSAddress
		serverOpts.TLS = &proxyhttp.TLS{
			CertFile:     opts.Server.TLSCertFile,
			KeyFile:      opts.Server.TLSKeyFile,
			MinVersion:   opts.Server.TLSMinVersion,
			CipherSuites: opts.Server.TLSCipherSuites,
		}
	}

	server, err := proxyhttp.NewServer(serverOpts)
	if err != nil {
		return err
	}
	p.server = server
	return nil
}

// buildPreAuthChain constructs a chain that should process every request before
// the gate. It sets up the request scope, HTTPS redirects, health checks,
// logging and metrics.
func buildPreAuthChain(opts options.Options, sessionStore sessionsapi.SessionStore) (alice.Chain, error) {
	chain := alice.New(middleware.NewScope(opts.ReverseProxy, requestutil.XRequestID, opts.MountPrefix))

	if opts.Server.ForceHTTPS {
		_, httpsPort, err := net.SplitHostPort(opts.Server.HTTPSAddress)
		if err != nil {
			return alice.Chain{}, fmt.Errorf("invalid HTTPS address %q: %v", opts.Server.HTTPSAddress, err)
		}
		chain = chain.Append(middleware.NewRedirectToHTTPS(httpsPort))
	}

	healthCheckPaths := []string{opts.Server.PingPath}

	// To silence logging/metrics of health checks, register the health check handler before
	// the logging handler
	if opts.Logging.SilencePing {
		chain = chain.Append(
			middleware.NewHealthCheck(healthCheckPaths, nil),
			middleware.NewReadynessCheck(opts.Server.ReadyPath, sessionStore),
			middleware.NewRequestLogger(),
			middleware.NewRequestMetricsWithDefaultRegistry(),
		)
	} else {
		chain = chain.Append(
			middleware.NewRequestLogger(),
			middleware.NewRequestMetricsWithDefaultRegistry(),
			middleware.NewHealthCheck(healthCheckPaths, nil),
			middleware.NewReadynessCheck(opts.Server.ReadyPath, sessionStore),
		)
	}

	return chain, nil
}
