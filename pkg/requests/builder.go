package requests

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

var traceLogger = logger.Verbose(logger.ProviderTrace)

// Builder describes one outbound call to Canvas. Do sends it at most once;
// later calls return the same Result.
type Builder struct {
	ctx      context.Context
	client   *http.Client
	method   string
	endpoint string
	body     io.Reader
	header   http.Header
	result   *Result
}

// New starts a GET request for endpoint.
func New(endpoint string) *Builder {
	return &Builder{
		ctx:      context.Background(),
		endpoint: endpoint,
		method:   http.MethodGet,
		header:   http.Header{},
	}
}

func (b *Builder) WithContext(ctx context.Context) *Builder {
	b.ctx = ctx
	return b
}

// WithClient overrides the client from NewHTTPClient.
func (b *Builder) WithClient(client *http.Client) *Builder {
	b.client = client
	return b
}

func (b *Builder) WithMethod(method string) *Builder {
	b.method = method
	return b
}

func (b *Builder) WithBody(body io.Reader) *Builder {
	b.body = body
	return b
}

func (b *Builder) SetHeader(key, value string) *Builder {
	b.header.Set(key, value)
	return b
}

func (b *Builder) Do() *Result {
	if b.result == nil {
		b.result = b.send()
	}
	return b.result
}

func (b *Builder) send() *Result {
	client := b.client
	if client == nil {
		var err error
		if client, err = NewHTTPClient(); err != nil {
			return &Result{err: fmt.Errorf("error creating http client: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(b.ctx, b.method, b.endpoint, b.body)
	if err != nil {
		return &Result{err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header = b.header

	traceLogger.Infof("%s %s", b.method, req.URL.Redacted())
	resp, err := client.Do(req)
	if err != nil {
		return &Result{err: fmt.Errorf("error performing request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{err: fmt.Errorf("error reading response body: %w", err)}
	}
	traceLogger.Infof("%d %s %s", resp.StatusCode, b.method, req.URL.Redacted())
	return &Result{status: resp.StatusCode, body: body}
}
