// Package api is the HTTP client of the analytics and PDF services.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/estatechat/internal/logging"
	"github.com/diogo/estatechat/internal/models"
)

// DefaultTransportTimeout bounds a single HTTP exchange. Turn timeouts are
// applied by the caller through the request context.
const DefaultTransportTimeout = 300 * time.Second

// HTTPDoer is the part of tls_client.HttpClient used by Client
type HTTPDoer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// ClientInterface is the backend surface used by the conversation and export
// layers
type ClientInterface interface {
	Analyze(ctx context.Context, req *Request) (*models.AnalyticsResponse, error)
	RenderPDF(ctx context.Context, payload models.ExportPayload) (io.ReadCloser, error)
	BaseURL() string
	Close()
}

// Client talks to the analytics backend
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	timeout    time.Duration
	headers    map[string]string
	logger     *slog.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the TLS client, mostly for tests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransportTimeout sets the timeout of the underlying TLS client
func WithTransportTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = models.DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	client := &Client{
		baseURL: baseURL,
		timeout: DefaultTransportTimeout,
		headers: models.DefaultHeaders(),
		logger:  logging.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections. Further calls fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

func (c *Client) setHeaders(req *fhttp.Request) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
}
