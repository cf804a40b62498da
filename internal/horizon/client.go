package horizon

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/horizon-data/internal/version"
)

// Client holds the shared HTTP transport and host for all Horizon calls.
// It is immutable after construction and safe for concurrent use; requests
// and streams hold no per-call state on it.
type Client struct {
	host          *url.URL
	httpClient    *http.Client
	logger        *slog.Logger
	clientName    string
	clientVersion string

	// timeout applies to one-shot requests only. Streams are long-lived
	// and are bounded by their context instead.
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a Horizon client for the given host URL.
func NewClient(host string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidHost
	}

	c := &Client{
		host:          u,
		httpClient:    http.DefaultClient,
		logger:        slog.Default(),
		clientName:    version.ClientName,
		clientVersion: version.Version,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// WithTimeout sets a per-request deadline for one-shot requests.
// Streams are unaffected.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClientName overrides the X-Client-Name header value.
func WithClientName(name string) ClientOption {
	return func(c *Client) {
		c.clientName = name
	}
}

// Host returns the base host URL.
func (c *Client) Host() *url.URL {
	return c.host
}

// setHeaders attaches the identification headers carried by every
// outgoing request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Client-Name", c.clientName)
	req.Header.Set("X-Client-Version", c.clientVersion)
}
