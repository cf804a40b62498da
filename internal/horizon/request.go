package horizon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rickgao/horizon-data/internal/resources"
)

// Request describes a single Horizon endpoint call. Implementations live in
// the requests package; the core depends only on this interface.
type Request interface {
	// ResolveURL builds the target URL relative to the client's host.
	ResolveURL(host *url.URL) (*url.URL, error)

	// IsPost reports whether the request is sent as POST. The body is
	// always empty; query parameters carry all request data.
	IsPost() bool
}

// Execute dispatches a one-shot request and decodes the response into
// Response. Every error is surfaced to the caller; there are no retries.
//
// Status handling: 2xx decodes the success type, 4xx decodes the shared
// problem payload into a *RequestError, anything else is a *ServerError.
func Execute[Response any](ctx context.Context, c *Client, req Request) (*Response, error) {
	u, err := req.ResolveURL(c.host)
	if err != nil {
		return nil, fmt.Errorf("resolve request URL: %w", err)
	}

	method := http.MethodGet
	if req.IsPost() {
		method = http.MethodPost
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch classifyStatus(resp.StatusCode) {
	case statusSuccess:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		var out Response
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return &out, nil

	case statusClientError:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		var problem resources.Problem
		if err := json.Unmarshal(body, &problem); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return nil, &RequestError{Problem: problem}

	default:
		io.Copy(io.Discard, resp.Body)
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
}
