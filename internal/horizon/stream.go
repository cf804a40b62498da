package horizon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rickgao/horizon-data/internal/resources"
	"github.com/rickgao/horizon-data/internal/sse"
)

// Stream is a resumable SSE connection yielding typed items. Across
// connection drops it reconnects carrying the last observed event id in the
// Last-Event-Id header, so the server resumes its event log without
// skipping entries (at-least-once; the server may redeliver the last id).
//
// Next is not safe for concurrent use; drive one call to completion before
// issuing another. Error items do not end the stream; the caller decides
// whether to keep calling Next after one.
//
// Always call Close when done:
//
//	stream := requests.Ledgers{}.Stream(ctx, client)
//	defer stream.Close()
//	for {
//	    ledger, err := stream.Next()
//	    ...
//	}
type Stream[Item any] struct {
	client  *Client
	request Request
	ctx     context.Context
	cancel  context.CancelFunc

	// lastID is the resume cursor: the id of the most recent frame that
	// carried one. Monotonically replaced, never cleared once set.
	lastID string

	// At most one of the pair is live; both nil between connections.
	resp *http.Response
	dec  *sse.Decoder

	closed bool
}

// NewStream creates a stream for req. No connection is made until the
// first call to Next.
func NewStream[Item any](ctx context.Context, c *Client, req Request) *Stream[Item] {
	streamCtx, cancel := context.WithCancel(ctx)
	return &Stream[Item]{
		client:  c,
		request: req,
		ctx:     streamCtx,
		cancel:  cancel,
	}
}

// Next returns the next decoded item, blocking until one arrives.
//
// Clean connection closes reconnect transparently. Failures yield exactly
// one error item each; the stream reconnects on the following call.
func (s *Stream[Item]) Next() (*Item, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}

	for {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		if s.dec == nil {
			if err := s.connect(); err != nil {
				return nil, err
			}
		}

		event, err := s.dec.Next()
		if err != nil {
			s.dropConnection()
			if err == io.EOF {
				// Clean close: reconnect immediately, reusing the
				// current cursor so no events are skipped.
				continue
			}
			if s.ctx.Err() != nil {
				return nil, s.ctx.Err()
			}
			return nil, &StreamDecodeError{Err: err}
		}

		if event.Retry > 0 {
			// Observed but not used to pace reconnection.
			s.client.logger.Debug("stream retry hint", "interval", event.Retry)
			continue
		}

		// The cursor advances on any frame carrying an id, including
		// frames the consumer never sees.
		if event.ID != "" {
			s.lastID = event.ID
		}

		if event.Name != "message" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(event.Data), &item); err != nil {
			// Schema mismatch on one frame; the connection stays up.
			return nil, &DecodeError{Err: err}
		}
		return &item, nil
	}
}

// connect opens a new SSE connection, resuming from the cursor if set.
func (s *Stream[Item]) connect() error {
	u, err := s.request.ResolveURL(s.client.host)
	if err != nil {
		return fmt.Errorf("resolve request URL: %w", err)
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	s.client.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	if s.lastID != "" {
		req.Header.Set("Last-Event-Id", s.lastID)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		if s.ctx.Err() != nil {
			return s.ctx.Err()
		}
		return &TransportError{Err: err}
	}

	switch classifyStatus(resp.StatusCode) {
	case statusSuccess:
		s.resp = resp
		s.dec = sse.NewDecoder(resp.Body)
		return nil

	case statusClientError:
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransportError{Err: err}
		}
		var problem resources.Problem
		if err := json.Unmarshal(body, &problem); err != nil {
			return &DecodeError{Err: err}
		}
		return &RequestError{Problem: problem}

	default:
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return &ServerError{StatusCode: resp.StatusCode}
	}
}

// dropConnection releases the current connection, forcing a reconnect on
// the next call to Next.
func (s *Stream[Item]) dropConnection() {
	if s.resp != nil {
		s.resp.Body.Close()
		s.resp = nil
	}
	s.dec = nil
}

// Close releases the stream and its connection. A closed stream cannot be
// resumed; create a fresh one to start over from the log head.
// Implements io.Closer.
func (s *Stream[Item]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.dropConnection()
	return nil
}

var _ io.Closer = (*Stream[struct{}])(nil)
