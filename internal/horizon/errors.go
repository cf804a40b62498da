package horizon

import (
	"errors"
	"fmt"

	"github.com/rickgao/horizon-data/internal/resources"
)

// Sentinel errors.
var (
	// ErrInvalidHost indicates the host URL could not be parsed.
	ErrInvalidHost = errors.New("horizon: invalid host URL")

	// ErrStreamClosed indicates Next was called on a closed stream.
	ErrStreamClosed = errors.New("horizon: stream already closed")
)

// statusClass partitions HTTP status codes the way Horizon responses are
// handled: decode the resource, decode the problem payload, or give up.
type statusClass int

const (
	statusSuccess statusClass = iota
	statusClientError
	statusServerError
)

// classifyStatus maps a status code to its handling class. It is a pure
// function of the code alone and is shared by one-shot requests and the
// stream connection check.
func classifyStatus(code int) statusClass {
	switch {
	case code >= 200 && code < 300:
		return statusSuccess
	case code >= 400 && code < 500:
		return statusClientError
	default:
		return statusServerError
	}
}

// TransportError wraps a network or connection failure. For streams it is
// recoverable: the next call to Next attempts a fresh connection.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("horizon: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestError is a 4xx response carrying a decoded problem payload. It is
// a recovered, typed error rather than a transport failure.
type RequestError struct {
	Problem resources.Problem
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("horizon: request failed with status %d: %s", e.Problem.Status, e.Problem.Title)
}

// ServerError is a 5xx or otherwise unexpected status. No body decoding is
// attempted for it.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("horizon: server error: status %d", e.StatusCode)
}

// DecodeError indicates a payload did not match the expected schema,
// pointing at a client/server schema mismatch.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("horizon: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StreamDecodeError indicates malformed SSE framing. The stream drops its
// connection and reconnects on the next call to Next.
type StreamDecodeError struct {
	Err error
}

func (e *StreamDecodeError) Error() string {
	return fmt.Sprintf("horizon: decode event stream: %v", e.Err)
}

func (e *StreamDecodeError) Unwrap() error {
	return e.Err
}
