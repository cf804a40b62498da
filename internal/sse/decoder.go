// Package sse provides incremental Server-Sent Events frame decoding.
//
// Frames arrive as newline-delimited field blocks terminated by a blank
// line. Fields handled:
//   - `id:` sets the event id used for stream resumption (Last-Event-Id)
//   - `event:` names the frame; defaults to "message" when absent
//   - `data:` carries the payload; multiple lines are joined with \n
//   - `retry:` is a server reconnection hint in milliseconds
//
// Comment lines (starting with ':') and unknown fields are ignored.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxLineBytes bounds a single field line. Anything larger is treated as a
// framing error rather than buffered indefinitely.
const maxLineBytes = 1 << 20

// Event is one decoded SSE frame.
type Event struct {
	// ID is the server-assigned event id, empty if the frame carried none.
	ID string

	// Name is the event name. Defaults to "message" per the SSE spec.
	Name string

	// Data is the frame payload.
	Data string

	// Retry is the server's suggested reconnection delay. When set, the
	// event is a standalone retry hint and carries no payload.
	Retry time.Duration
}

// Decoder reads SSE frames from an io.Reader.
type Decoder struct {
	reader  *bufio.Reader
	current struct {
		id        string
		eventType string
		dataLines []string
		hasData   bool
	}
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		reader: bufio.NewReader(r),
	}
}

// Next returns the next complete frame.
// Returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (*Event, error) {
	for {
		line, err := d.readLine()
		if err != nil {
			if err == io.EOF {
				// Flush a trailing unterminated frame, if any.
				if event := d.flushEvent(); event != nil {
					return event, nil
				}
			}
			return nil, err
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			// Blank line dispatches the accumulated frame.
			if event := d.flushEvent(); event != nil {
				return event, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			// Comment, typically a keepalive.
			continue
		}

		field, value := splitField(line)
		switch field {
		case "id":
			d.current.id = value
		case "event":
			d.current.eventType = value
		case "data":
			d.current.dataLines = append(d.current.dataLines, value)
			d.current.hasData = true
		case "retry":
			ms, err := strconv.ParseInt(value, 10, 64)
			if err != nil || ms < 0 {
				return nil, fmt.Errorf("sse: invalid retry value %q", value)
			}
			// Retry hints dispatch immediately, independent of the frame
			// being accumulated.
			return &Event{Retry: time.Duration(ms) * time.Millisecond}, nil
		}
		// Unknown fields are ignored.
	}
}

// readLine reads one newline-terminated line, bounding accumulation at
// maxLineBytes so a newline-free body cannot grow memory unboundedly.
func (d *Decoder) readLine() (string, error) {
	var line []byte
	for {
		chunk, err := d.reader.ReadSlice('\n')
		if len(line)+len(chunk) > maxLineBytes {
			return "", fmt.Errorf("sse: field line exceeds %d bytes", maxLineBytes)
		}
		line = append(line, chunk...)
		switch err {
		case nil:
			return string(line), nil
		case bufio.ErrBufferFull:
			// Line continues past the reader's buffer.
		default:
			return string(line), err
		}
	}
}

// splitField separates "field: value", stripping the single optional space
// after the colon.
func splitField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if strings.HasPrefix(value, " ") {
		value = value[1:]
	}
	return field, value
}

// flushEvent returns the accumulated frame if any fields were seen, and
// resets state.
func (d *Decoder) flushEvent() *Event {
	if d.current.id == "" && d.current.eventType == "" && !d.current.hasData {
		return nil
	}

	name := d.current.eventType
	if name == "" {
		name = "message"
	}
	event := &Event{
		ID:   d.current.id,
		Name: name,
		Data: strings.Join(d.current.dataLines, "\n"),
	}

	d.current.id = ""
	d.current.eventType = ""
	d.current.dataLines = nil
	d.current.hasData = false

	return event
}
