package sse

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestDecoder_SingleFrame(t *testing.T) {
	d := NewDecoder(strings.NewReader("id: 1\nevent: message\ndata: {\"x\":1}\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.ID != "1" {
		t.Errorf("ID = %q, want %q", ev.ID, "1")
	}
	if ev.Name != "message" {
		t.Errorf("Name = %q, want %q", ev.Name, "message")
	}
	if ev.Data != `{"x":1}` {
		t.Errorf("Data = %q, want %q", ev.Data, `{"x":1}`)
	}

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next after last frame = %v, want io.EOF", err)
	}
}

func TestDecoder_DefaultName(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: hello\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Name != "message" {
		t.Errorf("Name = %q, want default %q", ev.Name, "message")
	}
	if ev.Data != "hello" {
		t.Errorf("Data = %q, want %q", ev.Data, "hello")
	}
}

func TestDecoder_MultilineData(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: line1\ndata: line2\ndata:line3\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Data != "line1\nline2\nline3" {
		t.Errorf("Data = %q, want %q", ev.Data, "line1\nline2\nline3")
	}
}

func TestDecoder_MultipleFrames(t *testing.T) {
	d := NewDecoder(strings.NewReader("id: 1\ndata: a\n\nid: 2\ndata: b\n\n"))

	first, err := d.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}
	if first.ID != "1" || first.Data != "a" {
		t.Errorf("first frame = %+v, want id 1 data a", first)
	}

	second, err := d.Next()
	if err != nil {
		t.Fatalf("second Next failed: %v", err)
	}
	if second.ID != "2" || second.Data != "b" {
		t.Errorf("second frame = %+v, want id 2 data b", second)
	}
}

func TestDecoder_CRLF(t *testing.T) {
	d := NewDecoder(strings.NewReader("id: 7\r\ndata: x\r\n\r\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.ID != "7" {
		t.Errorf("ID = %q, want %q", ev.ID, "7")
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want %q", ev.Data, "x")
	}
}

func TestDecoder_CommentsIgnored(t *testing.T) {
	d := NewDecoder(strings.NewReader(": keepalive\n: another\ndata: x\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want %q", ev.Data, "x")
	}
}

func TestDecoder_UnknownFieldsIgnored(t *testing.T) {
	d := NewDecoder(strings.NewReader("whatever: value\ndata: x\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want %q", ev.Data, "x")
	}
}

func TestDecoder_RetryHint(t *testing.T) {
	d := NewDecoder(strings.NewReader("retry: 3000\ndata: x\n\n"))

	hint, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if hint.Retry != 3*time.Second {
		t.Errorf("Retry = %v, want %v", hint.Retry, 3*time.Second)
	}
	if hint.Data != "" || hint.ID != "" {
		t.Errorf("retry hint should carry no payload, got %+v", hint)
	}

	// The surrounding frame still dispatches afterwards.
	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next after retry failed: %v", err)
	}
	if ev.Data != "x" {
		t.Errorf("Data = %q, want %q", ev.Data, "x")
	}
}

func TestDecoder_InvalidRetry(t *testing.T) {
	tests := []string{"retry: soon\n", "retry: -1\n"}
	for _, input := range tests {
		d := NewDecoder(strings.NewReader(input))
		if _, err := d.Next(); err == nil || err == io.EOF {
			t.Errorf("Next(%q) = %v, want decode error", input, err)
		}
	}
}

func TestDecoder_LineTooLong(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: " + strings.Repeat("a", maxLineBytes+1) + "\n\n"))

	if _, err := d.Next(); err == nil || err == io.EOF {
		t.Errorf("Next = %v, want decode error for oversized line", err)
	}
}

// endlessLine never emits a newline or EOF.
type endlessLine struct{}

func (endlessLine) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 'a'
	}
	return len(p), nil
}

func TestDecoder_NewlineFreeBodyBounded(t *testing.T) {
	// Must fail once the line bound is hit, not buffer forever.
	d := NewDecoder(endlessLine{})

	if _, err := d.Next(); err == nil || err == io.EOF {
		t.Errorf("Next = %v, want decode error for unterminated line", err)
	}
}

func TestDecoder_FlushAtEOF(t *testing.T) {
	// Blank-line terminator missing before the connection closes.
	d := NewDecoder(strings.NewReader("id: 9\ndata: tail\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.ID != "9" || ev.Data != "tail" {
		t.Errorf("frame = %+v, want id 9 data tail", ev)
	}

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next after flush = %v, want io.EOF", err)
	}
}

func TestDecoder_IDOnlyFrame(t *testing.T) {
	// A frame with an id but no data still dispatches so the consumer can
	// advance its cursor.
	d := NewDecoder(strings.NewReader("id: 42\nevent: heartbeat\n\n"))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.ID != "42" {
		t.Errorf("ID = %q, want %q", ev.ID, "42")
	}
	if ev.Name != "heartbeat" {
		t.Errorf("Name = %q, want %q", ev.Name, "heartbeat")
	}
}

func TestDecoder_EmptyStream(t *testing.T) {
	d := NewDecoder(strings.NewReader(""))
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next on empty stream = %v, want io.EOF", err)
	}
}
