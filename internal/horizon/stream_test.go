package horizon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

type testEvent struct {
	Seq int `json:"seq"`
}

func newTestStream(t *testing.T, handler http.HandlerFunc) (*Stream[testEvent], func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	c, err := NewClient(server.URL)
	if err != nil {
		server.Close()
		t.Fatalf("NewClient: %v", err)
	}

	stream := NewStream[testEvent](context.Background(), c, stubRequest{path: "/stream"})
	return stream, func() {
		stream.Close()
		server.Close()
	}
}

func TestStreamNext(t *testing.T) {
	var gotAccept string
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\nid: 2\ndata: {\"seq\":2}\n\n"))
	})
	defer cleanup()

	for want := 1; want <= 2; want++ {
		item, err := stream.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if item.Seq != want {
			t.Errorf("got seq %d, want %d", item.Seq, want)
		}
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("got Accept %q, want text/event-stream", gotAccept)
	}
}

func TestStreamReconnectResumesFromCursor(t *testing.T) {
	var mu sync.Mutex
	var resumeIDs []string

	var conns atomic.Int32
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resumeIDs = append(resumeIDs, r.Header.Get("Last-Event-Id"))
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		switch conns.Add(1) {
		case 1:
			w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\n"))
		default:
			w.Write([]byte("id: 2\ndata: {\"seq\":2}\n\n"))
		}
	})
	defer cleanup()

	item, err := stream.Next()
	if err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if item.Seq != 1 {
		t.Errorf("got seq %d, want 1", item.Seq)
	}

	// The first connection is exhausted, so this reconnects silently.
	item, err = stream.Next()
	if err != nil {
		t.Fatalf("second Next: %v", err)
	}
	if item.Seq != 2 {
		t.Errorf("got seq %d, want 2", item.Seq)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(resumeIDs) != 2 {
		t.Fatalf("got %d connections, want 2", len(resumeIDs))
	}
	if resumeIDs[0] != "" {
		t.Errorf("first connection carried Last-Event-Id %q, want none", resumeIDs[0])
	}
	if resumeIDs[1] != "1" {
		t.Errorf("second connection carried Last-Event-Id %q, want %q", resumeIDs[1], "1")
	}
}

func TestStreamSkippedFramesAdvanceCursor(t *testing.T) {
	var mu sync.Mutex
	var resumeIDs []string

	var conns atomic.Int32
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resumeIDs = append(resumeIDs, r.Header.Get("Last-Event-Id"))
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		switch conns.Add(1) {
		case 1:
			// Only a non-message frame; its id must still move the cursor.
			w.Write([]byte("id: 7\nevent: heartbeat\ndata: {}\n\n"))
		default:
			w.Write([]byte("id: 8\ndata: {\"seq\":8}\n\n"))
		}
	})
	defer cleanup()

	item, err := stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if item.Seq != 8 {
		t.Errorf("got seq %d, want 8", item.Seq)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(resumeIDs) != 2 || resumeIDs[1] != "7" {
		t.Errorf("got resume ids %v, want second connection resuming from 7", resumeIDs)
	}
}

func TestStreamRetryHintSkipped(t *testing.T) {
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("retry: 1500\n\nid: 1\ndata: {\"seq\":1}\n\n"))
	})
	defer cleanup()

	item, err := stream.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if item.Seq != 1 {
		t.Errorf("got seq %d, want 1", item.Seq)
	}
}

func TestStreamConnectRequestError(t *testing.T) {
	var conns atomic.Int32
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		if conns.Add(1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"type":"https://example.org/not_found","title":"Resource Missing","status":404}`))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\n"))
	})
	defer cleanup()

	_, err := stream.Next()
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("got error %v, want *RequestError", err)
	}
	if reqErr.Problem.Status != 404 {
		t.Errorf("got problem status %d, want 404", reqErr.Problem.Status)
	}

	// The failure does not end the stream; the next call connects again.
	item, err := stream.Next()
	if err != nil {
		t.Fatalf("Next after error: %v", err)
	}
	if item.Seq != 1 {
		t.Errorf("got seq %d, want 1", item.Seq)
	}
}

func TestStreamConnectServerError(t *testing.T) {
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer cleanup()

	_, err := stream.Next()
	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("got error %v, want *ServerError", err)
	}
	if srvErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500", srvErr.StatusCode)
	}
}

func TestStreamMalformedFraming(t *testing.T) {
	var conns atomic.Int32
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		if conns.Add(1) == 1 {
			w.Write([]byte("retry: soon\n"))
			return
		}
		w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\n"))
	})
	defer cleanup()

	_, err := stream.Next()
	var streamErr *StreamDecodeError
	if !errors.As(err, &streamErr) {
		t.Fatalf("got error %v, want *StreamDecodeError", err)
	}

	item, err := stream.Next()
	if err != nil {
		t.Fatalf("Next after framing error: %v", err)
	}
	if item.Seq != 1 {
		t.Errorf("got seq %d, want 1", item.Seq)
	}
}

func TestStreamPayloadDecodeErrorKeepsConnection(t *testing.T) {
	var conns atomic.Int32
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		conns.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: not json\n\nid: 1\ndata: {\"seq\":1}\n\n"))
	})
	defer cleanup()

	_, err := stream.Next()
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("got error %v, want *DecodeError", err)
	}

	item, err := stream.Next()
	if err != nil {
		t.Fatalf("Next after payload error: %v", err)
	}
	if item.Seq != 1 {
		t.Errorf("got seq %d, want 1", item.Seq)
	}
	if got := conns.Load(); got != 1 {
		t.Errorf("got %d connections, want 1", got)
	}
}

func TestStreamClose(t *testing.T) {
	stream, cleanup := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\n"))
	})
	defer cleanup()

	if _, err := stream.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := stream.Next(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("Next after Close = %v, want ErrStreamClosed", err)
	}
}

func TestStreamContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("id: 1\ndata: {\"seq\":1}\n\n"))
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream := NewStream[testEvent](ctx, c, stubRequest{path: "/stream"})
	defer stream.Close()

	cancel()
	if _, err := stream.Next(); !errors.Is(err, context.Canceled) {
		t.Errorf("Next after cancel = %v, want context.Canceled", err)
	}
}
