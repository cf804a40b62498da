package horizon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// stubRequest is a minimal Request implementation for exercising Execute.
type stubRequest struct {
	path string
	post bool
}

func (r stubRequest) ResolveURL(host *url.URL) (*url.URL, error) {
	return host.JoinPath(r.path), nil
}

func (r stubRequest) IsPost() bool { return r.post }

type stubResponse struct {
	Value string `json:"value"`
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("https://horizon.example.org")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := c.Host().String(); got != "https://horizon.example.org" {
		t.Errorf("Host() = %q, want %q", got, "https://horizon.example.org")
	}
}

func TestNewClientInvalidHost(t *testing.T) {
	tests := []string{
		"",
		"horizon.example.org", // missing scheme
		"https://",            // missing host
		"://broken",
	}

	for _, host := range tests {
		if _, err := NewClient(host); !errors.Is(err, ErrInvalidHost) {
			t.Errorf("NewClient(%q) error = %v, want ErrInvalidHost", host, err)
		}
	}
}

func TestExecuteSuccess(t *testing.T) {
	var gotMethod, gotAccept, gotName, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		gotName = r.Header.Get("X-Client-Name")
		gotVersion = r.Header.Get("X-Client-Version")
		json.NewEncoder(w).Encode(stubResponse{Value: "ok"})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := Execute[stubResponse](context.Background(), c, stubRequest{path: "/thing"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Value != "ok" {
		t.Errorf("got value %q, want %q", resp.Value, "ok")
	}
	if gotMethod != http.MethodGet {
		t.Errorf("got method %q, want GET", gotMethod)
	}
	if gotAccept != "application/json" {
		t.Errorf("got Accept %q, want application/json", gotAccept)
	}
	if gotName == "" || gotVersion == "" {
		t.Errorf("identification headers missing: name=%q version=%q", gotName, gotVersion)
	}
}

func TestExecutePost(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewEncoder(w).Encode(stubResponse{})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := Execute[stubResponse](context.Background(), c, stubRequest{path: "/thing", post: true}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("got method %q, want POST", gotMethod)
	}
}

func TestExecuteClientName(t *testing.T) {
	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.Header.Get("X-Client-Name")
		json.NewEncoder(w).Encode(stubResponse{})
	}))
	defer server.Close()

	c, err := NewClient(server.URL, WithClientName("custom-agent"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := Execute[stubResponse](context.Background(), c, stubRequest{path: "/"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotName != "custom-agent" {
		t.Errorf("got X-Client-Name %q, want %q", gotName, "custom-agent")
	}
}

func TestExecuteRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"type":"https://example.org/not_found","title":"Resource Missing","status":404,"detail":"nothing here"}`))
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = Execute[stubResponse](context.Background(), c, stubRequest{path: "/missing"})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("got error %v, want *RequestError", err)
	}
	if reqErr.Problem.Status != 404 {
		t.Errorf("got problem status %d, want 404", reqErr.Problem.Status)
	}
	if reqErr.Problem.Title != "Resource Missing" {
		t.Errorf("got problem title %q, want %q", reqErr.Problem.Title, "Resource Missing")
	}
}

func TestExecuteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = Execute[stubResponse](context.Background(), c, stubRequest{path: "/"})

	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("got error %v, want *ServerError", err)
	}
	if srvErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want 503", srvErr.StatusCode)
	}
}

func TestExecuteDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not json"))
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = Execute[stubResponse](context.Background(), c, stubRequest{path: "/"})

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("got error %v, want *DecodeError", err)
	}
}

func TestExecuteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = Execute[stubResponse](context.Background(), c, stubRequest{path: "/"})

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("got error %v, want *TransportError", err)
	}
}

func TestExecuteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	c, err := NewClient(server.URL, WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = Execute[stubResponse](context.Background(), c, stubRequest{path: "/slow"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got error %v, want deadline exceeded", err)
	}
}
