package horizon

import (
	"errors"
	"strings"
	"testing"

	"github.com/rickgao/horizon-data/internal/resources"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want statusClass
	}{
		{200, statusSuccess},
		{201, statusSuccess},
		{299, statusSuccess},
		{400, statusClientError},
		{404, statusClientError},
		{429, statusClientError},
		{499, statusClientError},
		{500, statusServerError},
		{503, statusServerError},
		{301, statusServerError},
		{199, statusServerError},
	}

	for _, tc := range tests {
		if got := classifyStatus(tc.code); got != tc.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")

	tests := []struct {
		name string
		err  error
	}{
		{"transport", &TransportError{Err: inner}},
		{"decode", &DecodeError{Err: inner}},
		{"stream decode", &StreamDecodeError{Err: inner}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, inner) {
				t.Errorf("errors.Is(%v, inner) = false, want true", tc.err)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	reqErr := &RequestError{Problem: resources.Problem{
		Title:  "Bad Request",
		Status: 400,
	}}
	if msg := reqErr.Error(); !strings.Contains(msg, "400") || !strings.Contains(msg, "Bad Request") {
		t.Errorf("RequestError message %q missing status or title", msg)
	}

	srvErr := &ServerError{StatusCode: 503}
	if msg := srvErr.Error(); !strings.Contains(msg, "503") {
		t.Errorf("ServerError message %q missing status", msg)
	}
}
