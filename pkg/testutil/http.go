// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest creates a request whose body is body marshaled to JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest creates a request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewRequestWithBody creates a JSON request from a raw string, for malformed input.
func NewRequestWithBody(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Response is a recorded response with its body already read.
type Response struct {
	t      *testing.T
	Code   int
	Header http.Header
	Body   string
}

// Do runs req through handler and records the response.
func Do(t *testing.T, handler http.Handler, req *http.Request) *Response {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return &Response{t: t, Code: rr.Code, Header: rr.Header(), Body: rr.Body.String()}
}

// AssertStatus asserts the status code.
func (r *Response) AssertStatus(expected int) {
	r.t.Helper()
	assert.Equal(r.t, expected, r.Code, "unexpected status code, body: %s", r.Body)
}

// AssertError asserts the status and the "error" field of the envelope.
func (r *Response) AssertError(status int, code string) {
	r.t.Helper()
	r.AssertStatus(status)
	fields := Decode[map[string]any](r.t, r)
	assert.Equal(r.t, code, fields["error"], "unexpected error code")
}

// Decode unmarshals the response body into a T.
func Decode[T any](t *testing.T, r *Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(r.Body), &out), "failed to unmarshal response: %s", r.Body)
	return out
}
