// Package testutil provides testing utilities for the shell gateway.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockOriginResponse defines the behavior for a mock origin response.
type MockOriginResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockOrigin is a configurable mock application origin for testing. Its
// default behavior serves an HTML shell document with an ETag.
type MockOrigin struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	etag     string
	shell    string

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
}

// NewMockOrigin creates a mock origin serving the given shell document body
// with the given ETag on every path without a custom handler.
func NewMockOrigin(etag, shell string) *MockOrigin {
	mock := &MockOrigin{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		etag:     etag,
		shell:    shell,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		if r.Header.Get("If-None-Match") != "" {
			mock.ConditionalCount++
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock origin URL.
func (m *MockOrigin) URL() string {
	return m.server.URL
}

// Close shuts down the mock origin.
func (m *MockOrigin) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockOrigin) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
}

// SetETag changes the ETag the default handler serves, simulating a new
// deployment of the shell.
func (m *MockOrigin) SetETag(etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etag = etag
}

// SetHandler sets a custom handler for a specific path.
func (m *MockOrigin) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockOrigin) SetResponse(path string, resp MockOriginResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the origin.
func (m *MockOrigin) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockOrigin) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// defaultHandler serves the configured shell document.
func (m *MockOrigin) defaultHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	etag, shell := m.etag, m.shell
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(shell))
}

// NewShellResponse creates a 200 OK response carrying an HTML shell document.
func NewShellResponse(etag, body string) MockOriginResponse {
	return MockOriginResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"ETag":         etag,
			"Content-Type": "text/html; charset=utf-8",
		},
	}
}

// NewNotModifiedResponse creates a 304 Not Modified response.
func NewNotModifiedResponse() MockOriginResponse {
	return MockOriginResponse{
		StatusCode: http.StatusNotModified,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockOriginResponse {
	return MockOriginResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "<html><body>internal server error</body></html>",
		Headers: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
		},
	}
}
