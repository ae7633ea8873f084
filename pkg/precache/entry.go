package precache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Entry represents a precached shell document.
type Entry struct {
	// Body is the document body.
	Body []byte `json:"body"`

	// ETag is the freshness identifier of the deployed shell.
	ETag string `json:"etag"`

	// StatusCode is the HTTP status code of the precached response.
	StatusCode int `json:"status_code"`

	// Header holds the response headers.
	Header http.Header `json:"header"`

	// StoredAt is when the entry was written to the precache.
	StoredAt time.Time `json:"stored_at"`
}

// ResponseToEntry converts an HTTP response to a precache entry. The response
// body is fully read and then restored for the caller.
func ResponseToEntry(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Entry{
		Body:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		StoredAt:   time.Now(),
	}, nil
}

// Response materializes the entry as an HTTP response. Each call produces a
// fresh single-use body reader, so one entry can serve many resolutions.
func (e *Entry) Response() *http.Response {
	status := e.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if e.ETag != "" && header.Get("ETag") == "" {
		header.Set("ETag", e.ETag)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
	}
}
