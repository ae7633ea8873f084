package resolver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Fallback is the offline fallback response template. It is held once for
// the lifetime of the resolver, shared read-only across all resolutions, and
// never mutated. Because a response body can be read only once, every use
// goes through Clone.
type Fallback struct {
	statusCode int
	header     http.Header
	body       []byte
}

// NewFallback builds a fallback template from an HTTP response. The response
// body is fully read and closed.
func NewFallback(resp *http.Response) (*Fallback, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read fallback body: %w", err)
	}
	resp.Body.Close()

	return &Fallback{
		statusCode: resp.StatusCode,
		header:     resp.Header.Clone(),
		body:       body,
	}, nil
}

// NewHTMLFallback builds a 200 text/html fallback template from raw markup.
func NewHTMLFallback(html []byte) *Fallback {
	header := make(http.Header)
	header.Set("Content-Type", "text/html; charset=utf-8")

	return &Fallback{
		statusCode: http.StatusOK,
		header:     header,
		body:       append([]byte(nil), html...),
	}
}

// Clone materializes a fresh response from the template. Each clone carries
// its own body reader and header copy, so handing one out never exhausts the
// template or any other clone.
func (f *Fallback) Clone() *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", f.statusCode, http.StatusText(f.statusCode)),
		StatusCode:    f.statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        f.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(f.body)),
		ContentLength: int64(len(f.body)),
	}
}
