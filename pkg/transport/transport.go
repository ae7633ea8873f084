// Package transport implements the resolver's network transport over
// net/http, reporting fetch outcomes to an optional connectivity recorder.
package transport

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single document fetch when no custom client is
// supplied.
const DefaultTimeout = 30 * time.Second

// Recorder receives upstream fetch outcomes. The connectivity tracker
// satisfies this contract.
type Recorder interface {
	RecordSuccess()
	RecordFailure()
}

// HTTPTransport fetches documents with an *http.Client. It honors request
// context cancellation, which is the resolver's abort path for redundant
// fetches.
type HTTPTransport struct {
	client   *http.Client
	recorder Recorder
}

// New creates a transport. A nil client gets a default with DefaultTimeout;
// a nil recorder disables outcome reporting.
func New(client *http.Client, recorder Recorder) *HTTPTransport {
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
		}
	}
	return &HTTPTransport{
		client:   client,
		recorder: recorder,
	}
}

// Fetch performs the request under the given context. Any response counts as
// a connectivity success (a 5xx still means the link is up); transport
// errors count as failures, except cancellations, which say nothing about
// the upstream.
func (t *HTTPTransport) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req.Clone(ctx))
	if err != nil {
		if t.recorder != nil && !errors.Is(err, context.Canceled) {
			t.recorder.RecordFailure()
		}
		return nil, err
	}

	if t.recorder != nil {
		t.recorder.RecordSuccess()
	}
	return resp, nil
}
