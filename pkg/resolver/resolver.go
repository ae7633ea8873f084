package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for shell resolution.
var (
	shellResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shell_resolutions_total",
		Help: "Total shell resolutions by response source",
	}, []string{"source"}) // "precache", "network", "preload", "offline"

	shellResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shell_resolution_duration_seconds",
		Help:    "Shell resolution duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})

	shellFetchCancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shell_fetch_cancellations_total",
		Help: "Total live fetches cancelled because the precached copy was fresh",
	})

	shellResolutionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shell_resolution_errors_total",
		Help: "Total unrecovered resolution errors by kind",
	}, []string{"kind"}) // "network", "no_candidate"
)

// PrecacheStore looks up the precached shell document by its canonical key.
// A nil response with a nil error means no entry is precached. The store is
// read-only from the resolver's perspective.
type PrecacheStore interface {
	Lookup(ctx context.Context, key string) (*http.Response, error)
}

// Transport performs network fetches. Implementations must honor
// cancellation of the request context.
type Transport interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Probe reports whether the runtime currently has network connectivity.
type Probe interface {
	Online() bool
}

// Preload is the handle for a navigation-preload response: a fetch the host
// environment began speculatively before this handler ran. Response blocks
// until that fetch settles; a nil response with a nil error means the host
// produced nothing. Preload fetches are host-managed and are never cancelled
// by the resolver.
type Preload interface {
	Response(ctx context.Context) (*http.Response, error)
}

// Event describes one intercepted navigation. It is ephemeral, scoped to a
// single resolution.
type Event struct {
	// Request is the original navigation request.
	Request *http.Request

	// Preload is the optional preload handle. Nil when the host started no
	// speculative fetch for this navigation.
	Preload Preload
}

// Resolution is the outcome of a resolve: the response to serve, plus
// provenance for callers that need to distinguish cache hits.
type Resolution struct {
	Response *http.Response

	// CacheServed is true when the response came from the precache.
	CacheServed bool
}

// Config holds the resolver configuration.
type Config struct {
	// Store is the precache store collaborator (required).
	Store PrecacheStore

	// Transport is the network transport collaborator (required).
	Transport Transport

	// Probe reports connectivity. Defaults to always-online when nil.
	Probe Probe

	// DocumentURL is the canonical URL of the shell document. Live network
	// candidates fetch this URL rather than the original request, so the
	// precache and network candidates stay comparable.
	DocumentURL string

	// DocumentKey is the precache key of the canonical shell document.
	DocumentKey string

	// Fallback is the optional offline fallback template.
	Fallback *Fallback
}

// Resolver decides, per navigation, which candidate response to serve.
type Resolver struct {
	store     PrecacheStore
	transport Transport
	probe     Probe
	fallback  *Fallback
	docURL    *url.URL
	docKey    string
	logger    zerolog.Logger
}

// New creates a resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("precache store is required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if cfg.DocumentKey == "" {
		return nil, fmt.Errorf("document key is required")
	}

	docURL, err := url.Parse(cfg.DocumentURL)
	if err != nil {
		return nil, fmt.Errorf("parse document URL: %w", err)
	}
	if docURL.Scheme == "" || docURL.Host == "" {
		return nil, fmt.Errorf("document URL must be absolute: %q", cfg.DocumentURL)
	}

	probe := cfg.Probe
	if probe == nil {
		probe = alwaysOnline{}
	}

	return &Resolver{
		store:     cfg.Store,
		transport: cfg.Transport,
		probe:     probe,
		fallback:  cfg.Fallback,
		docURL:    docURL,
		docKey:    cfg.DocumentKey,
		logger:    log.With().Str("component", "shell-resolver").Logger(),
	}, nil
}

// DocumentURL returns the canonical shell document URL.
func (r *Resolver) DocumentURL() string {
	return r.docURL.String()
}

// Resolve produces exactly one response for a matched navigation request.
// It returns an error only when no response of any kind could be produced.
func (r *Resolver) Resolve(ctx context.Context, ev *Event) (*Resolution, error) {
	startTime := time.Now()
	defer func() {
		shellResolutionDuration.Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Offline short-circuit. No network or cache access when the
	// fallback can answer; otherwise one best-effort fetch of the original
	// request whose failure propagates to the caller.
	if !r.probe.Online() {
		return r.resolveOffline(ctx, ev)
	}

	// Step 2: Launch both candidate sources back to back. The precache
	// lookup is always issued, regardless of network outcome.
	cacheCh := make(chan lookupResult, 1)
	go func() {
		resp, err := r.store.Lookup(ctx, r.docKey)
		cacheCh <- lookupResult{resp: resp, err: err}
	}()

	net := r.startNetworkCandidate(ctx, ev)

	// Step 3: Join the precache result first. It is local and fast, and it
	// gates whether the network result is needed before returning.
	cached := <-cacheCh
	if cached.err != nil {
		r.logger.Warn().Err(cached.err).Str("key", r.docKey).Msg("Precache lookup failed")
		cached.resp = nil
	}

	if cached.resp == nil {
		return r.resolveWithoutCache(net)
	}
	return r.resolveWithCache(cached.resp, net)
}

// resolveOffline handles the no-connectivity path.
func (r *Resolver) resolveOffline(ctx context.Context, ev *Event) (*Resolution, error) {
	if r.fallback != nil {
		r.logger.Debug().Msg("Offline - serving fallback")
		shellResolutionsTotal.WithLabelValues("offline").Inc()
		return &Resolution{Response: r.fallback.Clone()}, nil
	}

	r.logger.Debug().Msg("Offline without fallback - attempting direct fetch")
	resp, err := r.transport.Fetch(ctx, ev.Request)
	if err != nil {
		shellResolutionErrorsTotal.WithLabelValues("network").Inc()
		return nil, &NetworkError{Op: "fetch", Err: err}
	}

	shellResolutionsTotal.WithLabelValues("network").Inc()
	return &Resolution{Response: resp}, nil
}

// resolveWithoutCache awaits the network candidate when no precached entry
// exists: it is the only online source left.
func (r *Resolver) resolveWithoutCache(net *networkCandidate) (*Resolution, error) {
	res := <-net.ch

	if res.err != nil {
		net.release()
		if r.fallback != nil {
			r.logger.Debug().Err(res.err).Msg("Network candidate failed - serving fallback")
			shellResolutionsTotal.WithLabelValues("offline").Inc()
			return &Resolution{Response: r.fallback.Clone()}, nil
		}
		shellResolutionErrorsTotal.WithLabelValues("network").Inc()
		return nil, &NetworkError{Op: net.op, Err: res.err}
	}

	if res.resp == nil {
		// The host-managed preload settled with nothing, e.g. preload was
		// disabled after the handle was created.
		net.release()
		if r.fallback != nil {
			shellResolutionsTotal.WithLabelValues("offline").Inc()
			return &Resolution{Response: r.fallback.Clone()}, nil
		}
		shellResolutionErrorsTotal.WithLabelValues("no_candidate").Inc()
		return nil, ErrNoCandidate
	}

	shellResolutionsTotal.WithLabelValues(net.source()).Inc()
	return &Resolution{Response: net.adopt(res.resp)}, nil
}

// resolveWithCache compares the precached entry against the network
// candidate once the latter settles.
func (r *Resolver) resolveWithCache(cachedResp *http.Response, net *networkCandidate) (*Resolution, error) {
	res := <-net.ch

	if res.err != nil || res.resp == nil {
		// Network failed: the cache is the safe fallback even if possibly
		// stale.
		net.release()
		if res.err != nil {
			r.logger.Debug().Err(res.err).Msg("Network candidate failed - serving precached shell")
		}
		shellResolutionsTotal.WithLabelValues("precache").Inc()
		return &Resolution{Response: cachedResp, CacheServed: true}, nil
	}

	cachedETag := cachedResp.Header.Get("ETag")
	networkETag := res.resp.Header.Get("ETag")

	if etagsMatch(cachedETag, networkETag) {
		// Cache is current. A live fetch is cancelled here and only here:
		// its body is unconsumed and its result would be discarded anyway.
		r.logger.Debug().Str("etag", cachedETag).Msg("Shell ETag match - serving precached copy")
		if net.live {
			shellFetchCancellationsTotal.Inc()
		}
		res.resp.Body.Close()
		net.release()
		shellResolutionsTotal.WithLabelValues("precache").Inc()
		return &Resolution{Response: cachedResp, CacheServed: true}, nil
	}

	// Freshness takes priority over offline-availability once online: the
	// network version wins when the identifiers differ or are unavailable.
	r.logger.Debug().
		Str("cached_etag", cachedETag).
		Str("network_etag", networkETag).
		Msg("Shell ETag mismatch - serving network copy")
	cachedResp.Body.Close()
	shellResolutionsTotal.WithLabelValues(net.source()).Inc()
	return &Resolution{Response: net.adopt(res.resp)}, nil
}

// etagsMatch reports whether the freshness identifiers are both present and
// equal. An absent identifier on either side never matches.
func etagsMatch(cached, network string) bool {
	return cached != "" && cached == network
}

type lookupResult struct {
	resp *http.Response
	err  error
}

type fetchResult struct {
	resp *http.Response
	err  error
}

// networkCandidate is the in-flight network source: an adopted preload
// handle, or a live fetch with its cancellation controller.
type networkCandidate struct {
	ch     <-chan fetchResult
	op     string
	live   bool
	cancel context.CancelFunc
}

// startNetworkCandidate adopts the event's preload handle when present;
// otherwise it issues a fresh fetch of the canonical document URL under a
// cancellable context.
func (r *Resolver) startNetworkCandidate(ctx context.Context, ev *Event) *networkCandidate {
	ch := make(chan fetchResult, 1)

	if ev.Preload != nil {
		go func() {
			resp, err := ev.Preload.Response(ctx)
			ch <- fetchResult{resp: resp, err: err}
		}()
		return &networkCandidate{ch: ch, op: "preload"}
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, r.docURL.String(), nil)
	if err != nil {
		cancel()
		ch <- fetchResult{err: fmt.Errorf("create document request: %w", err)}
		return &networkCandidate{ch: ch, op: "fetch"}
	}

	go func() {
		resp, err := r.transport.Fetch(fetchCtx, req)
		ch <- fetchResult{resp: resp, err: err}
	}()
	return &networkCandidate{ch: ch, op: "fetch", live: true, cancel: cancel}
}

// source labels the candidate for metrics.
func (n *networkCandidate) source() string {
	if n.live {
		return "network"
	}
	return "preload"
}

// release cancels the live fetch context when its result is being discarded.
// It is a no-op for preload candidates, which the host environment owns.
func (n *networkCandidate) release() {
	if n.cancel != nil {
		n.cancel()
	}
}

// adopt prepares a settled network response for return to the caller. A live
// fetch about to be returned is never cancelled; its cancel function is tied
// to the body so the context is released once the caller finishes reading.
func (n *networkCandidate) adopt(resp *http.Response) *http.Response {
	if n.live && n.cancel != nil {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: n.cancel}
	}
	return resp
}

// cancelOnClose releases a live fetch's context when the consumed body is
// closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// alwaysOnline is the default probe for deployments without connectivity
// tracking.
type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }
