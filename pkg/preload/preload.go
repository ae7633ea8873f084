// Package preload implements the navigation-preload role of the host
// environment: it begins fetching the shell document speculatively, before
// routing has decided on a handler, and hands the in-flight result to the
// resolver as an adoptable candidate.
//
// Preload fetches are owned by this package, never by the resolver. The
// number of concurrent speculative fetches is bounded; when the budget is
// exhausted the host simply declines to preload and the resolver falls back
// to a live fetch.
package preload

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for navigation preload.
var (
	shellPreloadsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shell_preloads_started_total",
		Help: "Total speculative shell fetches started",
	})

	shellPreloadsDeclinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shell_preloads_declined_total",
		Help: "Total preloads declined because the concurrency budget was exhausted",
	})

	shellPreloadsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shell_preloads_failed_total",
		Help: "Total speculative shell fetches that settled with an error",
	})
)

// Fetcher performs the speculative fetch. The transport package satisfies
// this contract.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds preload configuration.
type Config struct {
	// MaxConcurrent is the maximum number of speculative fetches in flight.
	MaxConcurrent int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 8,
	}
}

// Manager starts and bounds speculative shell fetches.
type Manager struct {
	fetcher Fetcher
	slots   chan struct{}
	logger  zerolog.Logger
}

// NewManager creates a preload manager.
func NewManager(fetcher Fetcher, cfg Config) *Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}

	return &Manager{
		fetcher: fetcher,
		slots:   make(chan struct{}, cfg.MaxConcurrent),
		logger:  log.With().Str("component", "shell-preload").Logger(),
	}
}

// Start begins a speculative fetch and returns its handle. It returns nil
// when the concurrency budget is exhausted: the host declines to preload and
// the resolver issues its own fetch instead.
func (m *Manager) Start(ctx context.Context, req *http.Request) *Handle {
	select {
	case m.slots <- struct{}{}:
	default:
		shellPreloadsDeclinedTotal.Inc()
		m.logger.Debug().Msg("Preload declined - concurrency budget exhausted")
		return nil
	}

	shellPreloadsStartedTotal.Inc()
	h := &Handle{done: make(chan struct{})}

	go func() {
		defer func() { <-m.slots }()

		resp, err := m.fetcher.Fetch(ctx, req)
		if err != nil {
			shellPreloadsFailedTotal.Inc()
			m.logger.Debug().Err(err).Msg("Speculative shell fetch failed")
		}
		h.resp = resp
		h.err = err
		close(h.done)
	}()

	return h
}

// Handle is the adoptable result of one speculative fetch. It satisfies the
// resolver's Preload contract.
type Handle struct {
	done chan struct{}
	resp *http.Response
	err  error
}

// Response blocks until the speculative fetch settles or the context is
// done. Every waiter observes the same settled result.
func (h *Handle) Response(ctx context.Context) (*http.Response, error) {
	select {
	case <-h.done:
		return h.resp, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// contextKey is the private key type for handles attached to a request
// context.
type contextKey struct{}

// Middleware starts a preload for every request the gate predicate accepts
// and attaches the handle to the request context before routing runs.
func (m *Manager) Middleware(shouldPreload func(*http.Request) bool, documentURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldPreload(r) {
				req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, documentURL, nil)
				if err == nil {
					if h := m.Start(r.Context(), req); h != nil {
						r = r.WithContext(context.WithValue(r.Context(), contextKey{}, h))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the preload handle the middleware attached, or nil
// when no preload was started for this request.
func FromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(contextKey{}).(*Handle)
	return h
}
