package connectivity

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for connectivity tracking.
var (
	shellConnectivityOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shell_connectivity_online",
		Help: "Whether the edge currently considers the upstream reachable (1) or not (0)",
	})

	shellConnectivityFlipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shell_connectivity_flips_total",
		Help: "Total connectivity state transitions by direction",
	}, []string{"direction"}) // "offline", "online"

	shellUpstreamFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shell_upstream_failures_total",
		Help: "Total upstream fetch failures observed by the connectivity tracker",
	})
)

// Tracker observes upstream fetch outcomes and gates the resolver's offline
// short-circuit. It satisfies both the resolver's Probe contract and the
// transport's Recorder contract.
type Tracker struct {
	mu        sync.Mutex
	state     State
	threshold int
	logger    zerolog.Logger
}

// NewTracker creates a connectivity tracker. A threshold of 0 uses
// DefaultFailureThreshold.
func NewTracker(threshold int, logger zerolog.Logger) *Tracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	shellConnectivityOnline.Set(1)

	return &Tracker{
		state:     State{IsOnline: true},
		threshold: threshold,
		logger:    logger,
	}
}

// Online reports the current connectivity assessment.
func (t *Tracker) Online() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.IsOnline
}

// RecordSuccess notes a successful upstream fetch. The first success after
// an offline period restores the online assessment immediately.
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasOnline := t.state.IsOnline
	t.state.ConsecutiveFailures = 0
	t.state.LastSuccess = time.Now()
	t.state.UpdateHealth(t.threshold)

	if !wasOnline {
		shellConnectivityFlipsTotal.WithLabelValues("online").Inc()
		shellConnectivityOnline.Set(1)
		t.logger.Info().
			Time("last_failure", t.state.LastFailure).
			Msg("Upstream reachable again - back online")
	}
}

// RecordFailure notes a failed upstream fetch. Crossing the failure
// threshold flips the assessment offline.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()

	shellUpstreamFailuresTotal.Inc()

	wasOnline := t.state.IsOnline
	t.state.ConsecutiveFailures++
	t.state.LastFailure = time.Now()
	t.state.UpdateHealth(t.threshold)

	if wasOnline && !t.state.IsOnline {
		shellConnectivityFlipsTotal.WithLabelValues("offline").Inc()
		shellConnectivityOnline.Set(0)
		t.logger.Warn().
			Int("consecutive_failures", t.state.ConsecutiveFailures).
			Msg("Upstream unreachable - going offline")
	}
}

// GetState returns a snapshot of the current state.
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StaticProbe is a fixed connectivity answer for setups without tracking,
// e.g. tests and local development.
type StaticProbe bool

// Online implements the resolver's Probe contract.
func (p StaticProbe) Online() bool { return bool(p) }
