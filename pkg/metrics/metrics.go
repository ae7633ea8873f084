// Package metrics provides the centralized Prometheus metrics registry for
// the shell gateway. All metrics are defined in their respective packages
// (resolver, precache, connectivity, preload) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler that exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Resolution Metrics (pkg/resolver):
//   - shell_resolutions_total{source} (Counter): Resolutions by response source (precache, network, preload, offline)
//   - shell_resolution_duration_seconds (Histogram): Time to produce a shell response
//   - shell_fetch_cancellations_total (Counter): Live fetches cancelled because the cached copy was fresh
//   - shell_resolution_errors_total{kind} (Counter): Resolution errors by kind (network, no_candidate)
//
// Precache Metrics (pkg/precache):
//   - shell_precache_hits_total (Counter): Precache lookups that found an entry
//   - shell_precache_misses_total (Counter): Precache lookups that found nothing
//   - shell_precache_errors_total{operation} (Counter): Precache operation errors
//
// Connectivity Metrics (pkg/connectivity):
//   - shell_connectivity_online (Gauge): 1 when the upstream is assessed reachable, 0 otherwise
//   - shell_connectivity_flips_total{direction} (Counter): Online/offline transitions
//   - shell_upstream_failures_total (Counter): Upstream fetch failures observed
//
// Preload Metrics (pkg/preload):
//   - shell_preloads_started_total (Counter): Speculative shell fetches started
//   - shell_preloads_declined_total (Counter): Preloads declined for lack of budget
//   - shell_preloads_failed_total (Counter): Speculative fetches that settled with an error
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(shell_resolutions_total{source="precache"}[5m])) /
//   sum(rate(shell_resolutions_total[5m]))
//
//   # Offline Fallback Rate
//   rate(shell_resolutions_total{source="offline"}[5m])
//
//   # P95 Resolution Latency
//   histogram_quantile(0.95, rate(shell_resolution_duration_seconds_bucket[5m]))
//
//   # Wasted Fetch Ratio
//   rate(shell_fetch_cancellations_total[5m]) / rate(shell_resolutions_total[5m])
