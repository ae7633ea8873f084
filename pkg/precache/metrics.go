package precache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PrecacheHits tracks precache hits.
	PrecacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shell_precache_hits_total",
			Help: "Total number of shell precache hits",
		},
	)

	// PrecacheMisses tracks precache misses.
	PrecacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shell_precache_misses_total",
			Help: "Total number of shell precache misses",
		},
	)

	// PrecacheErrors tracks store operation errors.
	PrecacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_precache_errors_total",
			Help: "Total number of precache operation errors",
		},
		[]string{"operation"}, // "get", "put", "delete"
	)
)
