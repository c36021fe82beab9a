package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks lookup cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodiv_cache_hits_total",
			Help: "Total number of lookup cache hits",
		},
	)

	// CacheMisses tracks lookup cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodiv_cache_misses_total",
			Help: "Total number of lookup cache misses",
		},
	)

	// CacheStoredBytes tracks bytes written to Redis
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biodiv_cache_stored_bytes_total",
			Help: "Total bytes written to the lookup cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biodiv_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
