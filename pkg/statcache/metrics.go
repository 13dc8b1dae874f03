package statcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks stats cache hits
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shardlist_statcache_hits_total",
			Help: "Total number of stats cache hits",
		},
	)

	// CacheMisses tracks stats cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shardlist_statcache_misses_total",
			Help: "Total number of stats cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shardlist_statcache_errors_total",
			Help: "Total number of stats cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// CacheSize tracks bytes written to the cache
	CacheSize = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shardlist_statcache_written_bytes_total",
			Help: "Total bytes written to the stats cache",
		},
	)
)
