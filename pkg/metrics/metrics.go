// Package metrics provides the centralized Prometheus metrics registry for
// the shardlist service. All metrics are defined in their respective
// packages (cluster, statcache, stats, server) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the shardlist service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cluster API Metrics (pkg/cluster):
//   - shardlist_cluster_requests_total{endpoint, status} (Counter): Admin API requests by endpoint and HTTP status
//   - shardlist_cluster_request_duration_seconds{endpoint} (Histogram): Admin API request duration by endpoint
//   - shardlist_cluster_errors_total{class} (Counter): Admin API errors by class (client, server, network)
//   - shardlist_cluster_retries_total{error_class} (Counter): Retry attempts by error class
//   - shardlist_cluster_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - shardlist_cluster_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Stats Cache Metrics (pkg/statcache):
//   - shardlist_statcache_hits_total (Counter): Stats cache hits
//   - shardlist_statcache_misses_total (Counter): Stats cache misses
//   - shardlist_statcache_errors_total{operation} (Counter): Cache operation errors
//   - shardlist_statcache_written_bytes_total (Counter): Bytes written to the cache
//
// Stats Fetch Metrics (pkg/stats):
//   - shardlist_stats_fetches_total{source} (Counter): Per-index stats fetches by source (cache, cluster, error)
//
// Listing Metrics (cmd/shardlist-server):
//   - shardlist_pages_total{sort} (Counter): Listing pages served by sort order
//   - shardlist_page_shards (Histogram): Routing entries per served page
//
// Example Prometheus Queries:
//
//   # Stats Cache Hit Rate
//   rate(shardlist_statcache_hits_total[5m]) /
//   (rate(shardlist_statcache_hits_total[5m]) + rate(shardlist_statcache_misses_total[5m]))
//
//   # Admin API Error Rate
//   rate(shardlist_cluster_errors_total[5m])
//
//   # P95 Admin API Latency
//   histogram_quantile(0.95, rate(shardlist_cluster_request_duration_seconds_bucket[5m]))
//
//   # Pages Served Per Second
//   sum(rate(shardlist_pages_total[5m]))
