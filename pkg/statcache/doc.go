// Package statcache caches per-index stats documents in Redis.
//
// Stats documents are expensive to compute on the cluster side, and a page
// of shard listings frequently revisits the same indices across calls. The
// cache keys every document by index name and the cluster-state version it
// was fetched under, so a topology change never serves stale routing-derived
// numbers: a new state version simply misses and refetches.
//
// Entries carry their own expiry and are stored with a matching Redis TTL,
// so Redis evicts them without a sweeper.
package statcache
