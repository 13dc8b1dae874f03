// Package pagination implements stateless, token-resumable pagination over
// the shards of a cluster's indices.
//
// The engine is a pure function from (snapshot, token) to one page: it
// orders indices by creation time, walks their shards to fill a page
// bounded by a maximum entry count, and encodes everything needed to
// resume into an opaque continuation token the client carries. No state
// is held server-side between calls.
//
// Because the topology may change between calls, the token records an
// anchor index (the last index that contributed shards to a page). When
// the anchor can no longer be found at its remembered position, the engine
// scans the sorted sequence backward for a safe resumption point instead
// of failing. Indices created after the first page of a sequence are
// excluded from all later pages of that sequence via the queryStartTime
// bound carried in the token, so concurrent creations can never shift
// positions mid-sequence.
//
// Example usage:
//
//	snap, err := clusterClient.FetchSnapshot(ctx)
//	if err != nil {
//		return err
//	}
//
//	page, err := pagination.Paginate(snap, nil, 5000, pagination.Ascending)
//	if err != nil {
//		return err
//	}
//	// render page.Shards, hand page.NextToken.Encode() to the client;
//	// on the next call decode the token and pass it back in with a
//	// freshly fetched snapshot
//
// The engine:
//   - Never splits a shard across pages (an overflowing shard is deferred whole)
//   - Returns no token when enumeration is complete
//   - Returns an empty terminal page when every resumable index was deleted
//   - Performs no I/O and holds no shared state; safe for concurrent use
package pagination
