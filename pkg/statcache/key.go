package statcache

import (
	"fmt"
)

// Key identifies one cached stats document.
type Key struct {
	// Index is the index name the stats document belongs to.
	Index string

	// StateVersion is the cluster-state version the document was fetched
	// under. Bumping the version invalidates the entry implicitly.
	StateVersion int64
}

// String generates a deterministic Redis key string.
// Format: shardlist:stats:<index>:v<version>
//
// Example:
//
//	shardlist:stats:logs-2026.08:v1742
func (k Key) String() string {
	return fmt.Sprintf("shardlist:stats:%s:v%d", k.Index, k.StateVersion)
}
