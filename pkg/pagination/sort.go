package pagination

import (
	"fmt"
	"sort"

	"github.com/shardlist/shardlist/pkg/cluster"
)

// SortOrder determines the direction indices are enumerated in,
// applied to their creation timestamps.
type SortOrder int

const (
	// Ascending enumerates indices oldest first.
	Ascending SortOrder = iota

	// Descending enumerates indices newest first.
	Descending
)

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// ParseSortOrder parses the request-level sort parameter.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "ascending":
		return Ascending, nil
	case "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("value of sort can either be ascending or descending, got %q", s)
	}
}

// IndexRef identifies one index within a sorted sequence.
type IndexRef struct {
	Name         string
	CreationTime int64
}

// less reports whether a sorts strictly before b under o. Creation time is
// the primary key; identical timestamps are broken by index name in the
// sort direction, which keeps the order total and deterministic.
func (o SortOrder) less(a, b IndexRef) bool {
	if a.CreationTime != b.CreationTime {
		if o == Descending {
			return a.CreationTime > b.CreationTime
		}
		return a.CreationTime < b.CreationTime
	}
	if o == Descending {
		return a.Name > b.Name
	}
	return a.Name < b.Name
}

// SortedIndices returns the indices of the snapshot whose creation time is
// at or before queryStartTime, sorted by creation time per the sort order.
// Indices created after queryStartTime are excluded so that concurrent
// creations cannot shift positions between the pages of one sequence.
func SortedIndices(snap *cluster.Snapshot, order SortOrder, queryStartTime int64) []IndexRef {
	refs := make([]IndexRef, 0, len(snap.Indices))
	for name, meta := range snap.Indices {
		if meta.CreationTime > queryStartTime {
			continue
		}
		refs = append(refs, IndexRef{Name: name, CreationTime: meta.CreationTime})
	}
	sort.Slice(refs, func(i, j int) bool {
		return order.less(refs[i], refs[j])
	})
	return refs
}
