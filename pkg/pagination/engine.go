package pagination

import (
	"fmt"
	"math"

	"github.com/shardlist/shardlist/pkg/cluster"
)

// Page is the output of one pagination call.
type Page struct {
	// Shards holds the routing entries of the page, in sort order across
	// indices and ascending shard id within an index.
	Shards []cluster.ShardRouting

	// QueriedIndices names the indices the page touched, in walk order.
	// Downstream per-index lookups (stats rendering) are keyed by it.
	QueriedIndices []string

	// NextToken resumes the sequence on the following call. Nil means
	// enumeration is complete.
	NextToken *Token
}

// Paginate computes the next page of shard routing entries for the given
// snapshot. token is nil on the first call of a sequence. maxPageSize
// bounds the total number of routing entries per page; a shard whose
// inclusion would exceed the bound is deferred whole to the next page,
// never split.
//
// Paginate is pure: it performs no I/O, holds no state across calls, and
// may be invoked concurrently. The snapshot is treated as fixed for the
// duration of the call.
func Paginate(snap *cluster.Snapshot, token *Token, maxPageSize int, order SortOrder) (*Page, error) {
	if maxPageSize <= 0 {
		return nil, fmt.Errorf("max page size must be positive, got %d", maxPageSize)
	}

	queryStartTime := int64(math.MaxInt64)
	if token != nil {
		queryStartTime = token.QueryStartTime
	}

	indices := SortedIndices(snap, order, queryStartTime)
	if len(indices) == 0 {
		return &Page{}, nil
	}

	// The bound is fixed on the first page: the highest creation time in
	// the sorted sequence. Under descending order that is the front of the
	// sequence, under ascending the back.
	if token == nil {
		if order == Descending {
			queryStartTime = indices[0].CreationTime
		} else {
			queryStartTime = indices[len(indices)-1].CreationTime
		}
	}

	startPos, shardOffset := resolveStart(indices, token, order)

	var (
		entries         []cluster.ShardRouting
		queried         []string
		total           int
		lastShardID     = -1
		stopContributed = false
		overflowed      = false
	)

	pos := startPos
	for ; pos < len(indices); pos++ {
		name := indices[pos].Name
		routing := snap.Routing[name]
		ids := routing.ShardIDs()

		offset := 0
		if pos == startPos {
			offset = shardOffset
		}

		// The previous page consumed this index entirely; its recorded
		// offset is past the last shard. Move on without re-listing it.
		if offset > 0 && (len(ids) == 0 || ids[len(ids)-1] < offset) {
			continue
		}

		included := 0
		for _, id := range ids {
			if id < offset {
				continue
			}
			shardEntries := routing.Shards[id]
			total += len(shardEntries)
			if total > maxPageSize {
				overflowed = true
				break
			}
			entries = append(entries, shardEntries...)
			lastShardID = id
			included++
		}

		if overflowed {
			// An index is only "touched" if at least one of its shards
			// made it into the page; otherwise it is revisited in full.
			if included > 0 {
				queried = append(queried, name)
				stopContributed = true
			}
			break
		}
		queried = append(queried, name)
	}

	page := &Page{Shards: entries, QueriedIndices: queried}
	if !overflowed {
		// Walked off the end of the sequence: enumeration complete.
		return page, nil
	}

	if lastShardID < 0 {
		// Not even one shard fit. With an incoming token, re-issue its
		// resumption state unchanged so the sequence stalls
		// deterministically instead of skipping or splitting a shard. On
		// a first call there is nothing to anchor on; the transport
		// layer's page-size floor keeps this unreachable.
		if token == nil {
			return page, nil
		}
		carried := *token
		carried.QueryStartTime = queryStartTime
		page.NextToken = &carried
		return page, nil
	}

	next := &Token{
		LastShardID:    lastShardID,
		IndexPosition:  pos,
		QueryStartTime: queryStartTime,
	}
	if stopContributed {
		// Page ended mid-index: the stop index itself is the last that
		// contributed, and the recorded shard offset belongs to it.
		next.AnchorIndexName = indices[pos].Name
		next.AnchorCreationTime = indices[pos].CreationTime
	} else {
		// Page ended on an index boundary: the predecessor was the last
		// to respond.
		next.AnchorIndexName = indices[pos-1].Name
		next.AnchorCreationTime = indices[pos-1].CreationTime
	}
	page.NextToken = next
	return page, nil
}

// resolveStart maps an incoming token to the position and shard offset the
// walk starts at. With no token the walk starts at the front.
//
// The anchor index named in the token is the last index that contributed
// shards to a page, and the recorded shard id is the last of its shards
// that was sent. Resumption therefore always starts at the anchor's
// current position just past that shard: if the previous page ended
// mid-anchor its remaining shards follow, and if the anchor was fully
// consumed the walk's skip rule advances to the next index. A mid-index
// stop leaves the anchor at the token position, a boundary stop leaves it
// immediately before; anything else means the topology drifted underneath
// the sequence.
func resolveStart(indices []IndexRef, token *Token, order SortOrder) (int, int) {
	if token == nil {
		return 0, 0
	}

	p := token.IndexPosition
	if p < len(indices) && indices[p].Name == token.AnchorIndexName {
		return p, token.LastShardID + 1
	}
	if p > 0 && p-1 < len(indices) && indices[p-1].Name == token.AnchorIndexName {
		return p - 1, token.LastShardID + 1
	}
	return resolveDrift(indices, token, order)
}

// resolveDrift locates a safe resumption point after the anchor index was
// deleted or displaced. It scans backward from the remembered position for
// the nearest index that sorts at or before the anchor in the active
// (creation time, name) order — an index that was certainly already
// responded — and resumes just after it with a fresh shard offset. If the
// anchor itself turns up at a shifted position, its remaining shards are
// resumed in place. If the scan exhausts without a hit, nothing that was
// already responded survives, and the walk restarts from the front: every
// remaining index is unresponded, so nothing can be duplicated.
func resolveDrift(indices []IndexRef, token *Token, order SortOrder) (int, int) {
	anchor := IndexRef{Name: token.AnchorIndexName, CreationTime: token.AnchorCreationTime}

	pos := min(token.IndexPosition, len(indices)-1)
	for ; pos >= 0; pos-- {
		if indices[pos].Name == anchor.Name {
			return pos, token.LastShardID + 1
		}
		if !order.less(anchor, indices[pos]) {
			return pos + 1, 0
		}
	}
	return 0, 0
}
