// Package cluster provides the cluster-state data model and an HTTP
// client for fetching coherent state snapshots from the cluster admin API.
package cluster

import (
	"sort"
)

// ShardRouting is a single routing entry (replica) of a shard.
type ShardRouting struct {
	// Index is the name of the index the shard belongs to.
	Index string `json:"index"`

	// ShardID is the shard number within the index.
	ShardID int `json:"shard"`

	// Node is the node currently hosting this copy ("" if unassigned).
	Node string `json:"node"`

	// Primary marks the primary copy; false for replicas.
	Primary bool `json:"primary"`

	// State is the allocation state (STARTED, INITIALIZING, RELOCATING, UNASSIGNED).
	State string `json:"state"`
}

// IndexMetadata holds the per-index metadata the pagination engine needs.
type IndexMetadata struct {
	// CreationTime is the index creation timestamp in epoch milliseconds.
	CreationTime int64 `json:"creation_time"`
}

// IndexRouting maps shard ids to their routing entries for one index.
// Shard ids are small non-negative integers; they are ordered and
// enumerable but not guaranteed contiguous.
type IndexRouting struct {
	Shards map[int][]ShardRouting `json:"shards"`
}

// ShardIDs returns the shard ids of the index in ascending order.
func (r IndexRouting) ShardIDs() []int {
	ids := make([]int, 0, len(r.Shards))
	for id := range r.Shards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Snapshot is one coherent read of the cluster topology. It is treated as
// immutable for the duration of a single pagination call; callers fetch a
// fresh snapshot per call.
type Snapshot struct {
	// Version is the cluster-state version the snapshot was taken at.
	Version int64 `json:"version"`

	// Indices maps index name to its metadata.
	Indices map[string]IndexMetadata `json:"indices"`

	// Routing maps index name to its shard routing table.
	Routing map[string]IndexRouting `json:"routing"`
}

// CreationTime returns the creation timestamp of the named index.
// The second return value is false if the index is not in the snapshot.
func (s *Snapshot) CreationTime(index string) (int64, bool) {
	meta, ok := s.Indices[index]
	if !ok {
		return 0, false
	}
	return meta.CreationTime, true
}

// RoutingEntries returns the routing entries of one shard of one index.
func (s *Snapshot) RoutingEntries(index string, shardID int) []ShardRouting {
	return s.Routing[index].Shards[shardID]
}
