// Package testutil provides testing utilities for the shardlist service.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/shardlist/shardlist/pkg/cluster"
)

// MockCluster is a configurable mock cluster admin API for testing. It
// serves the cluster-state and per-index stats endpoints the shardlist
// server depends on.
type MockCluster struct {
	server   *httptest.Server
	mu       sync.RWMutex
	snapshot *cluster.Snapshot
	stats    map[string]string
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	StateCount   int
	StatsCount   int
}

// NewMockCluster creates a new mock cluster admin API server.
func NewMockCluster() *MockCluster {
	mock := &MockCluster{
		snapshot: &cluster.Snapshot{
			Indices: map[string]cluster.IndexMetadata{},
			Routing: map[string]cluster.IndexRouting{},
		},
		stats:    make(map[string]string),
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCluster) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCluster) Close() {
	m.server.Close()
}

// SetSnapshot replaces the cluster state served by /_cluster/state.
// Swapping snapshots between calls simulates topology changes.
func (m *MockCluster) SetSnapshot(snap *cluster.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
}

// SetIndexStats configures the stats document served for one index.
func (m *MockCluster) SetIndexStats(index, statsJSON string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[index] = statsJSON
}

// SetHandler sets a custom handler for a specific path, e.g. to inject
// failures.
func (m *MockCluster) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCluster) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

func (m *MockCluster) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch {
	case r.URL.Path == "/_cluster/state":
		m.mu.Lock()
		m.StateCount++
		snap := m.snapshot
		m.mu.Unlock()

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(snap)

	case strings.HasPrefix(r.URL.Path, "/_stats/"):
		index := strings.TrimPrefix(r.URL.Path, "/_stats/")

		m.mu.Lock()
		m.StatsCount++
		statsJSON, ok := m.stats[index]
		m.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"error": "no such index %s"}`, index)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, statsJSON)

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "unknown route"}`)
	}
}

// NewServerErrorHandler returns a handler that always responds 500.
func NewServerErrorHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "internal server error"}`)
	}
}

// NewFlakyHandler returns a handler that fails with 503 for the first
// failures requests and then delegates to next.
func NewFlakyHandler(failures int, next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	var mu sync.Mutex
	count := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()

		if n <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error": "service unavailable"}`)
			return
		}
		next(w, r)
	}
}

// SimpleSnapshot builds a snapshot where every listed index has the given
// creation time and one primary shard entry per shard id.
func SimpleSnapshot(version int64, indices map[string]int64, shardsPerIndex int) *cluster.Snapshot {
	snap := &cluster.Snapshot{
		Version: version,
		Indices: make(map[string]cluster.IndexMetadata),
		Routing: make(map[string]cluster.IndexRouting),
	}
	for name, creationTime := range indices {
		snap.Indices[name] = cluster.IndexMetadata{CreationTime: creationTime}
		routing := cluster.IndexRouting{Shards: make(map[int][]cluster.ShardRouting)}
		for id := 0; id < shardsPerIndex; id++ {
			routing.Shards[id] = []cluster.ShardRouting{{
				Index:   name,
				ShardID: id,
				Node:    "node-0",
				Primary: true,
				State:   "STARTED",
			}}
		}
		snap.Routing[name] = routing
	}
	return snap
}
