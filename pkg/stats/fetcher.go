// Package stats fetches per-index stats documents for a page of shard
// listings, fanning out over a bounded worker pool with a cache in front.
package stats

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/shardlist/shardlist/pkg/statcache"
)

var statsFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shardlist_stats_fetches_total",
	Help: "Total per-index stats fetches by source",
}, []string{"source"}) // "cache", "cluster", "error"

// Source fetches one raw stats document from the cluster admin API.
type Source interface {
	FetchIndexStats(ctx context.Context, index string) ([]byte, error)
}

// Cache is the subset of the stats cache the fetcher uses.
type Cache interface {
	Get(ctx context.Context, key statcache.Key) (*statcache.Entry, error)
	Set(ctx context.Context, key statcache.Key, entry *statcache.Entry) error
}

// Config holds fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel stats requests
	MaxConcurrency int
	// Timeout per index fetch
	Timeout time.Duration
}

// DefaultConfig returns safe default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// Fetcher resolves stats documents for the indices a page touched.
type Fetcher struct {
	source Source
	cache  Cache // nil disables caching
	config Config
}

// NewFetcher creates a new fetcher. cache may be nil.
func NewFetcher(source Source, cache Cache, config Config) *Fetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Fetcher{
		source: source,
		cache:  cache,
		config: config,
	}
}

type indexResult struct {
	Index string
	Stats json.RawMessage
	Error error
}

// FetchAll resolves stats documents for the given indices in parallel.
// stateVersion keys the cache so documents never outlive the cluster state
// they were fetched under. Indices that fail to resolve are omitted from
// the result; the page itself is still served.
func (f *Fetcher) FetchAll(ctx context.Context, stateVersion int64, indices []string) map[string]json.RawMessage {
	start := time.Now()
	results := make(map[string]json.RawMessage, len(indices))
	if len(indices) == 0 {
		return results
	}

	// Cache pass first; only misses go to the cluster.
	var misses []string
	for _, index := range indices {
		if f.cache == nil {
			misses = append(misses, index)
			continue
		}
		key := statcache.Key{Index: index, StateVersion: stateVersion}
		entry, err := f.cache.Get(ctx, key)
		if err != nil {
			misses = append(misses, index)
			continue
		}
		statsFetchesTotal.WithLabelValues("cache").Inc()
		results[index] = json.RawMessage(entry.Stats)
	}

	if len(misses) == 0 {
		return results
	}

	queue := make(chan string, len(misses))
	out := make(chan indexResult, len(misses))

	for _, index := range misses {
		queue <- index
	}
	close(queue)

	var wg sync.WaitGroup
	workers := f.config.MaxConcurrency
	if workers > len(misses) {
		workers = len(misses)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go f.worker(ctx, stateVersion, queue, out, &wg, i)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	failed := 0
	for result := range out {
		if result.Error != nil {
			failed++
			continue
		}
		results[result.Index] = result.Stats
	}

	if failed > 0 {
		log.Warn().
			Int("failed", failed).
			Int("requested", len(indices)).
			Msg("Serving page with partial stats")
	}
	log.Debug().
		Int("indices", len(indices)).
		Int("cache_hits", len(indices)-len(misses)).
		Dur("duration", time.Since(start)).
		Msg("Stats fetch complete")

	return results
}

// worker processes indices from the queue
func (f *Fetcher) worker(ctx context.Context, stateVersion int64, queue <-chan string, out chan<- indexResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for index := range queue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Msg("Stats worker stopping (context cancelled)")
			return
		default:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
		data, err := f.source.FetchIndexStats(fetchCtx, index)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("index", index).
				Msg("Index stats fetch failed")
			statsFetchesTotal.WithLabelValues("error").Inc()

			select {
			case out <- indexResult{Index: index, Error: err}:
			case <-ctx.Done():
				return
			}
			continue
		}

		statsFetchesTotal.WithLabelValues("cluster").Inc()
		if f.cache != nil {
			key := statcache.Key{Index: index, StateVersion: stateVersion}
			if err := f.cache.Set(ctx, key, &statcache.Entry{Stats: data}); err != nil {
				log.Warn().Err(err).Str("index", index).Msg("Stats cache write failed")
			}
		}

		select {
		case out <- indexResult{Index: index, Stats: json.RawMessage(data)}:
		case <-ctx.Done():
			return
		}
	}
}
