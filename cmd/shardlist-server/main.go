package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/shardlist/shardlist/pkg/cluster"
	"github.com/shardlist/shardlist/pkg/logging"
	"github.com/shardlist/shardlist/pkg/pagination"
	"github.com/shardlist/shardlist/pkg/statcache"
	"github.com/shardlist/shardlist/pkg/stats"
)

// Page size bounds for the listing endpoint.
const (
	defaultPageSize = 5000
	minPageSize     = 5000
	maxPageSize     = 50000
)

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardlist_pages_total",
		Help: "Listing pages served by sort order",
	}, []string{"sort"})

	pageShards = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shardlist_page_shards",
		Help:    "Routing entries per served page",
		Buckets: []float64{100, 500, 1000, 5000, 10000, 25000, 50000},
	})
)

func main() {
	// Configuration from environment
	clusterURL := getEnv("CLUSTER_URL", "http://localhost:9200")
	redisURL := getEnv("REDIS_URL", "")
	port := getEnv("PORT", "8080")
	logLevel := getEnv("LOG_LEVEL", "info")

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Output: os.Stderr,
	})

	clusterClient, err := cluster.New(cluster.DefaultConfig(clusterURL))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cluster client")
	}

	// The stats cache is optional; without Redis every page fetches stats
	// from the cluster directly.
	var cache stats.Cache
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cache = statcache.NewManager(redisClient, statcache.DefaultTTL)
		log.Info().Str("redis_url", redisURL).Msg("Stats cache enabled")
	}

	statsFetcher := stats.NewFetcher(clusterClient, cache, stats.DefaultConfig())

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(clusterClient, redisClient))
	http.HandleFunc("/_list/shards", listShardsHandler(clusterClient, statsFetcher))
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	log.Info().Str("addr", addr).Str("cluster_url", clusterURL).Msg("Starting shardlist server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness: the cluster admin API must be reachable,
// and Redis too when the cache is configured.
func readyHandler(clusterClient *cluster.Client, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if _, err := clusterClient.FetchSnapshot(ctx); err != nil {
			http.Error(w, fmt.Sprintf("cluster not reachable: %v", err), http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis not reachable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// listShardsResponse is the JSON body of a listing page.
type listShardsResponse struct {
	Shards    []cluster.ShardRouting     `json:"shards"`
	Stats     map[string]json.RawMessage `json:"stats,omitempty"`
	NextToken *string                    `json:"next_token,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func listShardsHandler(clusterClient *cluster.Client, statsFetcher *stats.Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "only GET is supported")
			return
		}

		size, order, token, err := parseListParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		// A fresh snapshot per call; pagination never caches topology.
		snap, err := clusterClient.FetchSnapshot(ctx)
		if err != nil {
			writeError(w, http.StatusBadGateway, fmt.Sprintf("fetch cluster state: %v", err))
			return
		}

		page, err := pagination.Paginate(snap, token, size, order)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := listShardsResponse{Shards: page.Shards}
		if resp.Shards == nil {
			resp.Shards = []cluster.ShardRouting{}
		}
		if statsFetcher != nil && len(page.QueriedIndices) > 0 {
			resp.Stats = statsFetcher.FetchAll(ctx, snap.Version, page.QueriedIndices)
		}
		if page.NextToken != nil {
			encoded := page.NextToken.Encode()
			resp.NextToken = &encoded
		}

		pagesTotal.WithLabelValues(order.String()).Inc()
		pageShards.Observe(float64(len(page.Shards)))

		log.Debug().
			Int("shards", len(page.Shards)).
			Int("indices", len(page.QueriedIndices)).
			Int64("version", snap.Version).
			Bool("has_next", page.NextToken != nil).
			Msg("Served listing page")

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Warn().Err(err).Msg("Failed to write response")
		}
	}
}

// parseListParams validates the listing query parameters: next_token, size
// and sort.
func parseListParams(r *http.Request) (int, pagination.SortOrder, *pagination.Token, error) {
	query := r.URL.Query()

	size := defaultPageSize
	if raw := query.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("invalid size %q", raw)
		}
		if parsed < minPageSize || parsed > maxPageSize {
			return 0, 0, nil, fmt.Errorf("size must be between %d and %d, got %d", minPageSize, maxPageSize, parsed)
		}
		size = parsed
	}

	order := pagination.Ascending
	if raw := query.Get("sort"); raw != "" {
		parsed, err := pagination.ParseSortOrder(raw)
		if err != nil {
			return 0, 0, nil, err
		}
		order = parsed
	}

	var token *pagination.Token
	if raw := query.Get("next_token"); raw != "" {
		parsed, err := pagination.DecodeToken(raw)
		if err != nil {
			return 0, 0, nil, err
		}
		token = &parsed
	}

	return size, order, token, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
