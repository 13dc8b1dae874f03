package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for cluster API operations.
var (
	clusterRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardlist_cluster_requests_total",
		Help: "Total cluster API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	clusterRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shardlist_cluster_request_duration_seconds",
		Help:    "Cluster API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	clusterErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardlist_cluster_errors_total",
		Help: "Total cluster API errors by class",
	}, []string{"class"})
)

// Client fetches cluster state and index stats from the cluster admin API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the cluster client configuration.
type Config struct {
	// BaseURL is the cluster admin API base URL, e.g. "http://localhost:9200".
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Retry configures the backoff behaviour for transient failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// New creates a new cluster client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cluster base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "cluster-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// FetchSnapshot retrieves one coherent cluster-state snapshot. The snapshot
// must be fetched fresh before every pagination call; it is never cached.
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	body, err := c.get(ctx, "/_cluster/state")
	if err != nil {
		return nil, fmt.Errorf("fetch cluster state: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode cluster state: %w", err)
	}

	c.logger.Debug().
		Int64("version", snap.Version).
		Int("indices", len(snap.Indices)).
		Msg("Fetched cluster snapshot")

	return &snap, nil
}

// FetchIndexStats retrieves the raw stats document for one index.
func (c *Client) FetchIndexStats(ctx context.Context, index string) ([]byte, error) {
	body, err := c.get(ctx, "/_stats/"+index)
	if err != nil {
		return nil, fmt.Errorf("fetch stats for %s: %w", index, err)
	}
	return body, nil
}

// get performs a GET against the admin API with retry, metrics and error
// classification.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		clusterRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var body []byte

	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Cluster API request failed")
			clusterErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			clusterRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			clusterErrorsTotal.WithLabelValues(string(errClass)).Inc()
			clusterRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Cluster API request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			clusterErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{ErrorClass: ErrorClassNetwork, Message: "read body", Err: err}
		}

		clusterRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, classifyError)

	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// classifyStatus categorizes an HTTP status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyError categorizes an error for retry decisions.
func classifyError(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
