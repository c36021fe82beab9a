// Package metrics exposes the biodiv client's Prometheus metrics over HTTP.
// Collectors are defined with promauto in the packages that own them
// (pagination, client, cache, ratelimit) and register on the default registry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Path is the scrape path served by Serve.
const Path = "/metrics"

// Registry is the default Prometheus registry used by the client.
var Registry = prometheus.DefaultRegisterer

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return HandlerFor(prometheus.DefaultGatherer)
}

// HandlerFor returns a scrape handler for g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve serves Handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(Path, Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	}
}

// Metrics reference
//
// Fetch metrics (pkg/pagination), labelled by strategy (sequential, concurrent)
// except the in-flight gauge:
//   - biodiv_fetch_pages_total (Counter): pages fetched
//   - biodiv_fetch_records_total (Counter): records returned by completed fetches
//   - biodiv_fetch_failures_total (Counter): fetches aborted by a failed page
//   - biodiv_fetch_duration_seconds (Histogram): whole-fetch duration
//   - biodiv_fetch_inflight_pages (Gauge): concurrent page requests in flight
//
// Request metrics (pkg/client):
//   - biodiv_requests_total{service, status} (Counter)
//   - biodiv_request_duration_seconds{service} (Histogram)
//   - biodiv_errors_total{class} (Counter): client, server, rate_limit, network, parse
//   - biodiv_circuit_breaker_state{service} (Gauge): 0 closed, 1 half-open, 2 open
//
// Cache metrics (pkg/cache):
//   - biodiv_cache_hits_total, biodiv_cache_misses_total (Counter)
//   - biodiv_cache_stored_bytes_total (Counter)
//   - biodiv_cache_errors_total{operation} (Counter)
//
// Cooldown metrics (pkg/ratelimit):
//   - biodiv_cooldowns_total{service} (Counter): 429/503 responses that started a cooldown
//   - biodiv_cooldown_blocks_total{service} (Counter): requests refused during a cooldown
//
// Example queries:
//
//	# Page throughput
//	sum(rate(biodiv_fetch_pages_total[5m])) by (strategy)
//
//	# Error rate by class
//	sum(rate(biodiv_errors_total[5m])) by (class)
//
//	# P95 request latency
//	histogram_quantile(0.95, rate(biodiv_request_duration_seconds_bucket[5m]))
