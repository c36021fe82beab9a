// Package client provides the HTTP client for the ChecklistBank and GBIF APIs
// with cooldown tracking, lookup caching, and a per-service circuit breaker.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/biodiv-client/pkg/cache"
	"github.com/Sternrassler/biodiv-client/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Service names.
const (
	ServiceChecklistBank = "checklistbank"
	ServiceGBIF          = "gbif"
)

// Default base URLs.
const (
	DefaultChecklistBankURL = "https://api.checklistbank.org"
	DefaultGBIFURL          = "https://api.gbif.org"
)

// errServerFailure marks 5xx responses as failures for the circuit breaker.
var errServerFailure = errors.New("server failure")

// Client is the shared HTTP client for all services.
type Client struct {
	httpClient *http.Client
	cooldown   *ratelimit.Tracker
	cache      *cache.Manager
	breakers   map[string]*gobreaker.CircuitBreaker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis enables the lookup cache and shared cooldown tracking (optional).
	Redis *redis.Client

	// User-Agent header sent with every request.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout bounds a single request.
	Timeout time.Duration

	// BaseURLs maps service name to base URL.
	BaseURLs map[string]string

	// CacheTTL is the lookup cache lifetime when the response sets none.
	CacheTTL time.Duration

	// BreakerFailures is the number of consecutive failures that opens a
	// service's circuit. 0 disables the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long an open circuit stays open.
	BreakerTimeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		BaseURLs: map[string]string{
			ServiceChecklistBank: DefaultChecklistBankURL,
			ServiceGBIF:          DefaultGBIFURL,
		},
		CacheTTL:        cache.DefaultTTL,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if len(cfg.BaseURLs) == 0 {
		return nil, fmt.Errorf("at least one base url is required")
	}
	for service, base := range cfg.BaseURLs {
		if _, err := url.Parse(base); err != nil || base == "" {
			return nil, fmt.Errorf("invalid base url for %s: %q", service, base)
		}
	}

	logger := log.With().Str("component", "biodiv-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(cfg.BaseURLs)),
		config:   cfg,
		logger:   logger,
	}

	if cfg.Redis != nil {
		c.cooldown = ratelimit.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	if cfg.BreakerFailures > 0 {
		for service := range cfg.BaseURLs {
			c.breakers[service] = c.newBreaker(service)
		}
	}

	return c, nil
}

func (c *Client) newBreaker(service string) *gobreaker.CircuitBreaker {
	threshold := c.config.BreakerFailures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    service,
		Timeout: c.config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.WithLabelValues(name).Set(float64(to))
			c.logger.Warn().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// Do performs a single request against service. There are no retries.
//
// Any non-2xx response is returned as a *TransportError with the body
// closed; on success the caller owns the response body.
func (c *Client) Do(service string, req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	target := req.URL.String()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(service).Observe(time.Since(startTime).Seconds())
	}()

	if c.cooldown != nil {
		allowed, wait, err := c.cooldown.ShouldAllowRequest(ctx, service)
		if err != nil {
			// A broken cooldown store must not stop traffic.
			c.logger.Warn().Err(err).Str("service", service).Msg("Cooldown check failed")
		} else if !allowed {
			requestsTotal.WithLabelValues(service, "throttled").Inc()
			errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, fmt.Errorf("%w: %s retry in %s", ErrThrottled, service, wait.Round(time.Second))
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("service", service).
		Str("url", target).
		Msg("Executing request")

	send := func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerFailure
		}
		return resp, nil
	}

	var (
		result interface{}
		err    error
	)
	if breaker, ok := c.breakers[service]; ok {
		result, err = breaker.Execute(send)
	} else {
		result, err = send()
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		requestsTotal.WithLabelValues(service, "circuit_open").Inc()
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, service)
	}

	resp, _ := result.(*http.Response)
	if resp == nil {
		requestsTotal.WithLabelValues(service, "network_error").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Warn().Err(err).Str("url", target).Msg("HTTP request failed")
		return nil, &TransportError{URL: target, Err: err}
	}

	requestsTotal.WithLabelValues(service, strconv.Itoa(resp.StatusCode)).Inc()

	if c.cooldown != nil {
		if err := c.cooldown.UpdateFromResponse(ctx, service, resp.StatusCode, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cooldown from response")
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		transportErr := &TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        target,
		}
		errorsTotal.WithLabelValues(string(transportErr.Class())).Inc()
		c.logger.Warn().
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("error_class", string(transportErr.Class())).
			Msg("Request error")
		return nil, transportErr
	}

	return resp, nil
}

// URL builds the request URL for endpoint on service.
func (c *Client) URL(service, endpoint string, values url.Values) (string, error) {
	base, ok := c.config.BaseURLs[service]
	if !ok {
		return "", fmt.Errorf("unknown service %q", service)
	}

	target := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
	if len(values) > 0 {
		target += "?" + values.Encode()
	}
	return target, nil
}

// Get performs a GET request to an endpoint of service.
func (c *Client) Get(ctx context.Context, service, endpoint string, values url.Values) (*http.Response, error) {
	target, err := c.URL(service, endpoint, values)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(service, req)
}

// GetJSON performs a one-shot lookup and decodes the JSON body into out.
// Successful lookups are served from and stored in the Redis cache when one
// is configured.
func (c *Client) GetJSON(ctx context.Context, service, endpoint string, values url.Values, out any) error {
	key := cache.Key{Service: service, Endpoint: endpoint, Query: values}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			if err := decodeInto(entry.Data, out); err == nil {
				c.logger.Debug().Str("key", key.String()).Msg("Lookup served from cache")
				return nil
			}
			c.logger.Warn().Str("key", key.String()).Msg("Undecodable cache entry dropped")
			_ = c.cache.Delete(ctx, key)
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
	}

	resp, err := c.Get(ctx, service, endpoint, values)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body []byte
	var entry *cache.Entry
	if c.cache != nil {
		entry, err = cache.ResponseToEntry(resp, c.config.CacheTTL)
		if err == nil {
			body = entry.Data
		}
	} else {
		body, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &TransportError{URL: resp.Request.URL.String(), Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
		return &ParseError{URL: resp.Request.URL.String(), Err: err}
	}

	if entry != nil {
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache lookup")
		}
	}

	return nil
}

// decodeInto writes data into out only when the whole document decodes, so a
// failed decode leaves out untouched.
func decodeInto(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return json.Unmarshal(data, out)
	}

	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// Close closes idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the lookup cache manager, or nil without Redis.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
