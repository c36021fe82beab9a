package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	cooldownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_cooldowns_total",
		Help: "Total number of server-imposed cooldowns by service",
	}, []string{"service"})

	cooldownBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_cooldown_blocks_total",
		Help: "Total number of requests blocked by an active cooldown by service",
	}, []string{"service"})
)

// Tracker records server cooldowns and gates requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new cooldown tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the cooldown for service.
// Returns a zero, unblocked state if none is stored.
func (t *Tracker) GetState(ctx context.Context, service string) (*CooldownState, error) {
	data, err := t.redis.Get(ctx, RedisKey(service)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &CooldownState{Service: service}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cooldown state: %w", err)
	}

	var state CooldownState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse cooldown state: %w", err)
	}
	return &state, nil
}

// UpdateFromResponse opens a cooldown when statusCode is 429 or 503.
// An existing cooldown is only ever extended, never shortened.
func (t *Tracker) UpdateFromResponse(ctx context.Context, service string, statusCode int, headers http.Header) error {
	if !NeedsCooldown(statusCode) {
		return nil
	}

	now := time.Now()
	wait, ok := ParseRetryAfter(headers.Get("Retry-After"), now)
	if !ok {
		wait = DefaultCooldown
	}

	current, err := t.GetState(ctx, service)
	if err != nil {
		return err
	}

	until := now.Add(wait)
	if !until.After(current.BlockedUntil) {
		return nil
	}

	state := &CooldownState{
		Service:      service,
		BlockedUntil: until,
		StatusCode:   statusCode,
		LastUpdate:   now,
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cooldown state: %w", err)
	}

	// A zero wait still needs a positive expiry for SET.
	expiry := wait
	if expiry < time.Millisecond {
		expiry = time.Millisecond
	}
	if err := t.redis.Set(ctx, RedisKey(service), data, expiry).Err(); err != nil {
		return fmt.Errorf("store cooldown state in redis: %w", err)
	}

	cooldownsTotal.WithLabelValues(service).Inc()
	t.logger.Warn().
		Str("service", service).
		Int("status_code", statusCode).
		Dur("cooldown", wait).
		Msg("Server requested backoff - cooldown started")

	return nil
}

// ShouldAllowRequest reports whether a request to service may proceed and,
// if not, how long the caller should wait.
func (t *Tracker) ShouldAllowRequest(ctx context.Context, service string) (bool, time.Duration, error) {
	state, err := t.GetState(ctx, service)
	if err != nil {
		return false, 0, fmt.Errorf("get cooldown state: %w", err)
	}

	if state.IsBlocked() {
		wait := state.TimeUntilReset()
		t.logger.Debug().
			Str("service", service).
			Dur("wait_duration", wait).
			Msg("Cooldown active - blocking request")

		cooldownBlocksTotal.WithLabelValues(service).Inc()
		return false, wait, nil
	}

	return true, 0, nil
}

// Clear removes any cooldown for service.
func (t *Tracker) Clear(ctx context.Context, service string) error {
	if err := t.redis.Del(ctx, RedisKey(service)).Err(); err != nil {
		return fmt.Errorf("clear cooldown state: %w", err)
	}
	return nil
}
