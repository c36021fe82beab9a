// Package ratelimit tracks server-imposed cooldowns for the public APIs.
// When ChecklistBank or GBIF answers 429 Too Many Requests or 503 Service
// Unavailable, the Retry-After window is recorded in Redis so that every
// client instance sharing that Redis backs off until the window closes.
package ratelimit

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RedisKeyPrefix prefixes the per-service cooldown key.
const RedisKeyPrefix = "biodiv:cooldown:"

// Cooldown bounds.
const (
	// DefaultCooldown applies when the server sends no usable Retry-After.
	DefaultCooldown = 30 * time.Second

	// MaxCooldown caps a Retry-After value so a bogus header cannot stall clients for hours.
	MaxCooldown = 10 * time.Minute
)

// CooldownState is the stored cooldown for one service.
type CooldownState struct {
	// Service is the API the cooldown applies to.
	Service string `json:"service"`

	// BlockedUntil is when requests may resume.
	BlockedUntil time.Time `json:"blocked_until"`

	// StatusCode is the response status that triggered the cooldown.
	StatusCode int `json:"status_code"`

	// LastUpdate is when the state was written.
	LastUpdate time.Time `json:"last_update"`
}

// IsBlocked returns true while the cooldown window is open.
func (s *CooldownState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilReset returns the duration until requests may resume.
// Returns 0 if the cooldown has already passed.
func (s *CooldownState) TimeUntilReset() time.Duration {
	duration := time.Until(s.BlockedUntil)
	if duration < 0 {
		return 0
	}
	return duration
}

// RedisKey returns the Redis key holding the cooldown for service.
func RedisKey(service string) string {
	return RedisKeyPrefix + service
}

// NeedsCooldown reports whether a response status asks the client to back off.
func NeedsCooldown(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode == http.StatusServiceUnavailable
}

// ParseRetryAfter parses a Retry-After header given either as delay seconds
// or as an HTTP date. The result is capped at MaxCooldown.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		if secs < 0 {
			return 0, false
		}
		// Compare in seconds; the Duration product overflows for large values.
		if secs > int64(MaxCooldown/time.Second) {
			return MaxCooldown, true
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}

	if d > MaxCooldown {
		d = MaxCooldown
	}
	return d, true
}
