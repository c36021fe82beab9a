package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestCooldownState_IsBlocked(t *testing.T) {
	tests := []struct {
		name         string
		blockedUntil time.Time
		want         bool
	}{
		{name: "future window", blockedUntil: time.Now().Add(time.Minute), want: true},
		{name: "past window", blockedUntil: time.Now().Add(-time.Minute), want: false},
		{name: "zero state", blockedUntil: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &CooldownState{Service: "gbif", BlockedUntil: tt.blockedUntil}
			if got := state.IsBlocked(); got != tt.want {
				t.Errorf("IsBlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCooldownState_TimeUntilReset(t *testing.T) {
	state := &CooldownState{BlockedUntil: time.Now().Add(-5 * time.Second)}
	if got := state.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0 for past window", got)
	}

	state.BlockedUntil = time.Now().Add(20 * time.Second)
	got := state.TimeUntilReset()
	if got <= 15*time.Second || got > 20*time.Second {
		t.Errorf("TimeUntilReset() = %v, want about 20s", got)
	}
}

func TestNeedsCooldown(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		if got := NeedsCooldown(tt.status); got != tt.want {
			t.Errorf("NeedsCooldown(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "empty", value: "", wantOK: false},
		{name: "seconds", value: "45", want: 45 * time.Second, wantOK: true},
		{name: "padded seconds", value: " 5 ", want: 5 * time.Second, wantOK: true},
		{name: "negative seconds", value: "-3", wantOK: false},
		{name: "capped", value: "86400", want: MaxCooldown, wantOK: true},
		{name: "duration overflow capped", value: "99999999999999", want: MaxCooldown, wantOK: true},
		{name: "beyond int64 capped", value: "99999999999999999999999", want: MaxCooldown, wantOK: true},
		{name: "hugely negative", value: "-99999999999999999999999", wantOK: false},
		{name: "far future http date", value: "Fri, 31 Dec 9999 23:59:59 GMT", want: MaxCooldown, wantOK: true},
		{name: "http date", value: "Wed, 01 May 2024 12:01:30 GMT", want: 90 * time.Second, wantOK: true},
		{name: "http date in the past", value: "Wed, 01 May 2024 11:00:00 GMT", want: 0, wantOK: true},
		{name: "garbage", value: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.value, now)
			if ok != tt.wantOK {
				t.Fatalf("ParseRetryAfter(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRedisKey(t *testing.T) {
	if got := RedisKey("checklistbank"); got != "biodiv:cooldown:checklistbank" {
		t.Errorf("RedisKey() = %q", got)
	}
}
