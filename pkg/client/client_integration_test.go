//go:build integration

package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/biodiv-client/internal/testutil"
	"github.com/Sternrassler/biodiv-client/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_LookupCache(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/species/match", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"usageKey":52}`,
		Headers:    map[string]string{"Cache-Control": "max-age=2"},
	})

	c := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()
	values := map[string][]string{"name": {"Vespidae"}}

	var out struct {
		UsageKey int `json:"usageKey"`
	}
	if err := c.GetJSON(ctx, ServiceGBIF, "/v1/species/match", values, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if err := c.GetJSON(ctx, ServiceGBIF, "/v1/species/match", values, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1 (second lookup cached)", mock.RequestCount())
	}

	key := cache.Key{Service: ServiceGBIF, Endpoint: "/v1/species/match", Query: values}
	ttl, err := redisClient.TTL(ctx, key.String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > 2*time.Second {
		t.Errorf("cache TTL = %v, want within (0, 2s]", ttl)
	}

	time.Sleep(2500 * time.Millisecond)

	if err := c.GetJSON(ctx, ServiceGBIF, "/v1/species/match", values, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("RequestCount = %d, want 2 after expiry", mock.RequestCount())
	}
}

func TestIntegration_CooldownSharedBetweenClients(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/dataset", testutil.MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Headers:    map[string]string{"Retry-After": "30"},
	})

	first := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	second := newTestClient(t, mock, func(cfg *Config) { cfg.Redis = redisClient })
	ctx := context.Background()

	if _, err := first.Get(ctx, ServiceChecklistBank, "/dataset", nil); err == nil {
		t.Fatal("expected error for 503")
	}

	_, err := second.Get(ctx, ServiceChecklistBank, "/dataset", nil)
	if Classify(err) != ErrorClassRateLimit {
		t.Errorf("Classify() = %q, want rate_limit", Classify(err))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount = %d, want 1", mock.RequestCount())
	}
}
