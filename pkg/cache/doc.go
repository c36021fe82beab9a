// Package cache provides a Redis-backed cache for one-shot API lookups.
//
// Name matches, backbone lookups and name usage searches are stable over
// hours, so repeated quiz rounds and CLI runs can answer them from Redis
// instead of the public APIs. Paged listings are never cached: every bulk
// fetch reads live server state.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Service:  "gbif",
//		Endpoint: "/species/match",
//		Query:    url.Values{"name": []string{"Acrididae"}, "rank": []string{"FAMILY"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch, then:
//		entry, _ = cache.ResponseToEntry(resp, 10*time.Minute)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Expiry
//
// ResponseToEntry honours Cache-Control max-age, then Expires, and falls back
// to the caller's default TTL. Redis drops the key when the entry expires.
//
// # Metrics
//
//   - biodiv_cache_hits_total
//   - biodiv_cache_misses_total
//   - biodiv_cache_stored_bytes_total
//   - biodiv_cache_errors_total{operation}
package cache
