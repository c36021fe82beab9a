package cache

import (
	"net/url"
	"strings"
)

// Key identifies a cached lookup.
type Key struct {
	// Service is the API the lookup went to ("checklistbank", "gbif")
	Service string

	// Endpoint is the request path (e.g., "/species/match")
	Endpoint string

	// Query are the request's query parameters
	Query url.Values
}

// String generates a deterministic cache key string.
// Format: biodiv:service:endpoint:<escaped query>
//
// The query part is url.Values.Encode output, sorted by name and escaped, so
// free-text values cannot collide with other parameter sets.
//
// Example:
//
//	biodiv:gbif:species/match:name=Acrididae&rank=FAMILY
func (k Key) String() string {
	parts := []string{"biodiv"}

	if k.Service != "" {
		parts = append(parts, k.Service)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		parts = append(parts, k.Query.Encode())
	}

	return strings.Join(parts, ":")
}
