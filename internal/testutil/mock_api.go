// Package testutil provides a mock ChecklistBank/GBIF server for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines a fixed response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// PagedEndpoint describes an offset/limit endpoint serving Total records.
type PagedEndpoint struct {
	// Total is the declared total and the number of records served.
	Total int

	// RecordsKey and TotalKey name the response fields
	// (default "result" and "total").
	RecordsKey string
	TotalKey   string

	// Record builds record i. Defaults to {"id": i}.
	Record func(i int) any

	// Status overrides the response status for the page at an offset.
	Status map[int]int

	// Headers are sent with status overrides (e.g. Retry-After).
	Headers map[string]string

	// Empty serves an empty record list at an offset.
	Empty map[int]bool

	// Malformed serves an invalid JSON body at an offset.
	Malformed map[int]bool

	// OmitTotal leaves the total key out of the page at an offset.
	OmitTotal map[int]bool

	// Delay is applied to every page; DelayAt overrides it per offset.
	Delay   time.Duration
	DelayAt map[int]time.Duration
}

// PageRequest is one observed page request.
type PageRequest struct {
	Offset int
	Limit  int
}

// MockAPI is a configurable mock API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc

	requestCount      int
	lastRequestHeader http.Header
	pageRequests      map[string][]PageRequest
	inFlight          int
	maxInFlight       int
}

// NewMockAPI creates and starts a new mock server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:     make(map[string]http.HandlerFunc),
		pageRequests: make(map[string][]PageRequest),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastRequestHeader = r.Header.Clone()
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		if !exists {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		handler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequestHeader = nil
	m.pageRequests = make(map[string][]PageRequest)
	m.maxInFlight = 0
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetJSON serves v as a 200 JSON response on path.
func (m *MockAPI) SetJSON(path string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	m.SetResponse(path, MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// SetPaged serves ep on path.
func (m *MockAPI) SetPaged(path string, ep PagedEndpoint) {
	if ep.RecordsKey == "" {
		ep.RecordsKey = "result"
	}
	if ep.TotalKey == "" {
		ep.TotalKey = "total"
	}
	if ep.Record == nil {
		ep.Record = func(i int) any { return map[string]int{"id": i} }
	}

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		m.mu.Lock()
		m.pageRequests[path] = append(m.pageRequests[path], PageRequest{Offset: offset, Limit: limit})
		m.mu.Unlock()

		delay := ep.Delay
		if d, ok := ep.DelayAt[offset]; ok {
			delay = d
		}
		if delay > 0 {
			time.Sleep(delay)
		}

		if status, ok := ep.Status[offset]; ok {
			for key, value := range ep.Headers {
				w.Header().Set(key, value)
			}
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"injected failure"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if ep.Malformed[offset] {
			w.Write([]byte(`{"` + ep.RecordsKey + `": [`))
			return
		}

		records := []any{}
		if !ep.Empty[offset] {
			for i := offset; i < offset+limit && i < ep.Total; i++ {
				records = append(records, ep.Record(i))
			}
		}

		body := map[string]any{
			"offset":       offset,
			"limit":        limit,
			ep.RecordsKey:  records,
			"endOfRecords": offset+limit >= ep.Total,
		}
		if !ep.OmitTotal[offset] {
			body[ep.TotalKey] = ep.Total
		}
		json.NewEncoder(w).Encode(body)
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// PageRequests returns the page requests observed on path in arrival order.
func (m *MockAPI) PageRequests(path string) []PageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PageRequest(nil), m.pageRequests[path]...)
}

// MaxInFlight returns the highest number of concurrent requests observed.
func (m *MockAPI) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
