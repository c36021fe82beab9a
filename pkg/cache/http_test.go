package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestResponseToEntry(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		wantErr bool
	}{
		{
			name: "response with max-age",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Cache-Control": []string{"public, max-age=3600"},
					"Content-Type":  []string{"application/json"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte(`{"usageKey": 1}`))),
			},
		},
		{
			name: "response without caching headers",
			resp: &http.Response{
				StatusCode: 200,
				Header:     http.Header{},
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"usageKey": 1}`))),
			},
		},
		{
			name:    "nil response",
			resp:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResponseToEntry(tt.resp, time.Minute)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResponseToEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			body, _ := io.ReadAll(tt.resp.Body)
			if !bytes.Equal(body, entry.Data) {
				t.Errorf("body not restored: got %q, want %q", body, entry.Data)
			}
			if entry.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %d, want %d", entry.StatusCode, tt.resp.StatusCode)
			}
			if entry.Expires.IsZero() {
				t.Error("Expires was not set")
			}
		})
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		headers http.Header
		ttl     time.Duration
		want    time.Time
	}{
		{
			name:    "max-age wins over expires",
			headers: http.Header{"Cache-Control": []string{"max-age=120"}, "Expires": []string{now.Add(time.Hour).Format(http.TimeFormat)}},
			ttl:     time.Minute,
			want:    now.Add(120 * time.Second),
		},
		{
			name:    "no-store",
			headers: http.Header{"Cache-Control": []string{"no-store"}},
			ttl:     time.Minute,
			want:    now,
		},
		{
			name:    "expires header",
			headers: http.Header{"Expires": []string{now.Add(time.Hour).Format(http.TimeFormat)}},
			ttl:     time.Minute,
			want:    now.Add(time.Hour),
		},
		{
			name:    "expires in the past",
			headers: http.Header{"Expires": []string{now.Add(-time.Hour).Format(http.TimeFormat)}},
			ttl:     time.Minute,
			want:    now,
		},
		{
			name:    "invalid expires falls back to ttl",
			headers: http.Header{"Expires": []string{"not a date"}},
			ttl:     time.Minute,
			want:    now.Add(time.Minute),
		},
		{
			name:    "no headers uses ttl",
			headers: http.Header{},
			ttl:     5 * time.Minute,
			want:    now.Add(5 * time.Minute),
		},
		{
			name:    "no headers and no ttl uses default",
			headers: http.Header{},
			ttl:     0,
			want:    now.Add(DefaultTTL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseExpires(tt.headers, now, tt.ttl)
			diff := got.Sub(tt.want)
			if diff < -2*time.Second || diff > 2*time.Second {
				t.Errorf("parseExpires() = %v, want approximately %v (diff: %v)", got, tt.want, diff)
			}
		})
	}
}
