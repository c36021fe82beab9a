package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
)

// Response keys used by the services' paged endpoints.
const (
	ChecklistBankRecordsKey = "result"
	ChecklistBankTotalKey   = "total"
	GBIFRecordsKey          = "results"
	GBIFTotalKey            = "count"
)

// PageSource fetches pages of one endpoint. It implements pagination.Source.
type PageSource struct {
	client     *Client
	service    string
	endpoint   string
	recordsKey string
	totalKey   string
}

// NewPageSource creates a page source for endpoint on service.
func NewPageSource(c *Client, service, endpoint, recordsKey, totalKey string) *PageSource {
	return &PageSource{
		client:     c,
		service:    service,
		endpoint:   endpoint,
		recordsKey: recordsKey,
		totalKey:   totalKey,
	}
}

// FetchPage requests q at offset with limit clamped to query.MaxLimit.
// Pages are never cached.
func (s *PageSource) FetchPage(ctx context.Context, q query.Pager, offset, limit int) (*pagination.Page, error) {
	values, err := q.Values()
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	values.Set("offset", strconv.Itoa(offset))
	values.Set("limit", strconv.Itoa(query.ClampLimit(limit)))

	resp, err := s.client.Get(ctx, s.service, s.endpoint, values)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	target := resp.Request.URL.String()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &TransportError{URL: target, Err: err}
	}

	page, err := DecodePage(body, s.recordsKey, s.totalKey)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassParse)).Inc()
		return nil, &ParseError{URL: target, Err: err}
	}
	return page, nil
}

// DecodePage extracts the records array and declared total from a page body.
// A page without the total key decodes with pagination.TotalUnknown; the
// fetcher requires a total on the first page only. A body flagged
// "empty": true may omit both keys.
func DecodePage(body []byte, recordsKey, totalKey string) (*pagination.Page, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	var empty bool
	if raw, ok := fields["empty"]; ok {
		_ = json.Unmarshal(raw, &empty)
	}

	page := &pagination.Page{Records: []json.RawMessage{}}

	rawRecords, ok := fields[recordsKey]
	switch {
	case ok:
		if err := json.Unmarshal(rawRecords, &page.Records); err != nil {
			return nil, fmt.Errorf("decode %q: %w", recordsKey, err)
		}
		if page.Records == nil {
			page.Records = []json.RawMessage{}
		}
	case !empty:
		return nil, fmt.Errorf("missing %q in page", recordsKey)
	}

	rawTotal, ok := fields[totalKey]
	switch {
	case ok:
		if err := json.Unmarshal(rawTotal, &page.Total); err != nil {
			return nil, fmt.Errorf("decode %q: %w", totalKey, err)
		}
	case !empty:
		page.Total = pagination.TotalUnknown
	}

	return page, nil
}
