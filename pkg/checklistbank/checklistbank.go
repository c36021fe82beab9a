// Package checklistbank queries the Catalogue of Life ChecklistBank API:
// paged dataset listings, name usage search, and exact name matching.
package checklistbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Endpoints.
const (
	DatasetEndpoint         = "/dataset"
	NameUsageSearchEndpoint = "/nameusage/search"
)

// ErrNotFound is returned when a name usage search has no hits.
var ErrNotFound = errors.New("no name usage found")

// Dataset is one entry of the dataset listing.
type Dataset struct {
	Key     int    `json:"key"`
	Alias   string `json:"alias"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Origin  string `json:"origin"`
	License string `json:"license"`
	Size    int    `json:"size"`
	Issued  string `json:"issued"`
}

// Service is the ChecklistBank API.
type Service struct {
	client  *client.Client
	fetcher *pagination.Fetcher
	logger  zerolog.Logger
}

// NewService creates a ChecklistBank service on c.
func NewService(c *client.Client, cfg pagination.Config) *Service {
	source := client.NewPageSource(c, client.ServiceChecklistBank, DatasetEndpoint,
		client.ChecklistBankRecordsKey, client.ChecklistBankTotalKey)

	return &Service{
		client:  c,
		fetcher: pagination.NewFetcher(source, cfg),
		logger:  log.With().Str("component", "checklistbank").Logger(),
	}
}

// SearchDatasets lists datasets matching f one page at a time.
// f's offset is advanced past the fetched pages.
func (s *Service) SearchDatasets(ctx context.Context, f *query.DatasetFilter, size *int) (pagination.ResultSet, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidQuery, err)
	}
	return s.fetcher.FetchAll(ctx, f, size)
}

// SearchDatasetsConcurrent lists datasets matching f with up to
// maxConcurrency page requests in flight.
func (s *Service) SearchDatasetsConcurrent(ctx context.Context, f *query.DatasetFilter, size *int, maxConcurrency int) (pagination.ResultSet, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidQuery, err)
	}
	return s.fetcher.FetchAllConcurrent(ctx, f, size, maxConcurrency)
}

// DecodeDatasets decodes a dataset result set.
func DecodeDatasets(results pagination.ResultSet) ([]Dataset, error) {
	datasets := make([]Dataset, len(results))
	for i, raw := range results {
		if err := json.Unmarshal(raw, &datasets[i]); err != nil {
			return nil, fmt.Errorf("decode dataset %d: %w", i, err)
		}
	}
	return datasets, nil
}

type nameUsageSearchResponse struct {
	Result []struct {
		Usage struct {
			ID         string `json:"id"`
			DatasetKey int    `json:"datasetKey"`
		} `json:"usage"`
	} `json:"result"`
}

// GetKey returns the dataset key and taxon ID of the first usage named
// scientificName at exactly rank.
func (s *Service) GetKey(ctx context.Context, rank query.Rank, scientificName string) (int, string, error) {
	values, err := query.NewNameUsageSearchFilter(rank, scientificName).Values()
	if err != nil {
		return 0, "", fmt.Errorf("encode name usage search: %w", err)
	}

	var resp nameUsageSearchResponse
	if err := s.client.GetJSON(ctx, client.ServiceChecklistBank, NameUsageSearchEndpoint, values, &resp); err != nil {
		return 0, "", err
	}

	if len(resp.Result) == 0 {
		s.logger.Debug().
			Str("name", scientificName).
			Str("rank", string(rank)).
			Msg("No name usage found")
		return 0, "", fmt.Errorf("%w: %s at rank %s", ErrNotFound, scientificName, rank)
	}

	usage := resp.Result[0].Usage
	return usage.DatasetKey, usage.ID, nil
}

// MatchTaxon performs an exact name match and returns the raw match document.
func (s *Service) MatchTaxon(ctx context.Context, f *query.TaxonMatchFilter) (json.RawMessage, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidQuery, err)
	}

	values, err := f.Values()
	if err != nil {
		return nil, fmt.Errorf("encode taxon match: %w", err)
	}

	var match json.RawMessage
	if err := s.client.GetJSON(ctx, client.ServiceChecklistBank, f.Path(), values, &match); err != nil {
		return nil, err
	}
	return match, nil
}
