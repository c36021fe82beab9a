package gbif

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"

	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Endpoints.
const (
	SpeciesMatchEndpoint     = "/v1/species/match"
	SpeciesSearchEndpoint    = "/v1/species/search"
	OccurrenceSearchEndpoint = "/v1/occurrence/search"
)

// ErrNoMatch is returned when the backbone has no usage for a name.
var ErrNoMatch = errors.New("no backbone match")

// BackboneMatch is the GBIF backbone usage for a name, with the keys of its
// higher ranks.
type BackboneMatch struct {
	UsageKey       int    `json:"usageKey"`
	ScientificName string `json:"scientificName"`
	CanonicalName  string `json:"canonicalName"`
	Rank           string `json:"rank"`
	Status         string `json:"status"`
	MatchType      string `json:"matchType"`
	Confidence     int    `json:"confidence"`

	KingdomKey int `json:"kingdomKey"`
	PhylumKey  int `json:"phylumKey"`
	ClassKey   int `json:"classKey"`
	OrderKey   int `json:"orderKey"`
	FamilyKey  int `json:"familyKey"`
	GenusKey   int `json:"genusKey"`
	SpeciesKey int `json:"speciesKey"`
}

// KeyFor returns the key of the match's ancestor (or itself) at rank.
func (m *BackboneMatch) KeyFor(rank query.Rank) (int, bool) {
	var key int
	switch query.Rank(strings.ToUpper(string(rank))) {
	case query.RankKingdom:
		key = m.KingdomKey
	case query.RankPhylum:
		key = m.PhylumKey
	case query.RankClass:
		key = m.ClassKey
	case query.RankOrder:
		key = m.OrderKey
	case query.RankFamily:
		key = m.FamilyKey
	case query.RankGenus:
		key = m.GenusKey
	case query.RankSpecies:
		key = m.SpeciesKey
	}
	return key, key != 0
}

// NameUsage is one species search result.
type NameUsage struct {
	Key             int    `json:"key"`
	ScientificName  string `json:"scientificName"`
	CanonicalName   string `json:"canonicalName"`
	Rank            string `json:"rank"`
	TaxonomicStatus string `json:"taxonomicStatus"`
	Family          string `json:"family"`
	Genus           string `json:"genus"`
}

// Service is the GBIF API.
type Service struct {
	client      *client.Client
	species     *pagination.Fetcher
	concurrency int
	logger      zerolog.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewService creates a GBIF service on c. Name lookups use
// cfg.MaxConcurrency in-flight page requests.
func NewService(c *client.Client, cfg pagination.Config) *Service {
	source := client.NewPageSource(c, client.ServiceGBIF, SpeciesSearchEndpoint,
		client.GBIFRecordsKey, client.GBIFTotalKey)

	return &Service{
		client:      c,
		species:     pagination.NewFetcher(source, cfg),
		concurrency: cfg.MaxConcurrency,
		logger:      log.With().Str("component", "gbif").Logger(),
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the random source used for image selection (for testing).
func (s *Service) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rand = r
}

func (s *Service) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.IntN(n)
}

// NameBackbone matches name at rank against the GBIF backbone.
func (s *Service) NameBackbone(ctx context.Context, name string, rank query.Rank) (*BackboneMatch, error) {
	values := url.Values{}
	values.Set("name", name)
	if rank != "" {
		values.Set("rank", strings.ToUpper(string(rank)))
	}

	var match BackboneMatch
	if err := s.client.GetJSON(ctx, client.ServiceGBIF, SpeciesMatchEndpoint, values, &match); err != nil {
		return nil, err
	}

	if match.UsageKey == 0 || match.MatchType == "NONE" {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, name)
	}
	return &match, nil
}

// NameLookup pages through species search results for f.
func (s *Service) NameLookup(ctx context.Context, f *query.NameLookupFilter, size *int) ([]NameUsage, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidQuery, err)
	}

	results, err := s.species.FetchAllConcurrent(ctx, f, size, s.concurrency)
	if err != nil {
		return nil, err
	}

	usages := make([]NameUsage, len(results))
	for i, raw := range results {
		if err := json.Unmarshal(raw, &usages[i]); err != nil {
			return nil, fmt.Errorf("decode name usage %d: %w", i, err)
		}
	}
	return usages, nil
}

// childrenOf lists accepted usages at childRank below the backbone match of name at rank.
func (s *Service) childrenOf(ctx context.Context, name string, rank, childRank query.Rank, size *int) ([]NameUsage, error) {
	match, err := s.NameBackbone(ctx, name, rank)
	if err != nil {
		return nil, err
	}
	return s.NameLookup(ctx, query.NewNameLookupFilter(match.UsageKey, childRank), size)
}

// FamiliesInTaxon lists the accepted families below name at rank.
func (s *Service) FamiliesInTaxon(ctx context.Context, name string, rank query.Rank) ([]NameUsage, error) {
	return s.childrenOf(ctx, name, rank, query.RankFamily, nil)
}

// GenusInFamily lists the accepted genera of a family.
func (s *Service) GenusInFamily(ctx context.Context, family string) ([]NameUsage, error) {
	return s.childrenOf(ctx, family, query.RankFamily, query.RankGenus, nil)
}

// SpeciesInFamily lists the accepted species of a family.
func (s *Service) SpeciesInFamily(ctx context.Context, family string) ([]NameUsage, error) {
	return s.childrenOf(ctx, family, query.RankFamily, query.RankSpecies, nil)
}

// SiblingFamilies lists up to limit other families sharing family's ancestor at parentRank.
func (s *Service) SiblingFamilies(ctx context.Context, family string, parentRank query.Rank, limit int) ([]NameUsage, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", pagination.ErrInvalidQuery, limit)
	}

	match, err := s.NameBackbone(ctx, family, query.RankFamily)
	if err != nil {
		return nil, err
	}

	parentKey, ok := match.KeyFor(parentRank)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNoMatch, family, strings.ToLower(string(parentRank)))
	}

	candidates, err := s.NameLookup(ctx, query.NewNameLookupFilter(parentKey, query.RankFamily), pagination.Size(limit+1))
	if err != nil {
		return nil, err
	}

	siblings := make([]NameUsage, 0, len(candidates))
	for _, c := range candidates {
		if c.Key == match.UsageKey || c.ScientificName == family || c.CanonicalName == family {
			continue
		}
		siblings = append(siblings, c)
	}

	if len(siblings) > limit {
		siblings = siblings[:limit]
	}
	return siblings, nil
}
