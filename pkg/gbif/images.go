package gbif

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
)

// DefaultImageSample is how many images SelectRandomImage chooses from.
const DefaultImageSample = 20

// ErrNoImages is returned when a taxon has no occurrence images.
var ErrNoImages = errors.New("no images found")

// Image is an occurrence photo and the name of what it shows.
type Image struct {
	URL           string
	Label         string
	OccurrenceKey int
	TaxonKey      int
}

// ImageFinder returns an image URL and label for a taxon.
type ImageFinder interface {
	SelectRandomImage(ctx context.Context, taxonKey int) (*Image, error)
}

type occurrenceSearchResponse struct {
	Results []struct {
		Key            int    `json:"key"`
		TaxonKey       int    `json:"taxonKey"`
		ScientificName string `json:"scientificName"`
		Species        string `json:"species"`
		Media          []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"media"`
	} `json:"results"`
}

// RequestImages returns up to n still images recorded for taxonKey.
func (s *Service) RequestImages(ctx context.Context, taxonKey, n int) ([]Image, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: image count %d", pagination.ErrInvalidQuery, n)
	}

	f := query.NewImageOccurrenceFilter(taxonKey, query.ClampLimit(n))
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pagination.ErrInvalidQuery, err)
	}
	values, err := f.Values()
	if err != nil {
		return nil, fmt.Errorf("encode occurrence search: %w", err)
	}

	var resp occurrenceSearchResponse
	if err := s.client.GetJSON(ctx, client.ServiceGBIF, OccurrenceSearchEndpoint, values, &resp); err != nil {
		return nil, err
	}

	images := make([]Image, 0, n)
	for _, occ := range resp.Results {
		label := occ.Species
		if label == "" {
			label = occ.ScientificName
		}
		for _, m := range occ.Media {
			if m.Identifier == "" || (m.Type != "" && m.Type != query.MediaStillImage) {
				continue
			}
			images = append(images, Image{
				URL:           m.Identifier,
				Label:         label,
				OccurrenceKey: occ.Key,
				TaxonKey:      occ.TaxonKey,
			})
			if len(images) >= n {
				return images, nil
			}
		}
	}

	return images, nil
}

// SelectRandomImage picks one image of taxonKey at random.
func (s *Service) SelectRandomImage(ctx context.Context, taxonKey int) (*Image, error) {
	images, err := s.RequestImages(ctx, taxonKey, DefaultImageSample)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: taxon %d", ErrNoImages, taxonKey)
	}

	img := images[s.intN(len(images))]
	s.logger.Debug().
		Int("taxon_key", taxonKey).
		Str("label", img.Label).
		Str("url", img.URL).
		Msg("Selected image")
	return &img, nil
}

var _ ImageFinder = (*Service)(nil)
