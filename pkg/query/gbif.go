package query

import (
	"net/url"
	"strings"
)

// NameLookupFilter filters GBIF species search (GET /v1/species/search).
type NameLookupFilter struct {
	Page

	Q              string          `url:"q,omitempty"`
	Rank           Rank            `url:"rank,omitempty" validate:"omitempty,oneof=KINGDOM PHYLUM CLASS ORDER FAMILY GENUS SPECIES"`
	HigherTaxonKey int             `url:"higherTaxonKey,omitempty"`
	Status         TaxonomicStatus `url:"status,omitempty" validate:"omitempty,oneof=ACCEPTED DOUBTFUL SYNONYM"`
	DatasetKey     string          `url:"datasetKey,omitempty"`
}

// NewNameLookupFilter lists accepted usages of rank below higherTaxonKey.
func NewNameLookupFilter(higherTaxonKey int, rank Rank) *NameLookupFilter {
	return &NameLookupFilter{
		Page:           Page{Offset: 0, Limit: MaxLimit},
		Rank:           Rank(strings.ToUpper(string(rank))),
		HigherTaxonKey: higherTaxonKey,
		Status:         StatusAccepted,
	}
}

// Values implements Pager.
func (f *NameLookupFilter) Values() (url.Values, error) {
	return encode(f)
}

// Validate checks the rank, status and cursor.
func (f *NameLookupFilter) Validate() error {
	return validateStruct(f)
}

// Set assigns a field by its query-string name.
func (f *NameLookupFilter) Set(field, value string) error {
	if ok, err := f.setPage(field, value); ok {
		return err
	}

	switch field {
	case "q":
		f.Q = value
	case "rank":
		f.Rank = Rank(strings.ToUpper(value))
	case "higherTaxonKey":
		n, err := parseInt(field, value)
		if err != nil {
			return err
		}
		f.HigherTaxonKey = n
	case "status":
		f.Status = TaxonomicStatus(strings.ToUpper(value))
	case "datasetKey":
		f.DatasetKey = value
	default:
		return unknownField("name lookup filter", field)
	}
	return nil
}

// MediaStillImage restricts occurrence search to records with photos.
const MediaStillImage = "StillImage"

// OccurrenceFilter filters GBIF occurrence search (GET /v1/occurrence/search).
type OccurrenceFilter struct {
	Page

	MediaType        string `url:"mediaType,omitempty"`
	TaxonKey         int    `url:"taxonKey,omitempty"`
	ScientificName   string `url:"scientificName,omitempty"`
	OccurrenceStatus string `url:"occurrenceStatus,omitempty" validate:"omitempty,oneof=PRESENT ABSENT"`
}

// NewImageOccurrenceFilter lists present occurrences of taxonKey that carry still images.
func NewImageOccurrenceFilter(taxonKey, limit int) *OccurrenceFilter {
	return &OccurrenceFilter{
		Page:             Page{Offset: 0, Limit: limit},
		MediaType:        MediaStillImage,
		TaxonKey:         taxonKey,
		OccurrenceStatus: "PRESENT",
	}
}

// Values implements Pager.
func (f *OccurrenceFilter) Values() (url.Values, error) {
	return encode(f)
}

// Validate checks the occurrence status and cursor.
func (f *OccurrenceFilter) Validate() error {
	return validateStruct(f)
}

// Set assigns a field by its query-string name.
func (f *OccurrenceFilter) Set(field, value string) error {
	if ok, err := f.setPage(field, value); ok {
		return err
	}

	switch field {
	case "mediaType":
		f.MediaType = value
	case "taxonKey":
		n, err := parseInt(field, value)
		if err != nil {
			return err
		}
		f.TaxonKey = n
	case "scientificName":
		f.ScientificName = value
	case "occurrenceStatus":
		f.OccurrenceStatus = strings.ToUpper(value)
	default:
		return unknownField("occurrence filter", field)
	}
	return nil
}
