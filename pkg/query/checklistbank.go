package query

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultMatchDatasetKey is the ChecklistBank key of the Catalogue of Life.
const DefaultMatchDatasetKey = 3

// NameUsageSearchFilter filters ChecklistBank name usage search (GET /nameusage/search).
type NameUsageSearchFilter struct {
	Page

	Q          string `url:"q,omitempty"`
	MinRank    Rank   `url:"minRank,omitempty"`
	MaxRank    Rank   `url:"maxRank,omitempty"`
	DatasetKey *int   `url:"datasetKey,omitempty"`
}

// NewNameUsageSearchFilter pins both rank bounds to rank so only usages at
// exactly that rank match.
func NewNameUsageSearchFilter(rank Rank, scientificName string) *NameUsageSearchFilter {
	r := Rank(strings.ToUpper(string(rank)))
	return &NameUsageSearchFilter{
		Page:    Page{Offset: 0, Limit: 1},
		Q:       scientificName,
		MinRank: r,
		MaxRank: r,
	}
}

// Values implements Pager.
func (f *NameUsageSearchFilter) Values() (url.Values, error) {
	return encode(f)
}

// Set assigns a field by its query-string name.
func (f *NameUsageSearchFilter) Set(field, value string) error {
	if ok, err := f.setPage(field, value); ok {
		return err
	}

	var err error
	switch field {
	case "q":
		f.Q = value
	case "minRank":
		f.MinRank = Rank(strings.ToUpper(value))
	case "maxRank":
		f.MaxRank = Rank(strings.ToUpper(value))
	case "datasetKey":
		f.DatasetKey, err = parseIntPtr(field, value)
	default:
		return unknownField("name usage search filter", field)
	}
	return err
}

// TaxonMatchFilter queries ChecklistBank's exact name matching
// (GET /dataset/{key}/match/nameusage). Key is a path parameter.
type TaxonMatchFilter struct {
	Key int `url:"-" validate:"gte=1"`

	ID             string `url:"id,omitempty"`
	Q              string `url:"q,omitempty"`
	Name           string `url:"name,omitempty"`
	ScientificName string `url:"scientificName,omitempty"`
	Authorship     string `url:"authorship,omitempty"`
	Code           Code   `url:"code,omitempty" validate:"omitempty,oneof=BACTERIAL BOTANICAL CULTIVARS PHYTO VIRUS ZOOLOGICAL PHYLO"`
	Rank           Rank   `url:"rank,omitempty"`
	Status         string `url:"status,omitempty"`
	Verbose        *bool  `url:"verbose,omitempty"`

	Superkingdom string `url:"superkingdom,omitempty"`
	Kingdom      string `url:"kingdom,omitempty"`
	Subkingdom   string `url:"subkingdom,omitempty"`
	Superphylum  string `url:"superphylum,omitempty"`
	Phylum       string `url:"phylum,omitempty"`
	Subphylum    string `url:"subphylum,omitempty"`
	Superclass   string `url:"superclass,omitempty"`
	Class        string `url:"class,omitempty"`
	Subclass     string `url:"subclass,omitempty"`
	Superorder   string `url:"superorder,omitempty"`
	Order        string `url:"order,omitempty"`
	Suborder     string `url:"suborder,omitempty"`
	Superfamily  string `url:"superfamily,omitempty"`
	Family       string `url:"family,omitempty"`
	Subfamily    string `url:"subfamily,omitempty"`
	Tribe        string `url:"tribe,omitempty"`
	Subtribe     string `url:"subtribe,omitempty"`
	Genus        string `url:"genus,omitempty"`
	Subgenus     string `url:"subgenus,omitempty"`
	Section      string `url:"section,omitempty"`
	Species      string `url:"species,omitempty"`
}

// NewTaxonMatchFilter matches scientificName against the Catalogue of Life.
func NewTaxonMatchFilter(scientificName string) *TaxonMatchFilter {
	return &TaxonMatchFilter{Key: DefaultMatchDatasetKey, ScientificName: scientificName}
}

// Path returns the endpoint path for the filter's dataset key.
func (f *TaxonMatchFilter) Path() string {
	return fmt.Sprintf("/dataset/%d/match/nameusage", f.Key)
}

// Values serializes the query-string fields. Key is carried in Path.
func (f *TaxonMatchFilter) Values() (url.Values, error) {
	return encode(f)
}

// Validate checks the dataset key and enumerated fields.
func (f *TaxonMatchFilter) Validate() error {
	return validateStruct(f)
}

// Set assigns a field by its query-string name; "key" sets the dataset key.
func (f *TaxonMatchFilter) Set(field, value string) error {
	if field == "key" {
		n, err := parseInt(field, value)
		if err != nil {
			return err
		}
		f.Key = n
		return nil
	}
	if field == "verbose" {
		b, err := parseBoolPtr(field, value)
		if err != nil {
			return err
		}
		f.Verbose = b
		return nil
	}

	target := f.stringField(field)
	if target == nil {
		return unknownField("taxon match filter", field)
	}
	*target = value
	return nil
}

func (f *TaxonMatchFilter) stringField(field string) *string {
	switch field {
	case "id":
		return &f.ID
	case "q":
		return &f.Q
	case "name":
		return &f.Name
	case "scientificName":
		return &f.ScientificName
	case "authorship":
		return &f.Authorship
	case "code":
		return (*string)(&f.Code)
	case "rank":
		return (*string)(&f.Rank)
	case "status":
		return &f.Status
	case "superkingdom":
		return &f.Superkingdom
	case "kingdom":
		return &f.Kingdom
	case "subkingdom":
		return &f.Subkingdom
	case "superphylum":
		return &f.Superphylum
	case "phylum":
		return &f.Phylum
	case "subphylum":
		return &f.Subphylum
	case "superclass":
		return &f.Superclass
	case "class":
		return &f.Class
	case "subclass":
		return &f.Subclass
	case "superorder":
		return &f.Superorder
	case "order":
		return &f.Order
	case "suborder":
		return &f.Suborder
	case "superfamily":
		return &f.Superfamily
	case "family":
		return &f.Family
	case "subfamily":
		return &f.Subfamily
	case "tribe":
		return &f.Tribe
	case "subtribe":
		return &f.Subtribe
	case "genus":
		return &f.Genus
	case "subgenus":
		return &f.Subgenus
	case "section":
		return &f.Section
	case "species":
		return &f.Species
	}
	return nil
}
