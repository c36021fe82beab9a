package query

import (
	"net/url"
	"strings"
)

// DatasetFilter filters the ChecklistBank dataset listing (GET /dataset).
type DatasetFilter struct {
	Page

	Q                      string          `url:"q,omitempty"`
	Alias                  string          `url:"alias,omitempty"`
	Code                   Code            `url:"code,omitempty" validate:"omitempty,oneof=BACTERIAL BOTANICAL CULTIVARS PHYTO VIRUS ZOOLOGICAL PHYLO"`
	CodeIsNull             *bool           `url:"codeIsNull,omitempty"`
	Private                *bool           `url:"private,omitempty"`
	ReleasedFrom           *int            `url:"releasedFrom,omitempty"`
	ContributesTo          *int            `url:"contributesTo,omitempty"`
	HasSourceDataset       *int            `url:"hasSourceDataset,omitempty"`
	HasGbifKey             *bool           `url:"hasGbifKey,omitempty"`
	GbifKey                string          `url:"gbifKey,omitempty"`
	GbifPublisherKey       string          `url:"gbifPublisherKey,omitempty"`
	WithoutSectorInProject *int            `url:"withoutSectorInProject,omitempty"`
	LastImportState        LastImportState `url:"lastImportState,omitempty" validate:"omitempty,oneof=WAITING PREPARING DOWNLOADING PROCESSING DELETING INSERTING MATCHING INDEXING ANALYZING ARCHIVING EXPORTING FINISHED CANCELLED FAILED"`
	Editor                 *int            `url:"editor,omitempty"`
	Reviewer               *int            `url:"reviewer,omitempty"`
	Origin                 []Origin        `url:"origin,omitempty" validate:"dive,oneof=EXTERNAL PROJECT RELEASE XRELEASE"`
	Type                   []DatasetType   `url:"type,omitempty" validate:"dive,oneof=NOMENCLATURAL TAXONOMIC PHYLOGENETIC ARTICLE LEGAL THEMATIC IDENTIFICATION OTHER"`
	License                []License       `url:"license,omitempty" validate:"dive,oneof=CC0 CC_BY CC_BY_SA CC_BY_NC CC_BY_ND CC_BY_NC_SA CC_BY_NC_ND UNSPECIFIED OTHER"`
	RowType                []string        `url:"rowType,omitempty"`
	Modified               string          `url:"modified,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ModifiedBefore         string          `url:"modifiedBefore,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ModifiedBy             string          `url:"modifiedBy,omitempty"`
	Created                string          `url:"created,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedBefore          string          `url:"createdBefore,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedBy              string          `url:"createdBy,omitempty"`
	Issued                 string          `url:"issued,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IssuedBefore           string          `url:"issuedBefore,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MinSize                *int            `url:"minSize,omitempty"`
	SortBy                 SortBy          `url:"sortBy,omitempty" validate:"omitempty,oneof=KEY ALIAS TITLE CREATOR RELEVANCE CREATED MODIFIED IMPORTED LAST_IMPORT_ATTEMPT SIZE"`
	Reverse                *bool           `url:"reverse,omitempty"`
}

// NewDatasetFilter returns a filter starting at offset 0 with the maximum page size.
func NewDatasetFilter() *DatasetFilter {
	return &DatasetFilter{Page: Page{Offset: 0, Limit: MaxLimit}}
}

// Values implements Pager.
func (f *DatasetFilter) Values() (url.Values, error) {
	return encode(f)
}

// Validate checks enumerated fields, dates and the cursor.
func (f *DatasetFilter) Validate() error {
	return validateStruct(f)
}

// Set assigns a field by its query-string name. List fields append.
func (f *DatasetFilter) Set(field, value string) error {
	if ok, err := f.setPage(field, value); ok {
		return err
	}

	var err error
	switch field {
	case "q":
		f.Q = value
	case "alias":
		f.Alias = value
	case "code":
		f.Code = Code(strings.ToUpper(value))
	case "codeIsNull":
		f.CodeIsNull, err = parseBoolPtr(field, value)
	case "private":
		f.Private, err = parseBoolPtr(field, value)
	case "releasedFrom":
		f.ReleasedFrom, err = parseIntPtr(field, value)
	case "contributesTo":
		f.ContributesTo, err = parseIntPtr(field, value)
	case "hasSourceDataset":
		f.HasSourceDataset, err = parseIntPtr(field, value)
	case "hasGbifKey":
		f.HasGbifKey, err = parseBoolPtr(field, value)
	case "gbifKey":
		f.GbifKey = value
	case "gbifPublisherKey":
		f.GbifPublisherKey = value
	case "withoutSectorInProject":
		f.WithoutSectorInProject, err = parseIntPtr(field, value)
	case "lastImportState":
		f.LastImportState = LastImportState(strings.ToUpper(value))
	case "editor":
		f.Editor, err = parseIntPtr(field, value)
	case "reviewer":
		f.Reviewer, err = parseIntPtr(field, value)
	case "origin":
		f.Origin = append(f.Origin, Origin(strings.ToUpper(value)))
	case "type":
		f.Type = append(f.Type, DatasetType(strings.ToUpper(value)))
	case "license":
		f.License = append(f.License, License(strings.ToUpper(value)))
	case "rowType":
		f.RowType = append(f.RowType, value)
	case "modified":
		f.Modified = value
	case "modifiedBefore":
		f.ModifiedBefore = value
	case "modifiedBy":
		f.ModifiedBy = value
	case "created":
		f.Created = value
	case "createdBefore":
		f.CreatedBefore = value
	case "createdBy":
		f.CreatedBy = value
	case "issued":
		f.Issued = value
	case "issuedBefore":
		f.IssuedBefore = value
	case "minSize":
		f.MinSize, err = parseIntPtr(field, value)
	case "sortBy":
		f.SortBy = SortBy(strings.ToUpper(value))
	case "reverse":
		f.Reverse, err = parseBoolPtr(field, value)
	default:
		return unknownField("dataset filter", field)
	}
	return err
}
