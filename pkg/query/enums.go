package query

// Code is the nomenclatural code a ChecklistBank dataset follows.
type Code string

const (
	CodeBacterial  Code = "BACTERIAL"
	CodeBotanical  Code = "BOTANICAL"
	CodeCultivars  Code = "CULTIVARS"
	CodePhyto      Code = "PHYTO"
	CodeVirus      Code = "VIRUS"
	CodeZoological Code = "ZOOLOGICAL"
	CodePhylo      Code = "PHYLO"
)

// LastImportState is the state of a dataset's most recent import.
type LastImportState string

const (
	ImportWaiting     LastImportState = "WAITING"
	ImportPreparing   LastImportState = "PREPARING"
	ImportDownloading LastImportState = "DOWNLOADING"
	ImportProcessing  LastImportState = "PROCESSING"
	ImportDeleting    LastImportState = "DELETING"
	ImportInserting   LastImportState = "INSERTING"
	ImportMatching    LastImportState = "MATCHING"
	ImportIndexing    LastImportState = "INDEXING"
	ImportAnalyzing   LastImportState = "ANALYZING"
	ImportArchiving   LastImportState = "ARCHIVING"
	ImportExporting   LastImportState = "EXPORTING"
	ImportFinished    LastImportState = "FINISHED"
	ImportCancelled   LastImportState = "CANCELLED"
	ImportFailed      LastImportState = "FAILED"
)

// Origin describes how a dataset entered ChecklistBank.
type Origin string

const (
	OriginExternal Origin = "EXTERNAL"
	OriginProject  Origin = "PROJECT"
	OriginRelease  Origin = "RELEASE"
	OriginXRelease Origin = "XRELEASE"
)

// DatasetType is the kind of data a dataset holds.
type DatasetType string

const (
	TypeNomenclatural  DatasetType = "NOMENCLATURAL"
	TypeTaxonomic      DatasetType = "TAXONOMIC"
	TypePhylogenetic   DatasetType = "PHYLOGENETIC"
	TypeArticle        DatasetType = "ARTICLE"
	TypeLegal          DatasetType = "LEGAL"
	TypeThematic       DatasetType = "THEMATIC"
	TypeIdentification DatasetType = "IDENTIFICATION"
	TypeOther          DatasetType = "OTHER"
)

// License is a dataset license.
type License string

const (
	LicenseCC0         License = "CC0"
	LicenseCCBy        License = "CC_BY"
	LicenseCCBySA      License = "CC_BY_SA"
	LicenseCCByNC      License = "CC_BY_NC"
	LicenseCCByND      License = "CC_BY_ND"
	LicenseCCByNCSA    License = "CC_BY_NC_SA"
	LicenseCCByNCND    License = "CC_BY_NC_ND"
	LicenseUnspecified License = "UNSPECIFIED"
	LicenseOther       License = "OTHER"
)

// SortBy orders dataset listings.
type SortBy string

const (
	SortKey               SortBy = "KEY"
	SortAlias             SortBy = "ALIAS"
	SortTitle             SortBy = "TITLE"
	SortCreator           SortBy = "CREATOR"
	SortRelevance         SortBy = "RELEVANCE"
	SortCreated           SortBy = "CREATED"
	SortModified          SortBy = "MODIFIED"
	SortImported          SortBy = "IMPORTED"
	SortLastImportAttempt SortBy = "LAST_IMPORT_ATTEMPT"
	SortSize              SortBy = "SIZE"
)

// Rank is a taxonomic rank as accepted by both APIs (case-insensitive on the server).
type Rank string

const (
	RankKingdom Rank = "KINGDOM"
	RankPhylum  Rank = "PHYLUM"
	RankClass   Rank = "CLASS"
	RankOrder   Rank = "ORDER"
	RankFamily  Rank = "FAMILY"
	RankGenus   Rank = "GENUS"
	RankSpecies Rank = "SPECIES"
)

// TaxonomicStatus filters name usages by status.
type TaxonomicStatus string

const (
	StatusAccepted TaxonomicStatus = "ACCEPTED"
	StatusDoubtful TaxonomicStatus = "DOUBTFUL"
	StatusSynonym  TaxonomicStatus = "SYNONYM"
)
