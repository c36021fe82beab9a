// Package pagination retrieves large result sets from offset/limit paged
// listing endpoints.
//
// ChecklistBank and GBIF both cap a single response at 1000 records and
// report the total number of matches alongside each page. Fetcher walks those
// pages with one of two strategies that share a single contract:
//
//   - FetchAll requests one page at a time, advancing the query's offset by
//     the effective limit after every page.
//   - FetchAllConcurrent requests the first page alone to learn the total,
//     then fans the remaining offsets out behind an admission gate that keeps
//     at most maxConcurrency requests in flight.
//
// Both return exactly min(size, available) records in ascending offset
// order, stop early on a page with zero records, and fail the whole call on
// the first page error. Partial results are never returned.
//
// Example usage:
//
//	src := client.NewPageSource(c, client.ServiceChecklistBank, "/dataset",
//		client.ChecklistBankRecordsKey, client.ChecklistBankTotalKey)
//	fetcher := pagination.NewFetcher(src, pagination.DefaultConfig())
//	records, err := fetcher.FetchAllConcurrent(ctx, query.NewDatasetFilter(), pagination.Size(5500), 4)
package pagination
