package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidQuery is returned before any request when the cursor or requested size is unusable.
	ErrInvalidQuery = errors.New("invalid paged query")

	// ErrMissingTotal is returned when the first page declares no total.
	ErrMissingTotal = errors.New("first page declares no total")
)

// TotalUnknown marks a page that declares no total. Only the first page of a
// fetch has to declare one; later pages are never read for it.
const TotalUnknown = -1

const (
	strategySequential = "sequential"
	strategyConcurrent = "concurrent"
)

// Config holds fetcher configuration.
type Config struct {
	// MaxConcurrency bounds in-flight page requests for FetchAllConcurrent
	// calls that pass a non-positive limit.
	MaxConcurrency int
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 2,
	}
}

// Page is one server response: the page's records and the declared total,
// or TotalUnknown.
type Page struct {
	Records []json.RawMessage
	Total   int
}

// ResultSet is the ordered concatenation of fetched records.
type ResultSet []json.RawMessage

// Source fetches a single page of q at the given offset and limit.
// Implementations must not modify q; it is shared by concurrent calls.
type Source interface {
	FetchPage(ctx context.Context, q query.Pager, offset, limit int) (*Page, error)
}

// Size returns a pointer to n for the requested-size argument.
func Size(n int) *int {
	return &n
}

// Fetcher retrieves complete result sets from a Source.
type Fetcher struct {
	source Source
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(source Source, config Config) *Fetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}

	return &Fetcher{
		source: source,
		config: config,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// FetchAll walks the pages of q one request at a time.
//
// The query's limit is clamped to query.MaxLimit and its offset advances by
// that limit after every page. A nil size fetches every available record.
func (f *Fetcher) FetchAll(ctx context.Context, q query.Pager, size *int) (ResultSet, error) {
	cursor := q.Cursor()
	if err := checkRequest(cursor, size); err != nil {
		return nil, err
	}
	if size != nil && *size == 0 {
		return ResultSet{}, nil
	}

	start := time.Now()
	startOffset := cursor.Offset
	results := ResultSet{}
	target := -1

	for {
		limit := cursor.Clamp()

		page, err := f.source.FetchPage(ctx, q, cursor.Offset, limit)
		if err != nil {
			fetchFailures.WithLabelValues(strategySequential).Inc()
			f.logger.Warn().
				Err(err).
				Int("offset", cursor.Offset).
				Msg("Page fetch failed")
			return nil, fmt.Errorf("fetch page at offset %d: %w", cursor.Offset, err)
		}
		fetchPages.WithLabelValues(strategySequential).Inc()

		if target < 0 {
			if page.Total < 0 {
				fetchFailures.WithLabelValues(strategySequential).Inc()
				return nil, fmt.Errorf("fetch page at offset %d: %w", cursor.Offset, ErrMissingTotal)
			}
			target = available(page.Total, startOffset)
			if size != nil && *size < target {
				target = *size
			}
			f.logger.Info().
				Int("total", page.Total).
				Int("offset", startOffset).
				Int("limit", limit).
				Msg("Starting sequential page fetch")
		}

		results = append(results, page.Records...)
		cursor.Offset += limit

		f.logger.Debug().
			Int("offset", cursor.Offset-limit).
			Int("records", len(page.Records)).
			Int("fetched", len(results)).
			Msg("Page fetched")

		if len(results) >= target {
			results = results[:target]
			break
		}
		if len(page.Records) == 0 {
			f.logger.Warn().
				Int("offset", cursor.Offset-limit).
				Int("fetched", len(results)).
				Int("expected", target).
				Msg("Empty page before declared total, stopping")
			break
		}
	}

	f.complete(strategySequential, start, len(results))
	return results, nil
}

// FetchAllConcurrent fetches the first page of q, then the remaining pages
// with at most maxConcurrency requests in flight.
//
// Results are concatenated in ascending offset order regardless of response
// arrival order. If any page up to the first empty one fails, the call
// fails; a failure past an empty page is ignored, as FetchAll never requests
// it. After a failure, pages already admitted run to completion but no
// further pages are dispatched. The query's offset is left at its initial
// value.
func (f *Fetcher) FetchAllConcurrent(ctx context.Context, q query.Pager, size *int, maxConcurrency int) (ResultSet, error) {
	cursor := q.Cursor()
	if err := checkRequest(cursor, size); err != nil {
		return nil, err
	}
	if size != nil && *size == 0 {
		return ResultSet{}, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = f.config.MaxConcurrency
	}

	start := time.Now()
	startOffset := cursor.Offset
	limit := cursor.Clamp()

	first, err := f.source.FetchPage(ctx, q, startOffset, limit)
	if err != nil {
		fetchFailures.WithLabelValues(strategyConcurrent).Inc()
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	fetchPages.WithLabelValues(strategyConcurrent).Inc()
	if first.Total < 0 {
		fetchFailures.WithLabelValues(strategyConcurrent).Inc()
		return nil, fmt.Errorf("failed to fetch first page: %w", ErrMissingTotal)
	}

	target := available(first.Total, startOffset)
	if size != nil && *size < target {
		target = *size
	}

	results := append(ResultSet{}, first.Records...)
	if len(results) >= target || len(first.Records) == 0 {
		results = truncate(results, target)
		f.complete(strategyConcurrent, start, len(results))
		return results, nil
	}

	var offsets []int
	for next := limit; next < target; next += limit {
		offsets = append(offsets, startOffset+next)
	}

	f.logger.Info().
		Int("total", first.Total).
		Int("target", target).
		Int("pages", len(offsets)+1).
		Int("max_concurrency", maxConcurrency).
		Msg("Starting concurrent page fetch")

	// Each task owns one slot; failures are judged in offset order.
	pages := make([]*Page, len(offsets))
	errs := make([]error, len(offsets))
	var failed atomic.Bool
	var g errgroup.Group
	g.SetLimit(maxConcurrency)

	for i, offset := range offsets {
		// g.Go blocks until a slot frees up.
		if failed.Load() {
			break
		}
		g.Go(func() error {
			fetchInflight.Inc()
			defer fetchInflight.Dec()

			page, err := f.source.FetchPage(ctx, q, offset, limit)
			if err != nil {
				failed.Store(true)
				f.logger.Warn().
					Err(err).
					Int("offset", offset).
					Msg("Page fetch failed")
				errs[i] = fmt.Errorf("fetch page at offset %d: %w", offset, err)
				return nil
			}
			fetchPages.WithLabelValues(strategyConcurrent).Inc()

			f.logger.Debug().
				Int("offset", offset).
				Int("records", len(page.Records)).
				Msg("Page fetched")

			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	for i, page := range pages {
		if errs[i] != nil {
			fetchFailures.WithLabelValues(strategyConcurrent).Inc()
			return nil, errs[i]
		}
		if page == nil {
			// Not admitted: a lower offset failed after admission stopped.
			fetchFailures.WithLabelValues(strategyConcurrent).Inc()
			return nil, firstError(errs)
		}
		if len(page.Records) == 0 {
			break
		}
		results = append(results, page.Records...)
		if len(results) >= target {
			break
		}
	}

	results = truncate(results, target)
	f.complete(strategyConcurrent, start, len(results))
	return results, nil
}

func (f *Fetcher) complete(strategy string, start time.Time, records int) {
	elapsed := time.Since(start)
	fetchDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	fetchRecords.WithLabelValues(strategy).Add(float64(records))

	f.logger.Info().
		Str("strategy", strategy).
		Int("records", records).
		Dur("duration", elapsed).
		Msg("Fetch complete")
}

func checkRequest(cursor *query.Page, size *int) error {
	if cursor.Offset < 0 {
		return fmt.Errorf("%w: offset %d is negative", ErrInvalidQuery, cursor.Offset)
	}
	if cursor.Limit < 1 {
		return fmt.Errorf("%w: limit %d is below 1", ErrInvalidQuery, cursor.Limit)
	}
	if size != nil && *size < 0 {
		return fmt.Errorf("%w: requested size %d is negative", ErrInvalidQuery, *size)
	}
	return nil
}

// available is the number of records the server holds at or after offset.
func available(total, offset int) int {
	if n := total - offset; n > 0 {
		return n
	}
	return 0
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return errors.New("page not fetched")
}

func truncate(results ResultSet, n int) ResultSet {
	if len(results) > n {
		return results[:n]
	}
	return results
}
