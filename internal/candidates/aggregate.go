// Package candidates turns a query plan into a deduplicated candidate pool
// by fanning queries out to the external search service.
package candidates

import (
	"context"
	"errors"
	"strings"

	"github.com/minji/book-fairy/internal/types"
)

// ErrNoCandidates reports that every query failed or returned nothing. It is
// a terminal, non-fatal condition: the caller falls back to generic advice
// instead of crashing.
var ErrNoCandidates = errors.New("candidates: all queries failed or returned no records")

// DefaultPerQuery bounds the result count requested per search query.
const DefaultPerQuery = 10

// DefaultExcludedPublisherKeywords lists publisher substrings whose records
// are dropped outright (low-quality print-on-demand imprints). Compared
// case-insensitively.
var DefaultExcludedPublisherKeywords = []string{"씨익북스", "ceic books"}

// Searcher is the external search service surface the aggregator consumes.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.BookRecord, error)
}

// QueryFailure records a per-query search failure that was skipped.
type QueryFailure struct {
	Query string
	Err   error
}

// Options tunes aggregation. Zero values get defaults.
type Options struct {
	PerQuery                  int
	ExcludedPublisherKeywords []string
}

// Aggregate runs every query in plan order sequentially, merges the results
// and deduplicates them by canonical identifier, first seen wins. Records
// without any identifier are always retained. A failing query is recorded
// and skipped; only an empty overall pool is an error (ErrNoCandidates).
//
// Queries run sequentially on purpose: per-query failure must be observed
// independently, and sequential calls stay under the search service's
// request-rate ceiling.
func Aggregate(ctx context.Context, searcher Searcher, plan types.QueryPlan, opts Options) ([]types.BookRecord, []QueryFailure, error) {
	perQuery := opts.PerQuery
	if perQuery == 0 {
		perQuery = DefaultPerQuery
	}
	excluded := opts.ExcludedPublisherKeywords
	if excluded == nil {
		excluded = DefaultExcludedPublisherKeywords
	}

	var pool []types.BookRecord
	var failures []QueryFailure
	seen := make(map[string]bool)

	for _, query := range plan {
		if strings.TrimSpace(query) == "" {
			continue
		}
		records, err := searcher.Search(ctx, query, perQuery)
		if err != nil {
			failures = append(failures, QueryFailure{Query: query, Err: err})
			continue
		}
		for _, rec := range records {
			if excludedPublisher(rec.Publisher, excluded) {
				continue
			}
			if rec.NormalizedISBN != "" {
				if seen[rec.NormalizedISBN] {
					continue
				}
				seen[rec.NormalizedISBN] = true
			}
			pool = append(pool, rec)
		}
	}

	if len(pool) == 0 {
		return nil, failures, ErrNoCandidates
	}
	return pool, failures, nil
}

func excludedPublisher(publisher string, keywords []string) bool {
	p := strings.ToLower(publisher)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(p, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
