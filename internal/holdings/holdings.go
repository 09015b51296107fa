// Package holdings answers "does the library already own this book?" while
// tolerating identifier-format and metadata inconsistency between the
// holdings store and the external search service.
package holdings

import (
	"context"
	"errors"
	"strings"

	"github.com/minji/book-fairy/internal/isbn"
	"github.com/minji/book-fairy/internal/types"
)

// Sentinel errors for lookup failures. Both are recoverable conditions:
// callers treat them as "no match", never as a fault.
var (
	ErrNotFound     = errors.New("holdings: no matching record")
	ErrInvalidQuery = errors.New("holdings: query yields no usable identifier")
)

// Record is one row of the local library store.
type Record struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	CallNumber      string `json:"call_number,omitempty"`
	PublicationYear string `json:"publication_year,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Result is a successful lookup: the matched record and how it matched.
// A title/author match carries lower confidence than an identifier match:
// the held edition may differ from the one recommended.
type Result struct {
	Record Record
	Match  types.MatchKind
}

// Finder is the lookup surface the pipeline consumes.
type Finder interface {
	FindByISBN(ctx context.Context, query string) (*Result, error)
	FindByTitleAuthor(ctx context.Context, title, author string) (*Result, error)
}

// matchByISBN scans records for one whose identifier shares any ISBN-10/13
// form with the query. First match in store order wins. The scan is O(n),
// which is acceptable for holdings tables in the low thousands; correctness
// across 10/13-digit variance is the hard requirement here.
func matchByISBN(records []Record, query string) (*Record, error) {
	queryVersions := isbn.AllVersions(query)
	if len(queryVersions) == 0 {
		return nil, ErrInvalidQuery
	}
	for i := range records {
		for v := range isbn.AllVersions(records[i].ISBN) {
			if _, ok := queryVersions[v]; ok {
				return &records[i], nil
			}
		}
	}
	return nil, ErrNotFound
}

// matchByTitleAuthor finds the first record whose normalized title contains
// or is contained by the normalized query title (subtitle and edition
// variance make exact equality useless), with the same bidirectional rule
// for the author when one is given.
func matchByTitleAuthor(records []Record, title, author string) (*Record, error) {
	queryTitle := isbn.NormalizeText(title)
	if queryTitle == "" {
		return nil, ErrInvalidQuery
	}
	queryAuthor := isbn.NormalizeText(author)
	for i := range records {
		storedTitle := isbn.NormalizeText(records[i].Title)
		if storedTitle == "" {
			continue
		}
		if !strings.Contains(storedTitle, queryTitle) && !strings.Contains(queryTitle, storedTitle) {
			continue
		}
		if queryAuthor != "" {
			storedAuthor := isbn.NormalizeText(records[i].Author)
			if storedAuthor == "" {
				continue
			}
			if !strings.Contains(storedAuthor, queryAuthor) && !strings.Contains(queryAuthor, storedAuthor) {
				continue
			}
		}
		return &records[i], nil
	}
	return nil, ErrNotFound
}

// Annotate checks one candidate against the store and attaches the outcome
// in place: identifier lookup first, title/author as the lower-confidence
// fallback. Lookup misses are not errors; only store access faults are
// returned.
func Annotate(ctx context.Context, finder Finder, rec *types.BookRecord) error {
	rec.InHoldings = false
	rec.HoldingsMatch = types.MatchNone
	rec.Holdings = nil

	if rec.NormalizedISBN != "" {
		result, err := finder.FindByISBN(ctx, rec.NormalizedISBN)
		switch {
		case err == nil:
			attach(rec, result)
			return nil
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidQuery):
			// fall through to title/author
		default:
			return err
		}
	}

	result, err := finder.FindByTitleAuthor(ctx, rec.Title, rec.AuthorLine())
	switch {
	case err == nil:
		attach(rec, result)
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidQuery):
		return nil
	default:
		return err
	}
}

func attach(rec *types.BookRecord, result *Result) {
	rec.InHoldings = true
	rec.HoldingsMatch = result.Match
	rec.Holdings = &types.HoldingsInfo{
		CallNumber: result.Record.CallNumber,
		Status:     result.Record.Status,
	}
}
