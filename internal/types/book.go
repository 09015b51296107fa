// Package types defines the shared data model for the recommendation pipeline.
package types

import (
	"strconv"
	"strings"
)

// MatchKind describes how a candidate was matched against the holdings store.
type MatchKind string

// Match kinds, in decreasing order of confidence.
const (
	MatchNone        MatchKind = "none"
	MatchISBN        MatchKind = "isbn"
	MatchTitleAuthor MatchKind = "title_author"
)

// HoldingsInfo carries the library metadata attached to a held candidate.
type HoldingsInfo struct {
	CallNumber string `json:"call_number"`
	Status     string `json:"status"`
}

// BookRecord is a candidate book as returned by the external search service,
// enriched in place as it moves through the pipeline.
type BookRecord struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	PublishedAt string   `json:"published_at,omitempty"` // ISO 8601 date from the search service
	RawISBN     string   `json:"isbn,omitempty"`         // may hold several space-separated identifiers
	Description string   `json:"description,omitempty"`

	// NormalizedISBN is the single canonical identifier chosen at ingest:
	// a cleaned 13-digit form if present, else 10-digit, else the first raw
	// token. Empty when the record carries no identifier at all.
	NormalizedISBN string `json:"normalized_isbn,omitempty"`

	// Pipeline-attached annotations.
	InHoldings    bool          `json:"in_holdings"`
	HoldingsMatch MatchKind     `json:"holdings_match_kind,omitempty"`
	Holdings      *HoldingsInfo `json:"holdings,omitempty"`
	Score         int           `json:"score"`
}

// PublicationYear parses the year out of PublishedAt.
// Returns 0 when the date is absent or unparseable.
func (b *BookRecord) PublicationYear() int {
	if len(b.PublishedAt) < 4 {
		return 0
	}
	year, err := strconv.Atoi(b.PublishedAt[:4])
	if err != nil || year < 1000 {
		return 0
	}
	return year
}

// AuthorLine joins the ordered author list for display and prompting.
func (b *BookRecord) AuthorLine() string {
	return strings.Join(b.Authors, ", ")
}
