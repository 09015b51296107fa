package types

import "fmt"

// AudienceTier is the enumerated target-reader category driving the
// filtering and scoring heuristics.
type AudienceTier string

// Audience tiers. TierUnspecified disables audience filtering.
const (
	TierUnspecified AudienceTier = "unspecified"
	TierElementary  AudienceTier = "elementary"
	TierMiddle      AudienceTier = "middle"
	TierHigh        AudienceTier = "high"
)

// ParseAudienceTier maps a user-supplied tier name to an AudienceTier.
// The empty string parses to TierUnspecified.
func ParseAudienceTier(s string) (AudienceTier, error) {
	switch s {
	case "", "unspecified":
		return TierUnspecified, nil
	case "elementary":
		return TierElementary, nil
	case "middle":
		return TierMiddle, nil
	case "high":
		return TierHigh, nil
	default:
		return TierUnspecified, fmt.Errorf("unknown audience tier %q (want elementary, middle, high or unspecified)", s)
	}
}

// StudentProfile is the request context for one recommendation run.
// It is constructed once from user input and treated as immutable for the
// duration of the pipeline.
type StudentProfile struct {
	ReadingLevel string       `json:"reading_level"`
	AgeGrade     string       `json:"age_grade"`
	Tier         AudienceTier `json:"tier"`
	Topic        string       `json:"topic"`
	Genres       []string     `json:"genres,omitempty"`
	Interests    string       `json:"interests,omitempty"`
	Dislikes     string       `json:"dislikes,omitempty"`
	LikedBooks   []string     `json:"liked_books,omitempty"`
}

// QueryPlan is the ordered sequence of short search strings derived from a
// StudentProfile. Order is load-bearing: the aggregator's first-seen-wins
// deduplication depends on it.
type QueryPlan []string
