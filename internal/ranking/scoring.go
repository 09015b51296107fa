// Package ranking orders the filtered candidate pool by an additive score so
// that the strongest books reach the LLM selection step first.
package ranking

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/minji/book-fairy/internal/audience"
	"github.com/minji/book-fairy/internal/types"
)

// Score points per component. HoldingsBonus must stay strictly larger than
// the sum of every other attainable bonus (currently 16) so that a held book
// always outranks an otherwise identical unheld one.
const (
	HoldingsBonus = 20

	recencyWithin1Year  = 3
	recencyWithin3Years = 2
	recencyWithin5Years = 1

	longDescriptionBonus  = 2
	shortDescriptionBonus = 1
	longDescriptionRunes  = 300
	shortDescriptionRunes = 100

	majorPublisherBonus = 2

	tierKeywordTitleBonus       = 3
	tierKeywordDescriptionBonus = 1

	childrensImprintBonus = 5
)

// Ruleset bundles the data tables scoring runs on.
type Ruleset struct {
	MajorPublishers []string       `json:"major_publishers,omitempty"`
	Audience        audience.Rules `json:"audience,omitempty"`
}

// DefaultRuleset returns the built-in publisher and keyword tables.
func DefaultRuleset() Ruleset {
	return Ruleset{
		MajorPublishers: DefaultMajorPublishers(),
		Audience:        audience.DefaultRules(),
	}
}

// IsMajorPublisher reports whether the publisher normalizes into the major
// publisher set.
func (r Ruleset) IsMajorPublisher(publisher string) bool {
	normalized := audience.NormalizePublisher(publisher)
	if normalized == "" {
		return false
	}
	for _, major := range r.MajorPublishers {
		if audience.NormalizePublisher(major) == normalized {
			return true
		}
	}
	return false
}

// ScoreBook computes the additive relevance score for a single record.
// Every component only ever adds points. Records missing a signal simply
// collect nothing for it.
func ScoreBook(rec types.BookRecord, tier types.AudienceTier, now time.Time, rules Ruleset) int {
	score := 0

	if rec.InHoldings {
		score += HoldingsBonus
	}

	if year := rec.PublicationYear(); year > 0 {
		switch age := now.Year() - year; {
		case age <= 1:
			score += recencyWithin1Year
		case age <= 3:
			score += recencyWithin3Years
		case age <= 5:
			score += recencyWithin5Years
		}
	}

	switch n := utf8.RuneCountInString(rec.Description); {
	case n > longDescriptionRunes:
		score += longDescriptionBonus
	case n > shortDescriptionRunes:
		score += shortDescriptionBonus
	}

	if rules.IsMajorPublisher(rec.Publisher) {
		score += majorPublisherBonus
	}

	if keywords := tierKeywords(tier, rules.Audience); len(keywords) > 0 {
		if containsAny(rec.Title, keywords) {
			score += tierKeywordTitleBonus
		}
		if containsAny(rec.Description, keywords) {
			score += tierKeywordDescriptionBonus
		}
	}

	if tier == types.TierElementary && rules.Audience.IsChildrensImprint(rec.Publisher) {
		score += childrensImprintBonus
	}

	return score
}

func tierKeywords(tier types.AudienceTier, rules audience.Rules) []string {
	switch tier {
	case types.TierElementary:
		return rules.ChildKeywords
	case types.TierMiddle, types.TierHigh:
		return rules.TeenKeywords
	default:
		return nil
	}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
