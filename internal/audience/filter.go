package audience

import "github.com/minji/book-fairy/internal/types"

// Filter prunes records unlikely to suit the requested reader tier.
//
// The elementary tier fails closed: a record must carry positive evidence of
// child suitability (children's imprint, or a child keyword in the title or
// description) to survive, and an adult-audience keyword in the description
// excludes it regardless. The middle and high tiers fail open: records pass
// unless a children's marker flags them. An unspecified tier returns the pool
// untouched.
//
// Pool order is preserved. The input slice is never mutated.
func Filter(pool []types.BookRecord, tier types.AudienceTier, rules Rules) []types.BookRecord {
	// A zero-value tier means the caller never set one; same as unspecified.
	if tier == types.TierUnspecified || tier == "" {
		return pool
	}
	kept := make([]types.BookRecord, 0, len(pool))
	for _, rec := range pool {
		switch tier {
		case types.TierElementary:
			if suitsElementary(rec, rules) {
				kept = append(kept, rec)
			}
		case types.TierMiddle, types.TierHigh:
			if !excludedForTeens(rec, rules) {
				kept = append(kept, rec)
			}
		default:
			kept = append(kept, rec)
		}
	}
	return kept
}

func suitsElementary(rec types.BookRecord, rules Rules) bool {
	if containsAny(rec.Description, rules.AdultKeywords) {
		return false
	}
	if rules.IsChildrensImprint(rec.Publisher) {
		return true
	}
	return containsAny(rec.Title, rules.ChildKeywords) ||
		containsAny(rec.Description, rules.ChildKeywords)
}

func excludedForTeens(rec types.BookRecord, rules Rules) bool {
	// Any teen signal in the title rescues the record outright.
	if containsAny(rec.Title, rules.TeenKeywords) {
		return false
	}
	if rules.IsChildrensImprint(rec.Publisher) {
		return true
	}
	if containsAny(rec.Title, rules.PictureBookMarkers) {
		return true
	}
	if containsAny(rec.Title, rules.ElementaryMarkers) &&
		!containsAny(rec.Title, rules.UpperGradeMarkers) {
		return true
	}
	return false
}
