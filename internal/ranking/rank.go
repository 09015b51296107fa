package ranking

import (
	"sort"
	"time"

	"github.com/minji/book-fairy/internal/types"
)

// Rank scores every record and returns a new slice sorted by score,
// highest first. The sort is stable, so records with equal scores keep
// their aggregation order and the result is deterministic for a given
// pool. The input slice is not modified.
func Rank(pool []types.BookRecord, tier types.AudienceTier, now time.Time, rules Ruleset) []types.BookRecord {
	ranked := make([]types.BookRecord, len(pool))
	copy(ranked, pool)
	for i := range ranked {
		ranked[i].Score = ScoreBook(ranked[i], tier, now, rules)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
