// Package selection narrows the ranked candidate pool to a small, diverse
// shortlist for the final LLM prompt. Diversity is measured as TF-IDF cosine
// similarity over each book's title and description.
package selection

import "github.com/minji/book-fairy/internal/types"

// Result is the output of a diversity selection run.
type Result struct {
	Picks []types.BookRecord
	// Degraded is set when text vectorization produced no usable signal
	// and the selector fell back to the first records in rank order.
	// Callers should surface this rather than treat the picks as diverse.
	Degraded bool
}

// Select picks up to k records from the ranked pool, greedily minimizing
// similarity to the records already chosen.
//
// The first pool entry always seeds the selection, so the top-ranked book is
// never dropped for diversity reasons. Each following round picks the
// candidate with the lowest mean cosine similarity to the current picks;
// ties keep the earlier, higher-ranked candidate. The result is
// deterministic for a given pool order.
func Select(pool []types.BookRecord, k int) Result {
	if k <= 0 {
		return Result{Picks: []types.BookRecord{}}
	}
	if len(pool) <= k {
		picks := make([]types.BookRecord, len(pool))
		copy(picks, pool)
		return Result{Picks: picks}
	}

	docs := make([]string, len(pool))
	for i, rec := range pool {
		docs[i] = rec.Title + " " + rec.Description
	}
	vectors := vectorize(docs)

	usable := false
	for _, vec := range vectors {
		if len(vec) > 0 {
			usable = true
			break
		}
	}
	if !usable {
		picks := make([]types.BookRecord, k)
		copy(picks, pool[:k])
		return Result{Picks: picks, Degraded: true}
	}

	chosen := make([]int, 0, k)
	chosen = append(chosen, 0)
	taken := make([]bool, len(pool))
	taken[0] = true

	for len(chosen) < k {
		best := -1
		bestSim := 0.0
		for i := range pool {
			if taken[i] {
				continue
			}
			total := 0.0
			for _, j := range chosen {
				total += cosineSim(vectors[i], vectors[j])
			}
			mean := total / float64(len(chosen))
			if best == -1 || mean < bestSim {
				best = i
				bestSim = mean
			}
		}
		chosen = append(chosen, best)
		taken[best] = true
	}

	picks := make([]types.BookRecord, 0, k)
	for _, i := range chosen {
		picks = append(picks, pool[i])
	}
	return Result{Picks: picks}
}
