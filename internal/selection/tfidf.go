package selection

import (
	"math"
	"strings"
	"unicode"
)

// sparse TF-IDF vector keyed by vocabulary index.
type vector map[int]float64

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// vectorize builds one TF-IDF vector per document. Documents with no tokens
// get an empty vector.
func vectorize(docs []string) []vector {
	vocab := make(map[string]int)
	counts := make([]map[int]int, len(docs))
	df := make(map[int]int)

	for i, doc := range docs {
		counts[i] = make(map[int]int)
		for _, tok := range tokenize(doc) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			counts[i][idx]++
		}
		for idx := range counts[i] {
			df[idx]++
		}
	}

	n := float64(len(docs))
	vectors := make([]vector, len(docs))
	for i, count := range counts {
		vec := make(vector, len(count))
		for idx, tf := range count {
			// Smoothed IDF keeps terms present in every document from
			// vanishing entirely, so near-duplicate pools still compare.
			idf := math.Log(n/float64(df[idx])) + 1
			vec[idx] = float64(tf) * idf
		}
		vectors[i] = vec
	}
	return vectors
}

func cosineSim(a, b vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	dot := 0.0
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			dot += av * bv
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (norm(a) * norm(b))
}

func norm(v vector) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
