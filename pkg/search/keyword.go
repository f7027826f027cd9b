package search

import (
	"sort"
	"strings"
	"time"
)

// Result is one ranked document in a search response.
type Result struct {
	ID         string
	UpdatedAt  time.Time
	Count      int     // keyword mode: literal occurrence total
	Similarity float64 // embedding mode: full-precision cosine similarity
}

// Tokenize splits a query into lowercase terms.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// CountOccurrences sums the literal, case-insensitive occurrence counts of
// every term within content. Overlapping terms each count on their own; this
// is a count, not a boolean match.
func CountOccurrences(content string, terms []string) int {
	lowered := strings.ToLower(content)
	total := 0
	for _, term := range terms {
		total += strings.Count(lowered, term)
	}
	return total
}

// RankByCount orders results by occurrence count descending, breaking ties
// by most-recent update first.
func RankByCount(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].UpdatedAt.After(results[j].UpdatedAt)
	})
}

// RankBySimilarity orders results by cosine similarity descending. Ranking
// always uses full precision; rounding is a display concern.
func RankBySimilarity(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}
