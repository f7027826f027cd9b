package search

import "math"

// Cosine computes the cosine similarity between two vectors. Mismatched or
// zero-magnitude vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Round2 rounds a similarity for display. Ranking never uses this.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
