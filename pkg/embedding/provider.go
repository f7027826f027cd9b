package embedding

import (
	"context"
	"math"
)

// Provider generates fixed-dimension embedding vectors for text.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Normalize scales a vector to unit length. Cosine similarity over
// normalized vectors reduces to a dot product, so every provider normalizes
// its output before returning it.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
