// Package embed defines the text embedding capability shared by the chunker
// and the index.
package embed

import (
	"context"
	"errors"
	"math"
)

// ErrEmbeddingUnavailable is returned when no usable embedding model is
// available, e.g. a TF-IDF embedder that has not been fitted yet.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Embedder turns text into vectors. EmbedBatch returns one vector per input,
// in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Fitter is implemented by embedders that learn their vocabulary from the
// corpus being indexed. Fit returns a new, ready Embedder and leaves the
// receiver untouched.
type Fitter interface {
	Fit(corpus []string) (Embedder, error)
}

// Cosine returns the cosine similarity of a and b, or 0 if either is a zero
// vector or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
