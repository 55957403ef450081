package embedder

import (
	"context"
	"hash/fnv"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// Deterministic avoids network calls by hashing text into a pseudo-random
// vector. Identical inputs always yield identical vectors, which is all the
// retrieval core needs for dev and tests.
type Deterministic struct {
	dim int
}

// NewDeterministic constructs the embedder with the given dimension.
func NewDeterministic(dim int) *Deterministic {
	if dim <= 0 {
		dim = 32
	}
	return &Deterministic{dim: dim}
}

// Embed converts text into a dimension-stable vector.
func (e *Deterministic) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, e.dim)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for i := 0; i < e.dim; i++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[i] = float32(seed%997) / 997.0
	}
	return vector, nil
}

var _ faqindex.Embedder = (*Deterministic)(nil)
