package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// Index is an in-process vector index with cosine scoring. It backs dev
// setups and tests when no external index is configured.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]faqindex.VectorEntry
}

// New constructs an empty index enforcing the given dimension.
func New(dimension int) *Index {
	if dimension <= 0 {
		dimension = 1536
	}
	return &Index{
		dimension: dimension,
		entries:   make(map[string]faqindex.VectorEntry),
	}
}

func (x *Index) Upsert(_ context.Context, entry faqindex.VectorEntry) error {
	if len(entry.Vector) != x.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(entry.Vector), x.dimension)
	}
	stored := entry
	stored.Vector = make([]float32, len(entry.Vector))
	copy(stored.Vector, entry.Vector)

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[entry.ID] = stored
	return nil
}

func (x *Index) Query(_ context.Context, vector []float32, topK int, includeMetadata bool) ([]faqindex.QueryResult, error) {
	if len(vector) != x.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), x.dimension)
	}
	if topK <= 0 {
		topK = 10
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]faqindex.QueryResult, 0, len(x.entries))
	for _, entry := range x.entries {
		result := faqindex.QueryResult{ID: entry.ID, Score: cosine(vector, entry.Vector)}
		if includeMetadata {
			result.Metadata = entry.Metadata
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes the entry if present. Unknown ids are not an error.
func (x *Index) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.entries, id)
	return nil
}

func (x *Index) Info(_ context.Context) (faqindex.IndexInfo, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return faqindex.IndexInfo{
		VectorCount:        int64(len(x.entries)),
		Dimension:          x.dimension,
		SimilarityFunction: "COSINE",
	}, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ faqindex.VectorIndex = (*Index)(nil)
