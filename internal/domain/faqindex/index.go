package faqindex

import "context"

// VectorIndex is the narrow contract this core requires from the external
// nearest-neighbour index. All operations are network calls and may fail
// transiently; the adapter never retries, callers decide.
type VectorIndex interface {
	// Upsert writes an entry, overwriting any entry with the same ID.
	Upsert(ctx context.Context, entry VectorEntry) error
	// Query returns up to topK matches ordered by descending score.
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]QueryResult, error)
	// Delete removes an entry by ID. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error
	// Info reports the current count, dimension and similarity function.
	Info(ctx context.Context) (IndexInfo, error)
}

// Embedder maps text to a fixed-dimension vector matching the index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
