package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// Index stores vectors in Postgres with the pgvector extension. Cosine
// distance drives ranking, matching the scores the rest of the system
// expects.
type Index struct {
	pool      *pgxpool.Pool
	dimension int
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool, dimension int) *Index {
	if dimension <= 0 {
		dimension = 1536
	}
	return &Index{pool: pool, dimension: dimension}
}

// EnsureSchema creates the extension and table when missing.
func (x *Index) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS faq_vectors (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb
		)`, x.dimension),
	}
	for _, stmt := range statements {
		if _, err := x.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (x *Index) Upsert(ctx context.Context, entry faqindex.VectorEntry) error {
	if len(entry.Vector) != x.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(entry.Vector), x.dimension)
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = x.pool.Exec(ctx,
		`INSERT INTO faq_vectors (id, embedding, metadata)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`,
		entry.ID, pgvector.NewVector(entry.Vector), metadata)
	if err != nil {
		return fmt.Errorf("upsert vector: %w", err)
	}
	return nil
}

func (x *Index) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]faqindex.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}
	rows, err := x.pool.Query(ctx,
		`SELECT id, 1 - (embedding <=> $1) AS score, metadata
		 FROM faq_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	results := make([]faqindex.QueryResult, 0, topK)
	for rows.Next() {
		var (
			result faqindex.QueryResult
			raw    []byte
		)
		if err := rows.Scan(&result.ID, &result.Score, &raw); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		if includeMetadata {
			if err := json.Unmarshal(raw, &result.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vector rows: %w", err)
	}
	return results, nil
}

// Delete removes the row if present. Unknown ids are not an error.
func (x *Index) Delete(ctx context.Context, id string) error {
	if _, err := x.pool.Exec(ctx, `DELETE FROM faq_vectors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete vector: %w", err)
	}
	return nil
}

func (x *Index) Info(ctx context.Context) (faqindex.IndexInfo, error) {
	var count int64
	if err := x.pool.QueryRow(ctx, `SELECT COUNT(*) FROM faq_vectors`).Scan(&count); err != nil {
		return faqindex.IndexInfo{}, fmt.Errorf("count vectors: %w", err)
	}
	return faqindex.IndexInfo{
		VectorCount:        count,
		Dimension:          x.dimension,
		SimilarityFunction: "COSINE",
	}, nil
}

var _ faqindex.VectorIndex = (*Index)(nil)
