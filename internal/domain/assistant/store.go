package assistant

import (
	"context"
	"time"
)

// Store caches generated answers and tracks query popularity. Keys are
// canonical (normalized) query strings so that trivially reworded questions
// share a cache slot.
type Store interface {
	GetAnswer(ctx context.Context, canonical string) (AnswerRecord, bool, error)
	SaveAnswer(ctx context.Context, canonical string, record AnswerRecord, ttl time.Duration) error
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}
