package faqindex

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
)

const testDimension = 8

type fakeEmbedder struct {
	calls  int
	failOn string
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding provider unavailable")
	}
	vector := make([]float32, testDimension)
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()
	for i := range vector {
		seed = seed*1099511628211 + 1469598103934665603
		vector[i] = float32(seed%997) / 997.0
	}
	return vector, nil
}

type fakeIndex struct {
	entries   map[string]VectorEntry
	queryErr  error
	infoErr   error
	upsertErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string]VectorEntry)}
}

func (f *fakeIndex) Upsert(_ context.Context, entry VectorEntry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeIndex) Query(_ context.Context, vector []float32, topK int, includeMetadata bool) ([]QueryResult, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	results := make([]QueryResult, 0, len(f.entries))
	for _, entry := range f.entries {
		result := QueryResult{ID: entry.ID, Score: cosine(vector, entry.Vector)}
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

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeIndex) Info(_ context.Context) (IndexInfo, error) {
	if f.infoErr != nil {
		return IndexInfo{}, f.infoErr
	}
	return IndexInfo{
		VectorCount:        int64(len(f.entries)),
		Dimension:          testDimension,
		SimilarityFunction: "COSINE",
	}, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func newServiceUnderTest(index VectorIndex, embedder Embedder) Service {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(Config{Source: "test"}, index, embedder, discard)
}

func sampleRecords() []FAQRecord {
	return []FAQRecord{
		{Question: "How do I track my order?", Answer: "Log into your account and open the orders page to see tracking details.", Category: "Orders"},
		{Question: "Can I return or exchange an item?", Answer: "Eligible items can be returned within 30 days with the original receipt.", Category: "Orders"},
		{Question: "What payment methods are available?", Answer: "We accept major credit cards, PayPal, Apple Pay and gift cards."},
	}
}

func TestIngestBatchAddsFreshRecords(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})

	summary, err := svc.IngestBatch(context.Background(), sampleRecords(), "")
	require.NoError(t, err)
	require.Equal(t, 3, summary.Added)
	require.Equal(t, 0, summary.Duplicates)
	require.Equal(t, 0, summary.Errors)
	require.NotEmpty(t, summary.BatchID)

	for i := 0; i < 3; i++ {
		entry, ok := index.entries[fmt.Sprintf("test-%d", i)]
		require.True(t, ok, "expected deterministic id test-%d", i)
		require.Equal(t, "test", entry.Metadata.Source)
		require.NotEmpty(t, entry.Metadata.Timestamp)
		require.Len(t, entry.Vector, testDimension)
	}
}

func TestIngestBatchReingestIsIdempotent(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})

	first, err := svc.IngestBatch(context.Background(), sampleRecords(), "faq")
	require.NoError(t, err)
	require.Equal(t, 3, first.Added)
	countAfterFirst := len(index.entries)

	second, err := svc.IngestBatch(context.Background(), sampleRecords(), "faq")
	require.NoError(t, err)
	require.Equal(t, 0, second.Added)
	require.Equal(t, 3, second.Duplicates)
	require.Equal(t, countAfterFirst, len(index.entries))
}

func TestIngestBatchIsolatesPerRecordFailures(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{failOn: "payment methods"})

	summary, err := svc.IngestBatch(context.Background(), sampleRecords(), "")
	require.NoError(t, err)
	require.Equal(t, 2, summary.Added)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, 3, summary.Added+summary.Duplicates+summary.Errors)
}

func TestIngestBatchFiltersExtractionNoise(t *testing.T) {
	index := newFakeIndex()
	embedder := &fakeEmbedder{}
	svc := newServiceUnderTest(index, embedder)

	records := []FAQRecord{
		{Question: "", Answer: "an answer that belongs to no question whatsoever"},
		{Question: "Too short?", Answer: "nope"},
		{Question: "Too long?", Answer: strings.Repeat("x", 1200)},
		{Question: "Valid question?", Answer: "A perfectly plausible answer of reasonable length."},
	}
	summary, err := svc.IngestBatch(context.Background(), records, "")
	require.NoError(t, err)
	require.Equal(t, 3, summary.Filtered)
	require.Equal(t, 1, summary.Added)
	require.Equal(t, 1, len(index.entries))
}

func TestSearchEmptyTermFallsBackToProbe(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})
	_, err := svc.IngestBatch(context.Background(), sampleRecords(), "")
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "", 5)
	require.NoError(t, err)
	require.False(t, result.UsedSearchTerm)
	require.NotEmpty(t, result.Vectors)
	require.Equal(t, len(result.Vectors), result.TotalFound)
	require.Equal(t, testDimension, result.Info.Dimension)
}

func TestSearchNonsenseStillReturnsNeighbours(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})
	_, err := svc.IngestBatch(context.Background(), sampleRecords(), "")
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), "completely unrelated nonsense query xyz123", 5)
	require.NoError(t, err)
	require.True(t, result.UsedSearchTerm)
	require.Len(t, result.Vectors, 3, "nearest neighbours are returned however weak")
	for i := 1; i < len(result.Vectors); i++ {
		require.GreaterOrEqual(t, result.Vectors[i-1].Score, result.Vectors[i].Score)
	}
}

func TestSearchStoreFailureIsAnError(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})
	index.queryErr = errors.New("index unreachable")

	result, err := svc.Search(context.Background(), "track my order", 5)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStore))
	// info was retrievable independently of the failing query
	require.Equal(t, testDimension, result.Info.Dimension)
}

func TestDeleteByID(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})

	require.NoError(t, svc.DeleteByID(context.Background(), "never-existed-42"))

	err := svc.DeleteByID(context.Background(), "  ")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestStatsGroupsSampleByCategory(t *testing.T) {
	index := newFakeIndex()
	svc := newServiceUnderTest(index, &fakeEmbedder{})
	_, err := svc.IngestBatch(context.Background(), sampleRecords(), "")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalVectors)
	require.Equal(t, testDimension, stats.Dimension)
	require.Len(t, stats.Categories["Orders"], 2)
	require.Len(t, stats.Categories[DefaultCategory], 1)
	require.NotEmpty(t, stats.LastUpdated)
}
