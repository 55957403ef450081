package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/tealeaves/faq-assistant/internal/domain/assistant"
	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	"github.com/tealeaves/faq-assistant/internal/infra/config"
	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
)

const testAdminSecret = "router-test-secret"

type stubIndexService struct {
	ingestFn func(ctx context.Context, records []faqindex.FAQRecord, source string) (faqindex.IngestSummary, error)
	searchFn func(ctx context.Context, term string, topK int) (faqindex.SearchResult, error)
	deleteFn func(ctx context.Context, id string) error
	statsFn  func(ctx context.Context) (faqindex.Stats, error)
}

func (s *stubIndexService) IngestBatch(ctx context.Context, records []faqindex.FAQRecord, source string) (faqindex.IngestSummary, error) {
	if s.ingestFn != nil {
		return s.ingestFn(ctx, records, source)
	}
	return faqindex.IngestSummary{}, nil
}

func (s *stubIndexService) Search(ctx context.Context, term string, topK int) (faqindex.SearchResult, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, term, topK)
	}
	return faqindex.SearchResult{}, nil
}

func (s *stubIndexService) DeleteByID(ctx context.Context, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *stubIndexService) Stats(ctx context.Context) (faqindex.Stats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return faqindex.Stats{}, nil
}

type stubAssistantService struct {
	answerFn   func(ctx context.Context, req assistant.Request) (assistant.Response, error)
	trendingFn func(ctx context.Context) ([]assistant.TrendingQuery, error)
}

func (s *stubAssistantService) Answer(ctx context.Context, req assistant.Request) (assistant.Response, error) {
	if s.answerFn != nil {
		return s.answerFn(ctx, req)
	}
	return assistant.Response{}, nil
}

func (s *stubAssistantService) Trending(ctx context.Context) ([]assistant.TrendingQuery, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx)
	}
	return nil, nil
}

type stubLoader struct {
	fetchFn func(ctx context.Context, key string) ([]faqindex.FAQRecord, error)
}

func (l *stubLoader) Fetch(ctx context.Context, key string) ([]faqindex.FAQRecord, error) {
	return l.fetchFn(ctx, key)
}

func newRouterUnderTest(t *testing.T, indexSvc faqindex.Service, assistantSvc assistant.Service, loader BatchLoader) *http.Server {
	t.Helper()
	handler := NewHandler(indexSvc, assistantSvc, loader, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Auth: config.AuthConfig{AdminSecret: testAdminSecret},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func performRequest(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testAdminSecret))
	require.NoError(t, err)
	return signed
}

func TestRouter_IngestSuccess(t *testing.T) {
	indexSvc := &stubIndexService{
		ingestFn: func(_ context.Context, records []faqindex.FAQRecord, source string) (faqindex.IngestSummary, error) {
			require.Len(t, records, 1)
			require.Equal(t, "catalog", source)
			return faqindex.IngestSummary{BatchID: "batch-1", Added: 1}, nil
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, nil)

	body := `{"source":"catalog","records":[{"question":"q","answer":"a"}]}`
	rec := performRequest(server, http.MethodPost, "/api/v1/faqs/ingest", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary faqindex.IngestSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.Added)
	require.Equal(t, "batch-1", summary.BatchID)
}

func TestRouter_IngestRejectsEmptyBatch(t *testing.T) {
	server := newRouterUnderTest(t, &stubIndexService{}, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/faqs/ingest", `{"records":[]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_ImportWithoutLoaderIsUnavailable(t *testing.T) {
	server := newRouterUnderTest(t, &stubIndexService{}, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/faqs/import", `{"key":"faqs.yaml"}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "import_unavailable", errBody["error"]["code"])
}

func TestRouter_ImportFetchesAndIngests(t *testing.T) {
	loader := &stubLoader{
		fetchFn: func(_ context.Context, key string) ([]faqindex.FAQRecord, error) {
			require.Equal(t, "faqs.yaml", key)
			return []faqindex.FAQRecord{{Question: "q", Answer: "a"}}, nil
		},
	}
	indexSvc := &stubIndexService{
		ingestFn: func(_ context.Context, records []faqindex.FAQRecord, _ string) (faqindex.IngestSummary, error) {
			return faqindex.IngestSummary{Added: len(records)}, nil
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, loader)

	rec := performRequest(server, http.MethodPost, "/api/v1/faqs/import", `{"key":"faqs.yaml"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary faqindex.IngestSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.Added)
}

func TestRouter_BrowseVectorsPassesQuery(t *testing.T) {
	indexSvc := &stubIndexService{
		searchFn: func(_ context.Context, term string, topK int) (faqindex.SearchResult, error) {
			require.Equal(t, "shipping", term)
			require.Equal(t, 3, topK)
			return faqindex.SearchResult{TotalFound: 2, UsedSearchTerm: true}, nil
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/vectors?search=shipping&limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result faqindex.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 2, result.TotalFound)
	require.True(t, result.UsedSearchTerm)
}

func TestRouter_BrowseVectorsStoreFailure(t *testing.T) {
	indexSvc := &stubIndexService{
		searchFn: func(_ context.Context, _ string, _ int) (faqindex.SearchResult, error) {
			return faqindex.SearchResult{}, apperrors.Wrap(apperrors.CodeStore, "vector index query failed", nil)
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/vectors", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeStore, errBody["error"]["code"])
}

func TestRouter_DeleteVectorRequiresToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubIndexService{}, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodDelete, "/api/v1/vectors?id=faq-0", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodDelete, "/api/v1/vectors?id=faq-0", "", map[string]string{
		"Authorization": "Bearer not-a-jwt",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_DeleteVectorWithValidToken(t *testing.T) {
	deleted := ""
	indexSvc := &stubIndexService{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodDelete, "/api/v1/vectors?id=faq-0", "", map[string]string{
		"Authorization": "Bearer " + adminToken(t),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "faq-0", deleted)
}

func TestRouter_VectorStats(t *testing.T) {
	indexSvc := &stubIndexService{
		statsFn: func(_ context.Context) (faqindex.Stats, error) {
			return faqindex.Stats{TotalVectors: 42, Dimension: 1536}, nil
		},
	}
	server := newRouterUnderTest(t, indexSvc, &stubAssistantService{}, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/vectors/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats faqindex.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, int64(42), stats.TotalVectors)
}

func TestRouter_ChatSuccess(t *testing.T) {
	assistantSvc := &stubAssistantService{
		answerFn: func(_ context.Context, req assistant.Request) (assistant.Response, error) {
			require.Equal(t, "how do i return an item", req.Query)
			return assistant.Response{Answer: "Within 30 days with a receipt."}, nil
		},
	}
	server := newRouterUnderTest(t, &stubIndexService{}, assistantSvc, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/chat", `{"query":"how do i return an item"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp assistant.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Answer, "30 days")
}

func TestRouter_ChatLLMFailure(t *testing.T) {
	assistantSvc := &stubAssistantService{
		answerFn: func(_ context.Context, _ assistant.Request) (assistant.Response, error) {
			return assistant.Response{}, apperrors.Wrap(apperrors.CodeLLM, "chat completion failed", nil)
		},
	}
	server := newRouterUnderTest(t, &stubIndexService{}, assistantSvc, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/chat", `{"query":"anything"}`, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeLLM, errBody["error"]["code"])
}

func TestRouter_Trending(t *testing.T) {
	assistantSvc := &stubAssistantService{
		trendingFn: func(_ context.Context) ([]assistant.TrendingQuery, error) {
			return []assistant.TrendingQuery{{Query: "track order", Count: 7}}, nil
		},
	}
	server := newRouterUnderTest(t, &stubIndexService{}, assistantSvc, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/faqs/trending", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]assistant.TrendingQuery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["recommendations"], 1)
	require.Equal(t, int64(7), body["recommendations"][0].Count)
}
