package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
)

// Client talks to an Upstash Vector index over its REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient validates the connection parameters.
func NewClient(url, token string) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("upstash url cannot be empty")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("upstash token cannot be empty")
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type upsertPayload struct {
	ID       string                 `json:"id"`
	Vector   []float32              `json:"vector"`
	Metadata faqindex.EntryMetadata `json:"metadata"`
}

func (c *Client) Upsert(ctx context.Context, entry faqindex.VectorEntry) error {
	payload := upsertPayload{ID: entry.ID, Vector: entry.Vector, Metadata: entry.Metadata}
	return c.do(ctx, http.MethodPost, "/upsert", payload, nil)
}

type queryPayload struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeVectors  bool      `json:"includeVectors"`
}

type queryMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata faqindex.EntryMetadata `json:"metadata"`
}

func (c *Client) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]faqindex.QueryResult, error) {
	payload := queryPayload{Vector: vector, TopK: topK, IncludeMetadata: includeMetadata}
	var result []queryMatch
	if err := c.do(ctx, http.MethodPost, "/query", payload, &result); err != nil {
		return nil, err
	}
	out := make([]faqindex.QueryResult, 0, len(result))
	for _, match := range result {
		out = append(out, faqindex.QueryResult{ID: match.ID, Score: match.Score, Metadata: match.Metadata})
	}
	return out, nil
}

type deletePayload struct {
	IDs []string `json:"ids"`
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/delete", deletePayload{IDs: []string{id}}, nil)
}

type infoResult struct {
	VectorCount        int64  `json:"vectorCount"`
	Dimension          int    `json:"dimension"`
	SimilarityFunction string `json:"similarityFunction"`
}

func (c *Client) Info(ctx context.Context) (faqindex.IndexInfo, error) {
	var result infoResult
	if err := c.do(ctx, http.MethodGet, "/info", nil, &result); err != nil {
		return faqindex.IndexInfo{}, err
	}
	return faqindex.IndexInfo{
		VectorCount:        result.VectorCount,
		Dimension:          result.Dimension,
		SimilarityFunction: result.SimilarityFunction,
	}, nil
}

// envelope is the REST response wrapper: {"result": ...}.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s failed: status=%d body=%s", path, resp.StatusCode, truncate(raw, 512))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != "" {
		return fmt.Errorf("%s failed: %s", path, env.Error)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) > limit {
		raw = raw[:limit]
	}
	return string(raw)
}

var _ faqindex.VectorIndex = (*Client)(nil)
