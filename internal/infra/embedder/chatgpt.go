package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	"github.com/tealeaves/faq-assistant/internal/infra/llm/chatgpt"
)

// maxInputTokens is the provider-side cap for a single embedding input.
const maxInputTokens = 8192

// ChatGPTEmbedder produces embeddings via an OpenAI-compatible API.
type ChatGPTEmbedder struct {
	client *chatgpt.Client
	model  string
	logger *slog.Logger

	encInit sync.Once
	enc     *tiktoken.Tiktoken
}

// NewChatGPTEmbedder constructs the embedder.
func NewChatGPTEmbedder(client *chatgpt.Client, model string, logger *slog.Logger) *ChatGPTEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTEmbedder{
		client: client,
		model:  strings.TrimSpace(model),
		logger: logger.With("component", "embedder.chatgpt"),
	}
}

// Embed maps a single text to its embedding vector.
func (e *ChatGPTEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil, errors.New("embedding input cannot be empty")
	}
	if tokens := e.countTokens(input); tokens > maxInputTokens {
		return nil, fmt.Errorf("embedding input too large: %d tokens over the %d cap", tokens, maxInputTokens)
	}

	resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: e.model,
		Input: []string{input},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response empty")
	}
	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)
	return vector, nil
}

// countTokens uses the cl100k_base BPE when available and falls back to an
// upper-biased heuristic when the encoding cannot be loaded (e.g. offline).
func (e *ChatGPTEmbedder) countTokens(text string) int {
	e.encInit.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			e.logger.Warn("tiktoken encoding unavailable, using heuristic token estimate", "error", err)
			return
		}
		e.enc = enc
	})
	if e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// estimateTokens over-estimates: roughly one token per two runes, never
// below the word count.
func estimateTokens(text string) int {
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}

var _ faqindex.Embedder = (*ChatGPTEmbedder)(nil)
