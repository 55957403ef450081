package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	"github.com/tealeaves/faq-assistant/internal/infra/llm/chatgpt"
	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
	"github.com/tealeaves/faq-assistant/pkg/metrics"
)

const defaultPrompt = "You are a customer support assistant. Answer using only the FAQ excerpts provided. " +
	"If the excerpts do not cover the question, say you do not know and suggest contacting support."

const defaultFallback = "I couldn't find an answer to that in our FAQ. " +
	"Please try rephrasing your question or contact our support team directly."

// ChatClient generates chat completions. A nil client puts the assistant in
// retrieval-only mode, answering with the best matching FAQ answer verbatim.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Retriever finds FAQ entries relevant to a search term.
type Retriever interface {
	Search(ctx context.Context, term string, topK int) (faqindex.SearchResult, error)
}

// Config tunes the assistant.
type Config struct {
	Model              string
	Temperature        float32
	Prompt             string
	FallbackMessage    string
	CacheTTL           time.Duration
	TopK               int
	MinScore           float64
	TopRecommendations int
}

func (c Config) withDefaults() Config {
	if c.Prompt == "" {
		c.Prompt = defaultPrompt
	}
	if c.FallbackMessage == "" {
		c.FallbackMessage = defaultFallback
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.MinScore <= 0 {
		c.MinScore = 0.35
	}
	if c.TopRecommendations <= 0 {
		c.TopRecommendations = 5
	}
	return c
}

// Service answers user questions grounded in the FAQ index.
type Service interface {
	Answer(ctx context.Context, req Request) (Response, error)
	Trending(ctx context.Context) ([]TrendingQuery, error)
}

type service struct {
	cfg       Config
	retriever Retriever
	chat      ChatClient
	store     Store
	logger    *slog.Logger
}

// NewService constructs the assistant service. chat may be nil.
func NewService(cfg Config, retriever Retriever, chat ChatClient, store Store, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		cfg:       cfg.withDefaults(),
		retriever: retriever,
		chat:      chat,
		store:     store,
		logger:    logger.With("component", "assistant.service"),
	}
}

func (s *service) Answer(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	canonical := faqindex.Normalize(query)
	if canonical == "" {
		return Response{}, apperrors.New(apperrors.CodeInvalidInput, "query cannot be empty")
	}

	if err := s.store.IncrementQuery(ctx, canonical, query); err != nil {
		s.logger.Warn("trending increment failed", "error", err)
	}

	if cached, ok, err := s.store.GetAnswer(ctx, canonical); err != nil {
		s.logger.Warn("answer cache lookup failed", "error", err)
	} else if ok {
		return Response{
			Answer:          cached.Answer,
			Cached:          true,
			Recommendations: s.recommendations(ctx),
		}, nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	result, err := s.retriever.Search(ctx, query, topK)
	if err != nil {
		return Response{}, err
	}

	sources := make([]Source, 0, len(result.Vectors))
	excerpts := make([]string, 0, len(result.Vectors))
	for _, match := range result.Vectors {
		if match.Score < s.cfg.MinScore || match.Metadata.Answer == "" {
			continue
		}
		sources = append(sources, Source{
			ID:       match.ID,
			Question: match.Metadata.Question,
			Score:    match.Score,
		})
		excerpts = append(excerpts, fmt.Sprintf("Q: %s\nA: %s", match.Metadata.Question, match.Metadata.Answer))
	}

	if len(sources) == 0 {
		return Response{
			Answer:          s.cfg.FallbackMessage,
			Recommendations: s.recommendations(ctx),
		}, nil
	}

	answer, usage, err := s.generate(ctx, query, excerpts, result.Vectors)
	if err != nil {
		return Response{}, err
	}

	record := AnswerRecord{Query: query, Answer: answer, CreatedAt: time.Now().UTC()}
	if err := s.store.SaveAnswer(ctx, canonical, record, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("answer cache save failed", "error", err)
	}

	return Response{
		Answer:          answer,
		Sources:         sources,
		Recommendations: s.recommendations(ctx),
		TokenUsage:      usage,
	}, nil
}

// generate asks the model for a grounded answer. Without a chat client the
// best matching FAQ answer is returned as-is.
func (s *service) generate(ctx context.Context, query string, excerpts []string, matches []faqindex.QueryResult) (string, *metrics.TokenUsage, error) {
	if s.chat == nil {
		for _, match := range matches {
			if match.Score >= s.cfg.MinScore && match.Metadata.Answer != "" {
				return match.Metadata.Answer, nil, nil
			}
		}
		return s.cfg.FallbackMessage, nil, nil
	}

	userContent := fmt.Sprintf("FAQ excerpts:\n\n%s\n\nQuestion: %s", strings.Join(excerpts, "\n\n"), query)
	resp, err := s.chat.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: s.cfg.Prompt},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.CodeLLM, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", nil, apperrors.New(apperrors.CodeLLM, "chat completion returned no content")
	}

	usage := &metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.IsZero() {
		usage = nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}

func (s *service) recommendations(ctx context.Context) []TrendingQuery {
	top, err := s.store.TopQueries(ctx, s.cfg.TopRecommendations)
	if err != nil {
		s.logger.Warn("trending lookup failed", "error", err)
		return nil
	}
	return top
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	top, err := s.store.TopQueries(ctx, s.cfg.TopRecommendations)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStore, "trending lookup failed", err)
	}
	return top, nil
}

var _ Service = (*service)(nil)
