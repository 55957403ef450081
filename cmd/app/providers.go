package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/tealeaves/faq-assistant/internal/domain/assistant"
	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	"github.com/tealeaves/faq-assistant/internal/infra/config"
	"github.com/tealeaves/faq-assistant/internal/infra/embedder"
	"github.com/tealeaves/faq-assistant/internal/infra/faqsource"
	"github.com/tealeaves/faq-assistant/internal/infra/llm/chatgpt"
	"github.com/tealeaves/faq-assistant/internal/infra/querycache"
	"github.com/tealeaves/faq-assistant/internal/infra/vectorstore/memory"
	"github.com/tealeaves/faq-assistant/internal/infra/vectorstore/postgres"
	"github.com/tealeaves/faq-assistant/internal/infra/vectorstore/upstash"
	httpiface "github.com/tealeaves/faq-assistant/internal/interface/http"
)

func provideIngestConfig(cfg *config.Config) faqindex.Config {
	return faqindex.Config{
		Source:        cfg.Ingest.Source,
		FlagThreshold: cfg.Ingest.FlagThreshold,
		SkipThreshold: cfg.Ingest.SkipThreshold,
		SnapshotLimit: cfg.Ingest.SnapshotLimit,
		ProbeValue:    cfg.Ingest.ProbeValue,
		IngestRate:    cfg.Ingest.RatePerSecond,
		MinAnswerLen:  cfg.Ingest.MinAnswerLen,
		MaxAnswerLen:  cfg.Ingest.MaxAnswerLen,
		DefaultTopK:   cfg.Ingest.DefaultTopK,
		SampleSize:    cfg.Ingest.SampleSize,
	}
}

func provideAssistantConfig(cfg *config.Config) assistant.Config {
	return assistant.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		Prompt:             cfg.Assistant.Prompt,
		FallbackMessage:    cfg.Assistant.FallbackMessage,
		CacheTTL:           cfg.Assistant.CacheTTL,
		TopK:               cfg.Assistant.TopK,
		MinScore:           cfg.Assistant.MinScore,
		TopRecommendations: cfg.Assistant.TopRecommendations,
	}
}

// provideChatGPTClient returns nil when no API key is configured. The
// embedder and assistant providers both degrade gracefully in that case.
func provideChatGPTClient(cfg *config.Config, logger *slog.Logger) *chatgpt.Client {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, running in retrieval-only mode")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("chatgpt client init failed, running in retrieval-only mode", "error", err)
		return nil
	}
	return client
}

func provideChatClient(client *chatgpt.Client) assistant.ChatClient {
	if client == nil {
		return nil
	}
	return client
}

func provideEmbedder(cfg *config.Config, client *chatgpt.Client, logger *slog.Logger) faqindex.Embedder {
	if client == nil {
		logger.Warn("using deterministic embedder", "dimension", cfg.Index.Dimension)
		return embedder.NewDeterministic(cfg.Index.Dimension)
	}
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger)
}

// provideVectorIndex treats a misconfigured explicit backend as fatal; only
// the memory provider needs no external service.
func provideVectorIndex(cfg *config.Config, logger *slog.Logger) (faqindex.VectorIndex, error) {
	switch cfg.Index.Provider {
	case config.ProviderUpstash:
		client, err := upstash.NewClient(cfg.Index.Upstash.URL, cfg.Index.Upstash.Token)
		if err != nil {
			return nil, err
		}
		logger.Info("upstash vector index enabled")
		return client, nil
	case config.ProviderPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool, err := postgres.Connect(ctx, cfg.Index.Postgres.DSN, cfg.Index.Postgres.MaxConns, cfg.Index.Postgres.MinConns)
		if err != nil {
			return nil, err
		}
		index := postgres.New(pool, cfg.Index.Dimension)
		if err := index.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("postgres vector index enabled")
		return index, nil
	default:
		logger.Info("memory vector index enabled", "dimension", cfg.Index.Dimension)
		return memory.New(cfg.Index.Dimension), nil
	}
}

func provideAssistantStore(cfg *config.Config, logger *slog.Logger) assistant.Store {
	if cfg.Assistant.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return querycache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return querycache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey answer cache enabled", "addr", cfg.Assistant.Valkey.Addr)
			return querycache.NewValkeyStore(client, "assistant")
		}
	}
	return querycache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Assistant.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Assistant.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Assistant.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideBatchLoader(cfg *config.Config, logger *slog.Logger) (httpiface.BatchLoader, error) {
	if !cfg.ObjectStorage.Enabled {
		return nil, nil
	}
	store, err := faqsource.NewObjectStore(
		cfg.ObjectStorage.Endpoint,
		cfg.ObjectStorage.AccessKey,
		cfg.ObjectStorage.SecretKey,
		cfg.ObjectStorage.Bucket,
		cfg.ObjectStorage.Region,
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("object storage import enabled", "bucket", cfg.ObjectStorage.Bucket)
	return store, nil
}
