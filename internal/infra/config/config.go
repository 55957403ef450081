package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Index provider names accepted by index.provider.
const (
	ProviderMemory   = "memory"
	ProviderUpstash  = "upstash"
	ProviderPostgres = "postgres"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	LLM           LLMConfig           `yaml:"llm"`
	Index         IndexConfig         `yaml:"index"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Assistant     AssistantConfig     `yaml:"assistant"`
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage"`
	Auth          AuthConfig          `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Provider  string         `yaml:"provider"`
	Dimension int            `yaml:"dimension"`
	Upstash   UpstashConfig  `yaml:"upstash"`
	Postgres  PostgresConfig `yaml:"postgres"`
}

// UpstashConfig contains Upstash Vector REST credentials.
type UpstashConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// IngestConfig tunes batch ingestion and duplicate detection.
type IngestConfig struct {
	Source        string  `yaml:"source"`
	FlagThreshold float64 `yaml:"flagThreshold"`
	SkipThreshold float64 `yaml:"skipThreshold"`
	SnapshotLimit int     `yaml:"snapshotLimit"`
	ProbeValue    float32 `yaml:"probeValue"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
	MinAnswerLen  int     `yaml:"minAnswerLen"`
	MaxAnswerLen  int     `yaml:"maxAnswerLen"`
	DefaultTopK   int     `yaml:"defaultTopK"`
	SampleSize    int     `yaml:"sampleSize"`
}

// AssistantConfig controls answer generation and caching.
type AssistantConfig struct {
	Prompt             string        `yaml:"prompt"`
	FallbackMessage    string        `yaml:"fallbackMessage"`
	CacheTTL           time.Duration `yaml:"cacheTtl"`
	TopK               int           `yaml:"topK"`
	MinScore           float64       `yaml:"minScore"`
	TopRecommendations int           `yaml:"topRecommendations"`
	Valkey             ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ObjectStorageConfig configures the S3-compatible FAQ import source.
type ObjectStorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AuthConfig guards destructive admin endpoints.
type AuthConfig struct {
	AdminSecret string `yaml:"adminSecret"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("INDEX_PROVIDER"); v != "" {
		cfg.Index.Provider = v
	}
	if v := os.Getenv("INDEX_DIMENSION"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Index.Dimension = parsed
		}
	}
	if v := os.Getenv("UPSTASH_VECTOR_REST_URL"); v != "" {
		cfg.Index.Upstash.URL = v
	}
	if v := os.Getenv("UPSTASH_VECTOR_REST_TOKEN"); v != "" {
		cfg.Index.Upstash.Token = v
	}
	if v := os.Getenv("INDEX_POSTGRES_DSN"); v != "" {
		cfg.Index.Postgres.DSN = v
	}
	if v := os.Getenv("INDEX_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Index.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("INDEX_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Index.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("INGEST_SOURCE"); v != "" {
		cfg.Ingest.Source = v
	}
	if v := os.Getenv("INGEST_RATE_PER_SECOND"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ingest.RatePerSecond = parsed
		}
	}
	if v := os.Getenv("ASSISTANT_PROMPT"); v != "" {
		cfg.Assistant.Prompt = v
	}
	if v := os.Getenv("ASSISTANT_FALLBACK_MESSAGE"); v != "" {
		cfg.Assistant.FallbackMessage = v
	}
	if v := os.Getenv("ASSISTANT_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Assistant.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ASSISTANT_MIN_SCORE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Assistant.MinScore = parsed
		}
	}
	if v := os.Getenv("ASSISTANT_VALKEY_ENABLED"); v != "" {
		cfg.Assistant.Valkey.Enabled = isTruthy(v)
	}
	if v := os.Getenv("ASSISTANT_VALKEY_ADDR"); v != "" {
		cfg.Assistant.Valkey.Addr = v
	}
	if v := os.Getenv("OBJECT_STORAGE_ENABLED"); v != "" {
		cfg.ObjectStorage.Enabled = isTruthy(v)
	}
	if v := os.Getenv("OBJECT_STORAGE_ENDPOINT"); v != "" {
		cfg.ObjectStorage.Endpoint = v
	}
	if v := os.Getenv("OBJECT_STORAGE_ACCESS_KEY"); v != "" {
		cfg.ObjectStorage.AccessKey = v
	}
	if v := os.Getenv("OBJECT_STORAGE_SECRET_KEY"); v != "" {
		cfg.ObjectStorage.SecretKey = v
	}
	if v := os.Getenv("OBJECT_STORAGE_BUCKET"); v != "" {
		cfg.ObjectStorage.Bucket = v
	}
	if v := os.Getenv("OBJECT_STORAGE_REGION"); v != "" {
		cfg.ObjectStorage.Region = v
	}
	if v := os.Getenv("AUTH_ADMIN_SECRET"); v != "" {
		cfg.Auth.AdminSecret = v
	}
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			AllowedOrigins: []string{"*"},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
		},
		Index: IndexConfig{
			Provider:  ProviderMemory,
			Dimension: 1536,
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Ingest: IngestConfig{
			Source:        "faq",
			FlagThreshold: 0.8,
			SkipThreshold: 0.9,
			SnapshotLimit: 1000,
			ProbeValue:    0.1,
			RatePerSecond: 10,
			MinAnswerLen:  20,
			MaxAnswerLen:  1000,
			DefaultTopK:   10,
			SampleSize:    20,
		},
		Assistant: AssistantConfig{
			CacheTTL:           6 * time.Hour,
			TopK:               5,
			MinScore:           0.35,
			TopRecommendations: 5,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	switch c.Index.Provider {
	case ProviderMemory:
	case ProviderUpstash:
		if strings.TrimSpace(c.Index.Upstash.URL) == "" {
			return errors.New("index.upstash.url cannot be empty for the upstash provider")
		}
		if strings.TrimSpace(c.Index.Upstash.Token) == "" {
			return errors.New("index.upstash.token cannot be empty for the upstash provider")
		}
	case ProviderPostgres:
		if strings.TrimSpace(c.Index.Postgres.DSN) == "" {
			return errors.New("index.postgres.dsn cannot be empty for the postgres provider")
		}
	default:
		return fmt.Errorf("index.provider %q is not supported", c.Index.Provider)
	}
	if c.Index.Dimension <= 0 {
		return errors.New("index.dimension must be positive")
	}
	if c.Ingest.FlagThreshold <= 0 || c.Ingest.FlagThreshold > 1 {
		return errors.New("ingest.flagThreshold must be in (0, 1]")
	}
	if c.Ingest.SkipThreshold < c.Ingest.FlagThreshold || c.Ingest.SkipThreshold > 1 {
		return errors.New("ingest.skipThreshold must be in [flagThreshold, 1]")
	}
	if c.Ingest.SnapshotLimit <= 0 {
		return errors.New("ingest.snapshotLimit must be positive")
	}
	if c.Ingest.MinAnswerLen < 0 || c.Ingest.MaxAnswerLen <= c.Ingest.MinAnswerLen {
		return errors.New("ingest answer length bounds are inverted")
	}
	if c.Assistant.CacheTTL < 0 {
		return errors.New("assistant.cacheTtl cannot be negative")
	}
	if c.Assistant.MinScore < 0 || c.Assistant.MinScore > 1 {
		return errors.New("assistant.minScore must be in [0, 1]")
	}
	if c.Assistant.Valkey.Enabled && strings.TrimSpace(c.Assistant.Valkey.Addr) == "" {
		return errors.New("assistant.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.ObjectStorage.Enabled {
		if strings.TrimSpace(c.ObjectStorage.Endpoint) == "" {
			return errors.New("objectStorage.endpoint cannot be empty when enabled")
		}
		if strings.TrimSpace(c.ObjectStorage.Bucket) == "" {
			return errors.New("objectStorage.bucket cannot be empty when enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
