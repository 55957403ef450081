package faqindex

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
	"github.com/tealeaves/faq-assistant/pkg/util"
)

// Service exposes the ingestion, retrieval and maintenance core.
type Service interface {
	IngestBatch(ctx context.Context, records []FAQRecord, source string) (IngestSummary, error)
	Search(ctx context.Context, term string, topK int) (SearchResult, error)
	DeleteByID(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	cfg      Config
	index    VectorIndex
	embedder Embedder
	detector *duplicateDetector
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewService wires up the FAQ index domain.
func NewService(cfg Config, index VectorIndex, embedder Embedder, logger *slog.Logger) Service {
	cfg = cfg.withDefaults()
	limit := rate.Inf
	if cfg.IngestRate > 0 {
		limit = rate.Limit(cfg.IngestRate)
	}
	return &service{
		cfg:      cfg,
		index:    index,
		embedder: embedder,
		detector: newDuplicateDetector(cfg.FlagThreshold, cfg.SkipThreshold),
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With("component", "faqindex.service"),
	}
}

// DeleteByID removes one entry. Deleting an unknown ID succeeds.
func (s *service) DeleteByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "vector id cannot be empty", nil)
	}
	if err := s.index.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.CodeStore, "delete failed", err)
	}
	s.logger.Info("vector deleted", "id", id)
	return nil
}

// Stats reports index info plus a categorized sample of stored entries.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	info, err := s.index.Info(ctx)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.CodeStore, "index info unavailable", err)
	}
	stats := Stats{
		Info:         info,
		TotalVectors: info.VectorCount,
		Dimension:    info.Dimension,
		Categories:   make(map[string][]QueryResult),
		LastUpdated:  util.Timestamp(util.NowUTC()),
	}
	if info.VectorCount == 0 {
		return stats, nil
	}

	sample, err := s.index.Query(ctx, s.probeVector(info.Dimension), s.cfg.SampleSize, true)
	if err != nil {
		// the headline numbers are still valid without a sample
		s.logger.Warn("stats sample query failed", "error", err)
		return stats, nil
	}
	stats.SampleEntries = sample
	for _, result := range sample {
		category := result.Metadata.CategoryOrDefault()
		stats.Categories[category] = append(stats.Categories[category], result)
	}
	return stats, nil
}

// probeVector builds the fixed non-semantic vector used to sample existing
// entries. A single fixed point yields a deterministic, geometrically biased
// sample, not a uniform one.
func (s *service) probeVector(dimension int) []float32 {
	if dimension <= 0 {
		dimension = 1536
	}
	probe := make([]float32, dimension)
	for i := range probe {
		probe[i] = s.cfg.ProbeValue
	}
	return probe
}
