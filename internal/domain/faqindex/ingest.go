package faqindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
	"github.com/tealeaves/faq-assistant/pkg/util"
)

// IngestBatch runs fetch -> dedupe -> embed -> upsert for every record.
// Records are processed strictly in input order, each one isolated so a
// single failure never aborts the batch. Duplicate checks run against a
// point-in-time snapshot taken once at the start of the batch; entries added
// earlier in the same batch are not visible to later checks.
func (s *service) IngestBatch(ctx context.Context, records []FAQRecord, source string) (IngestSummary, error) {
	summary := IngestSummary{BatchID: uuid.NewString()}
	source = strings.TrimSpace(source)
	if source == "" {
		source = s.cfg.Source
	}

	clean := make([]FAQRecord, 0, len(records))
	for _, record := range records {
		if s.isNoise(record) {
			summary.Filtered++
			continue
		}
		clean = append(clean, record)
	}
	if len(clean) == 0 {
		return summary, nil
	}

	snapshot, err := s.corpusSnapshot(ctx)
	if err != nil {
		// dedupe degrades to a no-op rather than blocking the batch
		s.logger.Warn("corpus snapshot unavailable, skipping duplicate detection", "batch", summary.BatchID, "error", err)
		snapshot = nil
	}
	s.logger.Info("faq batch started", "batch", summary.BatchID, "source", source, "records", len(clean), "snapshot", len(snapshot), "filtered", summary.Filtered)

	for i, record := range clean {
		if i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				return summary, apperrors.Wrap(apperrors.CodeStore, "ingestion interrupted", err)
			}
		}

		duplicates := s.detector.FindDuplicates(record, snapshot)
		if len(duplicates) > 0 {
			for _, dup := range duplicates {
				s.logger.Info("near-duplicate question", "batch", summary.BatchID, "question", record.Question, "existing", dup.ExistingQuestion, "similarity", dup.Similarity)
			}
			if s.detector.ShouldSkip(duplicates) {
				summary.Duplicates++
				continue
			}
		}

		if err := s.ingestOne(ctx, source, i, record); err != nil {
			summary.Errors++
			s.logger.Error("faq record failed", "batch", summary.BatchID, "question", record.Question, "error", err)
			continue
		}
		summary.Added++
	}

	s.logger.Info("faq batch finished", "batch", summary.BatchID, "added", summary.Added, "duplicates", summary.Duplicates, "errors", summary.Errors, "filtered", summary.Filtered)
	return summary, nil
}

// ingestOne embeds and upserts a single record. Embedding and upsert count
// as one attempt: if the upsert fails no entry exists for the record.
func (s *service) ingestOne(ctx context.Context, source string, sequence int, record FAQRecord) error {
	combined := record.Question + " " + record.Answer
	vector, err := s.embedder.Embed(ctx, combined)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEmbedding, "embedding failed", err)
	}
	if len(vector) == 0 {
		return apperrors.Wrap(apperrors.CodeEmbedding, "embedding response empty", errors.New("zero-length vector"))
	}

	entry := VectorEntry{
		// deterministic: re-ingesting the same batch re-upserts the same ids
		ID:     fmt.Sprintf("%s-%d", source, sequence),
		Vector: vector,
		Metadata: EntryMetadata{
			Question:  record.Question,
			Answer:    record.Answer,
			Category:  record.Category,
			Source:    source,
			Timestamp: util.Timestamp(util.NowUTC()),
		},
	}
	if err := s.index.Upsert(ctx, entry); err != nil {
		return apperrors.Wrap(apperrors.CodeStore, "upsert failed", err)
	}
	return nil
}

// isNoise rejects implausible scraped pairs: missing questions and answers
// outside the plausible length band. Filtered records are not errors.
func (s *service) isNoise(record FAQRecord) bool {
	if strings.TrimSpace(record.Question) == "" {
		return true
	}
	answer := strings.TrimSpace(record.Answer)
	return len(answer) < s.cfg.MinAnswerLen || len(answer) > s.cfg.MaxAnswerLen
}

// corpusSnapshot fetches the existing corpus once per batch via info plus a
// bounded probe query. The bound is a documented limitation: corpora larger
// than SnapshotLimit are only partially visible to duplicate detection.
func (s *service) corpusSnapshot(ctx context.Context) ([]QueryResult, error) {
	info, err := s.index.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info.VectorCount == 0 {
		return nil, nil
	}
	limit := s.cfg.SnapshotLimit
	if info.VectorCount < int64(limit) {
		limit = int(info.VectorCount)
	}
	return s.index.Query(ctx, s.probeVector(info.Dimension), limit, true)
}
