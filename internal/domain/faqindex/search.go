package faqindex

import (
	"context"
	"strings"

	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
)

// Search embeds the query and runs a nearest-neighbour lookup. With an empty
// term it falls back to the neutral probe vector, sampling arbitrary entries
// for browsing. Failures propagate to the caller so they stay distinguishable
// from a legitimately empty result; index info is attached to the result
// whenever it was retrievable independently of the failure.
func (s *service) Search(ctx context.Context, term string, topK int) (SearchResult, error) {
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	term = strings.TrimSpace(term)
	result := SearchResult{UsedSearchTerm: term != ""}

	info, infoErr := s.index.Info(ctx)
	if infoErr == nil {
		result.Info = info
	}

	var vector []float32
	if term != "" {
		embedded, err := s.embedder.Embed(ctx, term)
		if err != nil {
			return result, apperrors.Wrap(apperrors.CodeEmbedding, "query embedding failed", err)
		}
		vector = embedded
	} else {
		if infoErr != nil {
			return result, apperrors.Wrap(apperrors.CodeStore, "index info unavailable", infoErr)
		}
		vector = s.probeVector(info.Dimension)
	}

	matches, err := s.index.Query(ctx, vector, topK, true)
	if err != nil {
		return result, apperrors.Wrap(apperrors.CodeStore, "vector query failed", err)
	}
	result.Vectors = matches
	result.TotalFound = len(matches)
	return result, nil
}
