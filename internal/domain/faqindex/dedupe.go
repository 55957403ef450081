package faqindex

// duplicateDetector flags corpus entries whose question overlaps a candidate
// beyond the configured thresholds.
type duplicateDetector struct {
	flagThreshold float64
	skipThreshold float64
}

func newDuplicateDetector(flagThreshold, skipThreshold float64) *duplicateDetector {
	return &duplicateDetector{
		flagThreshold: flagThreshold,
		skipThreshold: skipThreshold,
	}
}

// FindDuplicates compares the candidate question against every snapshot
// entry. Entries without a question in metadata cannot be compared and are
// skipped. Rewordings with less than the flag threshold of word overlap are
// assumed materially distinct.
func (d *duplicateDetector) FindDuplicates(candidate FAQRecord, corpus []QueryResult) []DuplicateCandidate {
	var duplicates []DuplicateCandidate
	for _, existing := range corpus {
		if existing.Metadata.Question == "" {
			continue
		}
		score := Similarity(candidate.Question, existing.Metadata.Question)
		if score > d.flagThreshold {
			duplicates = append(duplicates, DuplicateCandidate{
				ExistingID:       existing.ID,
				ExistingQuestion: existing.Metadata.Question,
				Similarity:       score,
			})
		}
	}
	return duplicates
}

// ShouldSkip reports whether any duplicate is confident enough to treat the
// candidate as the same FAQ re-ingested. Matches between the flag and skip
// thresholds stay in the human-reviewable ambiguity zone and do not block
// ingestion.
func (d *duplicateDetector) ShouldSkip(duplicates []DuplicateCandidate) bool {
	for _, dup := range duplicates {
		if dup.Similarity > d.skipThreshold {
			return true
		}
	}
	return false
}
