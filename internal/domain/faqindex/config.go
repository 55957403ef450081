package faqindex

// Config holds runtime knobs for the ingestion/retrieval core.
type Config struct {
	// Source tags entries with their provenance when a batch does not name one.
	Source string
	// FlagThreshold marks near-duplicates worth logging (ambiguity zone).
	FlagThreshold float64
	// SkipThreshold drops the candidate as an already-ingested FAQ.
	SkipThreshold float64
	// SnapshotLimit bounds the per-batch corpus snapshot used for dedupe.
	SnapshotLimit int
	// ProbeValue fills the neutral probe vector used when no query is given.
	ProbeValue float32
	// IngestRate caps upstream calls during ingestion, in records per second.
	// Zero or negative disables the limiter.
	IngestRate float64
	// MinAnswerLen/MaxAnswerLen bound plausible answers; anything outside is
	// treated as extraction noise and silently filtered.
	MinAnswerLen int
	MaxAnswerLen int
	// DefaultTopK applies when a search request does not specify one.
	DefaultTopK int
	// SampleSize is the number of entries sampled for the stats endpoint.
	SampleSize int
}

func (c Config) withDefaults() Config {
	if c.Source == "" {
		c.Source = "faq"
	}
	if c.FlagThreshold <= 0 {
		c.FlagThreshold = 0.8
	}
	if c.SkipThreshold <= 0 {
		c.SkipThreshold = 0.9
	}
	if c.SnapshotLimit <= 0 {
		c.SnapshotLimit = 1000
	}
	if c.ProbeValue == 0 {
		c.ProbeValue = 0.1
	}
	if c.MinAnswerLen <= 0 {
		c.MinAnswerLen = 20
	}
	if c.MaxAnswerLen <= 0 {
		c.MaxAnswerLen = 1000
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 10
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 20
	}
	return c
}
