package faqindex

// DefaultCategory is assumed when a record carries no category.
const DefaultCategory = "Uncategorized"

// FAQRecord is one question/answer pair submitted for ingestion.
type FAQRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// EntryMetadata is persisted in the index alongside each vector.
type EntryMetadata struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Category  string `json:"category,omitempty"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// CategoryOrDefault resolves the optional category field.
func (m EntryMetadata) CategoryOrDefault() string {
	if m.Category == "" {
		return DefaultCategory
	}
	return m.Category
}

// VectorEntry is the unit stored in the external index. Upserting the same
// ID overwrites both vector and metadata.
type VectorEntry struct {
	ID       string        `json:"id"`
	Vector   []float32     `json:"vector"`
	Metadata EntryMetadata `json:"metadata"`
}

// QueryResult is one ranked nearest-neighbour match.
type QueryResult struct {
	ID       string        `json:"id"`
	Score    float64       `json:"score"`
	Metadata EntryMetadata `json:"metadata"`
}

// IndexInfo describes the configured index.
type IndexInfo struct {
	VectorCount        int64  `json:"vectorCount"`
	Dimension          int    `json:"dimension"`
	SimilarityFunction string `json:"similarityFunction"`
}

// DuplicateCandidate links a new record to an existing near-duplicate entry.
type DuplicateCandidate struct {
	ExistingID       string  `json:"existingId"`
	ExistingQuestion string  `json:"existingQuestion"`
	Similarity       float64 `json:"similarity"`
}

// IngestSummary reports the outcome of one batch. Added + Duplicates +
// Errors equals the number of records that survived the noise filter.
type IngestSummary struct {
	BatchID    string `json:"batchId"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Filtered   int    `json:"filtered"`
}

// SearchResult is returned by Search for both semantic and probe lookups.
type SearchResult struct {
	Vectors        []QueryResult `json:"vectors"`
	TotalFound     int           `json:"totalFound"`
	UsedSearchTerm bool          `json:"usedSearchTerm"`
	Info           IndexInfo     `json:"info"`
}

// Stats backs the dashboard endpoint.
type Stats struct {
	Info          IndexInfo                `json:"databaseInfo"`
	TotalVectors  int64                    `json:"totalVectors"`
	Dimension     int                      `json:"dimension"`
	SampleEntries []QueryResult            `json:"sampleData"`
	Categories    map[string][]QueryResult `json:"categorizedData"`
	LastUpdated   string                   `json:"lastUpdated"`
}
