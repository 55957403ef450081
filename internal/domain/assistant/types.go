package assistant

import (
	"time"

	"github.com/tealeaves/faq-assistant/pkg/metrics"
)

// Request is a single user question for the assistant.
type Request struct {
	Query string `json:"query"`
	TopK  int    `json:"topK,omitempty"`
}

// Source points at a FAQ entry that informed the answer.
type Source struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Score    float64 `json:"score"`
}

// Response is the assistant's reply, with provenance.
type Response struct {
	Answer          string              `json:"answer"`
	Sources         []Source            `json:"sources,omitempty"`
	Cached          bool                `json:"cached"`
	Recommendations []TrendingQuery     `json:"recommendations,omitempty"`
	TokenUsage      *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// TrendingQuery is a popular question with its ask count.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// AnswerRecord is the cached form of a generated answer.
type AnswerRecord struct {
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"createdAt"`
}
