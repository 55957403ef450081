package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tealeaves/faq-assistant/internal/domain/assistant"
	"github.com/tealeaves/faq-assistant/internal/domain/faqindex"
	apperrors "github.com/tealeaves/faq-assistant/pkg/errors"
)

// BatchLoader fetches a FAQ batch from an external source by key.
type BatchLoader interface {
	Fetch(ctx context.Context, key string) ([]faqindex.FAQRecord, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	indexSvc     faqindex.Service
	assistantSvc assistant.Service
	loader       BatchLoader
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler. loader may be nil when no
// object storage import source is configured.
func NewHandler(indexSvc faqindex.Service, assistantSvc assistant.Service, loader BatchLoader, logger *slog.Logger) *Handler {
	return &Handler{
		indexSvc:     indexSvc,
		assistantSvc: assistantSvc,
		loader:       loader,
		logger:       logger.With("component", "http.handler"),
	}
}

type ingestRequest struct {
	Source  string               `json:"source"`
	Records []faqindex.FAQRecord `json:"records"`
}

// IngestFAQs runs a batch of FAQ records through the ingestion pipeline.
func (h *Handler) IngestFAQs(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if len(req.Records) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "records cannot be empty", nil))
		return
	}

	summary, err := h.indexSvc.IngestBatch(c.Request.Context(), req.Records, req.Source)
	if err != nil {
		abortWithError(c, serviceError(err, "ingest_failed"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

type importRequest struct {
	Key    string `json:"key"`
	Source string `json:"source"`
}

// ImportFAQs fetches a FAQ batch from object storage and ingests it.
func (h *Handler) ImportFAQs(c *gin.Context) {
	if h.loader == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "import_unavailable", "no import source is configured", nil))
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "key cannot be empty", nil))
		return
	}

	records, err := h.loader.Fetch(c.Request.Context(), req.Key)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadGateway, "import_failed", errMessage(err), err))
		return
	}
	summary, err := h.indexSvc.IngestBatch(c.Request.Context(), records, req.Source)
	if err != nil {
		abortWithError(c, serviceError(err, "ingest_failed"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// BrowseVectors lists stored vectors, optionally narrowed by a search term.
func (h *Handler) BrowseVectors(c *gin.Context) {
	term := c.Query("search")
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}

	result, err := h.indexSvc.Search(c.Request.Context(), term, limit)
	if err != nil {
		abortWithError(c, serviceError(err, "search_failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteVector removes a single vector by id.
func (h *Handler) DeleteVector(c *gin.Context) {
	id := c.Query("id")
	if err := h.indexSvc.DeleteByID(c.Request.Context(), id); err != nil {
		abortWithError(c, serviceError(err, "delete_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vector deleted", "id": id})
}

// VectorStats summarizes the index contents.
func (h *Handler) VectorStats(c *gin.Context) {
	stats, err := h.indexSvc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, serviceError(err, "stats_failed"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Chat answers a user question grounded in the FAQ index.
func (h *Handler) Chat(c *gin.Context) {
	var req assistant.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.assistantSvc.Answer(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, serviceError(err, "chat_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Trending returns the most asked questions.
func (h *Handler) Trending(c *gin.Context) {
	items, err := h.assistantSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, serviceError(err, "trending_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// serviceError maps domain error codes onto HTTP status codes.
func serviceError(err error, fallbackCode string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, apperrors.CodeEmbedding):
		status = http.StatusBadGateway
		code = apperrors.CodeEmbedding
	case apperrors.IsCode(err, apperrors.CodeLLM):
		status = http.StatusBadGateway
		code = apperrors.CodeLLM
	case apperrors.IsCode(err, apperrors.CodeStore):
		status = http.StatusBadGateway
		code = apperrors.CodeStore
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
