package handler

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	aidomain "blogplatform-backend/internal/domains/ai"
	"blogplatform-backend/internal/domains/ai/service"
	infra "blogplatform-backend/internal/infrastructure/ai"
	"blogplatform-backend/internal/shared/response"
)

// AIHandler exposes the editor suggestion endpoints. All of them are
// best-effort: when the model is down the editor keeps working without
// suggestions.
type AIHandler struct {
	service service.SuggestionService
}

func NewAIHandler(service service.SuggestionService) *AIHandler {
	return &AIHandler{service: service}
}

// SuggestHeadlines handles POST /ai/headlines
func (h *AIHandler) SuggestHeadlines(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	headlines, err := h.service.SuggestHeadlines(c.Request.Context(), req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, aidomain.HeadlinesResponse{Headlines: headlines})
}

// SuggestKeywords handles POST /ai/keywords
func (h *AIHandler) SuggestKeywords(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	keywords, err := h.service.SuggestKeywords(c.Request.Context(), req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, aidomain.KeywordsResponse{Keywords: keywords})
}

// SuggestSummary handles POST /ai/summary
func (h *AIHandler) SuggestSummary(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	summary, err := h.service.SuggestSummary(c.Request.Context(), req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, aidomain.SummaryResponse{Summary: summary})
}

// ImproveContent handles POST /ai/improve
func (h *AIHandler) ImproveContent(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	improved, err := h.service.ImproveContent(c.Request.Context(), req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, aidomain.ImproveResponse{Content: improved})
}

func (h *AIHandler) bind(c *gin.Context) (aidomain.SuggestRequest, bool) {
	var req aidomain.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return req, false
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return req, false
	}
	return req, true
}

func (h *AIHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors

	switch {
	// 400 Bad Request
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "validation failed", validationErrs)
	case errors.Is(err, aidomain.ErrContentTooShort):
		response.BadRequest(c, err.Error())

	// 503 Service Unavailable - model unreachable, editor degrades
	case errors.Is(err, infra.ErrUnavailable):
		response.ServiceUnavailable(c, "AI suggestions are temporarily unavailable")

	// 500 Internal Server Error
	default:
		response.InternalServerError(c, "Internal server error")
	}
}
