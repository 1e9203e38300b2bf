package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/crm-sla-sweep/internal/infra/ai"
	"github.com/agencydesk/crm-sla-sweep/internal/service/summary"
)

type SummaryHandler struct {
	summaryService *summary.Service
}

func NewSummaryHandler(summaryService *summary.Service) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

type pipelineSummaryRequest struct {
	Leads []summary.LeadProjection `json:"leads" binding:"required"`
}

type pipelineSummaryResponse struct {
	Success   bool                     `json:"success"`
	Summary   *summary.PipelineSummary `json:"summary"`
	Timestamp string                   `json:"timestamp"`
}

func (h *SummaryHandler) HandlePipelineSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var req pipelineSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "leads array is required")
		return
	}

	result, err := h.summaryService.PipelineSummary(ctx, req.Leads)
	if err != nil {
		switch {
		case errors.Is(err, summary.ErrNoLeads):
			respondError(c, http.StatusBadRequest, "at least one lead is required")
		case ai.IsConfigError(err):
			respondError(c, http.StatusServiceUnavailable, "summary provider is not configured")
		case errors.Is(err, ai.ErrInvalidOutput):
			respondError(c, http.StatusBadGateway, "summary provider returned an unusable response")
		default:
			slog.ErrorContext(ctx, "pipeline summary failed",
				slog.String("error", err.Error()),
			)
			respondError(c, http.StatusBadGateway, "summary provider unavailable")
		}
		return
	}

	c.JSON(http.StatusOK, pipelineSummaryResponse{
		Success:   true,
		Summary:   result,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
