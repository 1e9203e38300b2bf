package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/crm-sla-sweep/internal/service/sweep"
)

type SweepHandler struct {
	sweepService *sweep.Service
}

func NewSweepHandler(sweepService *sweep.Service) *SweepHandler {
	return &SweepHandler{sweepService: sweepService}
}

// HandleSweep runs one sweep pass. The scheduler calls this endpoint
// on a fixed cadence; a manual trigger hits the same path. An optional
// `from` query supplies a virtual reference time for backfills, and
// `owner` narrows the pass to one owner.
func (h *SweepHandler) HandleSweep(c *gin.Context) {
	ctx := c.Request.Context()

	now := time.Now().UTC()
	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid from time format, expected RFC3339")
			return
		}
		now = parsed.UTC()
		slog.InfoContext(ctx, "using virtual time",
			slog.Time("virtual_now", now),
		)
	}

	result, err := h.sweepService.Run(ctx, now, c.Query("owner"))
	if err != nil {
		slog.ErrorContext(ctx, "sweep pass failed",
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "sweep pass failed")
		return
	}

	c.Header("X-Run-ID", result.RunID)
	respondSuccess(c, fmt.Sprintf(
		"swept %d due items: %d sent, %d warned, %d escalated, %d conflicts",
		result.Due, result.Sent, result.Warned, result.Escalated, result.Conflicts,
	))
}
