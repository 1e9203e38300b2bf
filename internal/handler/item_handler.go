package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

type ItemHandler struct {
	items domain.ItemRepository
}

func NewItemHandler(items domain.ItemRepository) *ItemHandler {
	return &ItemHandler{items: items}
}

type rescheduleRequest struct {
	DueAt time.Time `json:"due_at" binding:"required"`
}

// HandleDismiss retires an item so it never fires again. Dismissal is
// user-facing, so error messages are localized from Accept-Language.
func (h *ItemHandler) HandleDismiss(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	locale := resolveLocale(c.GetHeader("Accept-Language"))

	if err := h.items.Dismiss(ctx, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrItemNotFound):
			respondError(c, http.StatusNotFound, localize(locale, msgItemNotFound))
		case errors.Is(err, domain.ErrStateConflict):
			respondError(c, http.StatusConflict, localize(locale, msgAlreadyDismissed))
		default:
			slog.ErrorContext(ctx, "dismiss failed",
				slog.String("item_id", id),
				slog.String("error", err.Error()),
			)
			respondError(c, http.StatusInternalServerError, localize(locale, msgStoreUnavailable))
		}
		return
	}

	respondSuccess(c, localize(locale, msgDismissed))
}

// HandleReschedule moves an item's fire time. This is the only way the
// due timestamp changes after tracking starts.
func (h *ItemHandler) HandleReschedule(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "due_at is required and must be RFC3339")
		return
	}

	if err := h.items.Reschedule(ctx, id, req.DueAt.UTC()); err != nil {
		switch {
		case errors.Is(err, domain.ErrItemNotFound):
			respondError(c, http.StatusNotFound, "item not found")
		case errors.Is(err, domain.ErrStateConflict):
			respondError(c, http.StatusConflict, "item is dismissed and cannot be rescheduled")
		default:
			slog.ErrorContext(ctx, "reschedule failed",
				slog.String("item_id", id),
				slog.String("error", err.Error()),
			)
			respondError(c, http.StatusInternalServerError, "store unavailable")
		}
		return
	}

	respondSuccess(c, "item rescheduled")
}

type messageKey int

const (
	msgDismissed messageKey = iota
	msgItemNotFound
	msgAlreadyDismissed
	msgStoreUnavailable
)

var messages = map[string]map[messageKey]string{
	"en": {
		msgDismissed:        "reminder dismissed",
		msgItemNotFound:     "reminder not found",
		msgAlreadyDismissed: "reminder was already dismissed",
		msgStoreUnavailable: "temporarily unable to update the reminder, try again",
	},
	"es": {
		msgDismissed:        "recordatorio descartado",
		msgItemNotFound:     "recordatorio no encontrado",
		msgAlreadyDismissed: "el recordatorio ya fue descartado",
		msgStoreUnavailable: "no se pudo actualizar el recordatorio, intente de nuevo",
	},
}

// resolveLocale picks the first supported language tag. Quality
// weights are ignored; order wins.
func resolveLocale(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if _, ok := messages[base]; ok {
			return base
		}
	}
	return "en"
}

func localize(locale string, key messageKey) string {
	if m, ok := messages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages["en"][key]
}
