package handlers

import (
	"net/http"
	"time"

	"counselbook/services/booking"

	"github.com/gin-gonic/gin"
)

// AdminHandler encapsulates operator-level views.
type AdminHandler struct {
	Service booking.BookingService
}

func NewAdminHandler(svc booking.BookingService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// AbandonedSessionsHandler lists unpaid sessions older than ?olderThan (Go duration, default 24h).
func (h *AdminHandler) AbandonedSessionsHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	olderThan := 24 * time.Hour
	if raw := c.Query("olderThan"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		olderThan = d
	}
	sessions, err := h.Service.ListAbandoned(c.Request.Context(), id, olderThan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}
