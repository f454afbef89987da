package handlers

import (
	"io"
	"net/http"
	"strings"

	"counselbook/models"
	"counselbook/services/booking"
	"counselbook/services/events"
	"counselbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SlotHandler lists open slots and streams slot changes.
type SlotHandler struct {
	Service booking.BookingService
	Feed    events.SlotFeed
}

func NewSlotHandler(svc booking.BookingService, feed events.SlotFeed) *SlotHandler {
	return &SlotHandler{Service: svc, Feed: feed}
}

// ListSlotsHandler handles GET /api/slots?from=&to=&counselor=a,b
func (h *SlotHandler) ListSlotsHandler(c *gin.Context) {
	q := models.SlotQuery{FromDate: c.Query("from"), ToDate: c.Query("to")}
	for _, d := range []string{q.FromDate, q.ToDate} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			badRequest(c, err)
			return
		}
	}
	for _, raw := range c.QueryArray("counselor") {
		for _, cid := range strings.Split(raw, ",") {
			if cid = strings.TrimSpace(cid); cid != "" {
				q.CounselorIDs = append(q.CounselorIDs, cid)
			}
		}
	}

	groups, err := h.Service.ListOpenSlots(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// WatchSlotsHandler streams slot change events as server-sent events until the client goes away.
func (h *SlotHandler) WatchSlotsHandler(c *gin.Context) {
	if h.Feed == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Slot feed unavailable", "")
		return
	}
	ctx := c.Request.Context()
	ch, err := h.Feed.Subscribe(ctx)
	if err != nil {
		utils.GetLogger().Error("slot feed subscribe failed", zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "Slot feed unavailable", "")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(evt.Type, evt)
			return true
		}
	})
}
