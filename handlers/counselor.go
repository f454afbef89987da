package handlers

import (
	"net/http"
	"time"

	"counselbook/models"
	"counselbook/services/booking"
	"counselbook/services/counselor"
	"counselbook/utils"

	"github.com/gin-gonic/gin"
)

// CounselorHandler serves counselor availability, profile and session endpoints.
type CounselorHandler struct {
	Service  counselor.CounselorService
	Sessions booking.BookingService
}

func NewCounselorHandler(svc counselor.CounselorService, sessions booking.BookingService) *CounselorHandler {
	return &CounselorHandler{Service: svc, Sessions: sessions}
}

// PublishAvailabilityHandler replaces the caller's times for one date.
func (h *CounselorHandler) PublishAvailabilityHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.PublishAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.Publish(c.Request.Context(), id, req.Date, req.Times)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CounselorHandler) GetAvailabilityHandler(c *gin.Context) {
	windows, err := h.Service.GetAvailability(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": windows})
}

func (h *CounselorHandler) UpdateProfileHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.CounselorProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.Service.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListSessionsHandler lists the caller's paid sessions; from/to are optional YYYY-MM-DD bounds (to exclusive).
func (h *CounselorHandler) ListSessionsHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		to = d
	}
	sessions, err := h.Sessions.ListCounselorSessions(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *CounselorHandler) CompleteSessionHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.Complete(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
