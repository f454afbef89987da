package handlers

import (
	"net/http"

	"counselbook/models"
	"counselbook/services/booking"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the student booking flow.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// StartSessionHandler creates a session from the selected emotions.
func (h *BookingHandler) StartSessionHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Service.StartSession(c.Request.Context(), id, req.Emotions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *BookingHandler) ListSessionsHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sessions, err := h.Service.ListStudentSessions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *BookingHandler) GetSessionHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sess, err := h.Service.GetSession(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *BookingHandler) DescriptionHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Service.AddDescription(c.Request.Context(), id, c.Param("id"), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// BookSlotHandler reserves a slot for the session.
func (h *BookingHandler) BookSlotHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Service.Book(c.Request.Context(), id, c.Param("id"), req.SlotID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *BookingHandler) CreateOrderHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	order, err := h.Service.CreateOrder(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// VerifyPaymentHandler confirms a gateway payment. Repeating it for a paid session returns the paid session.
func (h *BookingHandler) VerifyPaymentHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Service.VerifyPayment(c.Request.Context(), id, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": sess.Status, "session": sess})
}

func (h *BookingHandler) JoinHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	resp, err := h.Service.Join(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListBookingsHandler serves the student dashboard.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Service.ListStudentBookings(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
