package handlers

import (
	"net/http"

	"counselbook/models"
	"counselbook/services/user"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	Service user.DeviceService
}

func NewDeviceHandler(svc user.DeviceService) *DeviceHandler {
	return &DeviceHandler{Service: svc}
}

// RegisterTokenHandler stores the caller's FCM token. Students and counselors share it.
func (h *DeviceHandler) RegisterTokenHandler(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req models.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.RegisterDeviceToken(c.Request.Context(), id, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
}
