package handlers

import (
	"errors"
	"net/http"

	"counselbook/middleware"
	"counselbook/models"
	"counselbook/services/booking"
	"counselbook/services/counselor"
	"counselbook/services/user"
	"counselbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors to HTTP responses. AlreadyPaid is an idempotent 200.
// Anything unrecognised is a 500 with a generic body; the detail only goes to the log.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, booking.ErrAlreadyPaid) {
		c.JSON(http.StatusOK, gin.H{"alreadyPaid": true})
		return
	}
	var be *booking.BookingError
	if errors.As(err, &be) {
		if be.Code == booking.ErrInvalidSignature.Code {
			utils.GetLogger().Warn("payment integrity check failed",
				zap.String("path", c.FullPath()), zap.Error(err))
		}
		utils.JSONCodedError(c, be.Status, be.Code, be.Message)
		return
	}
	var ce *counselor.CounselorError
	if errors.As(err, &ce) {
		message := ce.Message
		if errors.Is(err, counselor.ErrInvalidWindow) || errors.Is(err, counselor.ErrInvalidProfile) {
			message = err.Error()
		}
		utils.JSONCodedError(c, ce.Status, ce.Code, message)
		return
	}
	if errors.Is(err, user.ErrEmptyToken) {
		utils.JSONCodedError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	if errors.Is(err, user.ErrUnknownRole) {
		utils.JSONCodedError(c, http.StatusForbidden, "forbidden", err.Error())
		return
	}

	utils.GetLogger().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
}

// identity returns the caller or writes a 401.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok || id.UID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthenticated", "")
		return models.Identity{}, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	utils.JSONCodedError(c, http.StatusBadRequest, "invalid_input", err.Error())
}
