package handlers

import (
	"counselbook/services/booking"
	"counselbook/services/counselor"
	"counselbook/services/events"
	"counselbook/services/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Booking   *BookingHandler
	Slots     *SlotHandler
	Counselor *CounselorHandler
	Device    *DeviceHandler
	Admin     *AdminHandler

	Health gin.HandlerFunc
}

// NewHandlerBundle wires handlers to their services.
func NewHandlerBundle(
	bookingSvc booking.BookingService,
	counselorSvc counselor.CounselorService,
	deviceSvc user.DeviceService,
	feed events.SlotFeed,
) *HandlerBundle {
	return &HandlerBundle{
		Booking:   NewBookingHandler(bookingSvc),
		Slots:     NewSlotHandler(bookingSvc, feed),
		Counselor: NewCounselorHandler(counselorSvc, bookingSvc),
		Device:    NewDeviceHandler(deviceSvc),
		Admin:     NewAdminHandler(bookingSvc),
		Health:    HealthHandler,
	}
}
