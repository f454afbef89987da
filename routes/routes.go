package routes

import (
	"time"

	"counselbook/handlers"
	"counselbook/middleware"
	"counselbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterStudentRoutes registers the booking flow endpoints.
func RegisterStudentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	sessions := api.Group("/sessions")
	sessions.Use(middleware.RequireRole(models.RoleStudent))
	{
		sessions.POST("", hb.Booking.StartSessionHandler)
		sessions.GET("", hb.Booking.ListSessionsHandler)
		sessions.PUT("/:id/description", hb.Booking.DescriptionHandler)
		sessions.POST("/:id/book", hb.Booking.BookSlotHandler)
		sessions.POST("/:id/order", hb.Booking.CreateOrderHandler)
		sessions.POST("/:id/verify", hb.Booking.VerifyPaymentHandler)
		sessions.POST("/:id/join", hb.Booking.JoinHandler)
	}

	// The booked counselor may read a session; ownership is checked by the service.
	api.GET("/sessions/:id", middleware.RequireRole(models.RoleStudent, models.RoleCounselor), hb.Booking.GetSessionHandler)

	students := api.Group("")
	students.Use(middleware.RequireRole(models.RoleStudent))
	{
		students.GET("/bookings", hb.Booking.ListBookingsHandler)
		students.PUT("/users/fcm-token", hb.Device.RegisterTokenHandler)
	}
}

// RegisterSlotRoutes registers open-slot listing and the change stream.
func RegisterSlotRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	slots := api.Group("/slots")
	{
		slots.GET("", hb.Slots.ListSlotsHandler)
		slots.GET("/watch", hb.Slots.WatchSlotsHandler)
	}
}

// RegisterCounselorRoutes registers counselor endpoints. Availability reads are open to any caller.
func RegisterCounselorRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	counselors := api.Group("/counselors")
	counselors.GET("/:id/availability", hb.Counselor.GetAvailabilityHandler)

	own := counselors.Group("")
	own.Use(middleware.RequireRole(models.RoleCounselor))
	{
		own.PUT("/availability", hb.Counselor.PublishAvailabilityHandler)
		own.PATCH("/profile", hb.Counselor.UpdateProfileHandler)
		own.PUT("/fcm-token", hb.Device.RegisterTokenHandler)
		own.GET("/sessions", hb.Counselor.ListSessionsHandler)
		own.POST("/sessions/:id/complete", hb.Counselor.CompleteSessionHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for operators.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/sessions/abandoned", hb.Admin.AbandonedSessionsHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, verifier middleware.TokenVerifier) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.IdentityMiddleware(verifier))

	RegisterStudentRoutes(api, hb)
	RegisterSlotRoutes(api, hb)
	RegisterCounselorRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
}
