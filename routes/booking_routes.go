package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/booking_controller"
	middlewares "github.com/stayvia/booking/middlewares"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/notifications"
)

func RegisterBookingRoutes(r *gin.Engine, notify *notifications.Dispatcher) {
	bookingController := booking_controller.NewBookingController(db.DB, notify)

	api := r.Group("/bookings")
	api.Use(auth.AuthGuest())
	{
		api.POST("", middlewares.NewRateLimiter("20-1m", "createBooking"), bookingController.CreateBooking)
		api.POST("/quote", bookingController.Quote)
		api.GET("", bookingController.ListBookings)
		api.GET("/active", bookingController.Active)
		api.GET("/history", bookingController.History)
		api.GET("/:id", bookingController.GetBooking)
		api.PATCH("/:id/cancel", bookingController.CancelBooking)
		api.POST("/:id/rebook", bookingController.Rebook)
	}
}
