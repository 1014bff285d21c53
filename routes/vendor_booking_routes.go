package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/vendor_booking_controller"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/notifications"
)

func RegisterVendorBookingRoutes(r *gin.Engine, notify *notifications.Dispatcher) {
	vendorController := vendor_booking_controller.NewVendorBookingController(db.DB, notify)

	api := r.Group("/vendor/bookings")
	api.Use(auth.AuthVendor())
	{
		api.GET("", vendorController.ListBookings)
		api.GET("/pending", vendorController.Pending)
		api.GET("/active", vendorController.Active)
		api.GET("/today", vendorController.Today)
		api.GET("/history", vendorController.History)
		api.GET("/:id", vendorController.GetBooking)
		api.PATCH("/:id/accept", vendorController.Accept)
		api.PATCH("/:id/decline", vendorController.Decline)
		api.PATCH("/:id/cancel", vendorController.Cancel)
		api.PATCH("/:id/check-in", vendorController.CheckIn)
		api.PATCH("/:id/complete", vendorController.Complete)
	}
}
