package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/clients"
	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/payment_controller"
	middlewares "github.com/stayvia/booking/middlewares"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/notifications"
)

func RegisterPaymentRoutes(r *gin.Engine, notify *notifications.Dispatcher) {
	paymentController := payment_controller.NewPaymentController(
		db.DB,
		clients.NewCheckoutClient(),
		clients.NewRazorpayClient(),
		notify,
	)

	api := r.Group("/payments")
	api.Use(auth.AuthGuest())
	{
		api.POST("/initiate", middlewares.NewRateLimiter("10-1m", "initiatePayment"), paymentController.InitiatePayment)
		api.POST("/verify/:reference", paymentController.VerifyPayment)
		api.GET("/:reference", paymentController.VerifyPayment)
	}

	// Webhooks authenticate by signature, not bearer token.
	r.POST("/payments/webhook/:provider", paymentController.Webhook)
}
