package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/user_controller"
	middlewares "github.com/stayvia/booking/middlewares"
	"github.com/stayvia/booking/middlewares/auth"
)

func RegisterUserRoutes(r *gin.Engine) {
	userController := user_controller.NewUserController(db.DB)

	public := r.Group("/auth")
	{
		public.POST("/register", middlewares.NewRateLimiter("5-1m", "authRegister"), userController.Register)
		public.POST("/login", middlewares.NewRateLimiter("10-1m", "authLogin"), userController.Login)
		public.POST("/vendor/login", middlewares.NewRateLimiter("10-1m", "vendorLogin"), userController.VendorLogin)
	}

	guest := r.Group("/notifications")
	guest.Use(auth.AuthGuest())
	{
		guest.POST("/push-token", userController.SavePushToken)
	}

	vendor := r.Group("/vendor")
	vendor.Use(auth.AuthVendor())
	{
		vendor.POST("/push-token", userController.SaveVendorPushToken)
	}
}
