package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/promo_controller"
	middlewares "github.com/stayvia/booking/middlewares"
	"github.com/stayvia/booking/middlewares/auth"
)

func RegisterPromoRoutes(r *gin.Engine) {
	promoController := promo_controller.NewPromoController(db.DB)

	guest := r.Group("/promo-codes")
	guest.Use(auth.AuthGuest())
	{
		guest.POST("/validate", middlewares.NewRateLimiter("30-1m", "validatePromo"), promoController.ValidatePromo)
	}

	vendor := r.Group("/promo-codes")
	vendor.Use(auth.AuthVendor())
	{
		vendor.POST("", promoController.CreatePromo)
		vendor.DELETE("/:code", promoController.DeactivatePromo)
	}
}
