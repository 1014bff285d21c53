package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config/db"
	"github.com/stayvia/booking/controllers/wallet_controller"
	middlewares "github.com/stayvia/booking/middlewares"
	"github.com/stayvia/booking/middlewares/auth"
)

func RegisterWalletRoutes(r *gin.Engine) {
	walletController := wallet_controller.NewWalletController(db.DB)

	api := r.Group("/wallet")
	api.Use(auth.AuthGuest())
	{
		api.GET("", walletController.GetWallet)
		api.POST("/fund", middlewares.NewRateLimiter("10-1m", "fundWallet"), walletController.FundWallet)
		api.GET("/transactions", walletController.ListTransactions)
	}
}
