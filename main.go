package main

import (
	"context"
	"embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/badwords"
	"github.com/stayvia/booking/clients"
	"github.com/stayvia/booking/config"
	"github.com/stayvia/booking/config/db"
	redisclient "github.com/stayvia/booking/config/redis"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/cors"
	"github.com/stayvia/booking/notifications"
	"github.com/stayvia/booking/routes"
	"github.com/stayvia/booking/utils/mail"
)

//go:embed templates/email/*
var embeddedEmailTemplates embed.FS

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redisclient.CloseRedis()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mail.InitTemplates(embeddedEmailTemplates)
	logger.InfoLogger.Info("Email templates initialized.")

	if err := badwords.Load("badwords/en.txt"); err != nil {
		logger.WarnLogger.Warnf("Blocked words list not loaded: %v", err)
	}

	notify := notifications.NewDispatcher(db.DB, clients.NewExpoPushClient(), notifications.SMTPMailer{})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterUserRoutes(r)
	routes.RegisterBookingRoutes(r, notify)
	routes.RegisterVendorBookingRoutes(r, notify)
	routes.RegisterPaymentRoutes(r, notify)
	routes.RegisterPromoRoutes(r)
	routes.RegisterWalletRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from booking service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server exited.")
}
