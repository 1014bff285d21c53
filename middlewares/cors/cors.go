package cors

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stayvia/booking/config"
)

// CorsMiddleware builds the CORS policy from ALLOWED_ORIGINS, a
// comma-separated list. Unset means local development defaults.
func CorsMiddleware() gin.HandlerFunc {
	origins := config.GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")

	return cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
