package middlewares

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	redisclient "github.com/stayvia/booking/config/redis"
	"github.com/stayvia/booking/logger"
)

// limiterKey prefers the authenticated subject so one user cannot exhaust
// another's budget; unauthenticated requests fall back to the client IP.
func limiterKey(c *gin.Context) string {
	if raw, exists := c.Get("subject_id"); exists {
		return fmt.Sprintf("%v", raw)
	}
	return c.ClientIP()
}

func newRedisStore(routeID string, period time.Duration) (limiter.Store, error) {
	rdb, err := redisclient.GetRedisClient(context.Background())
	if err != nil {
		return nil, err
	}
	return redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	})
}

// ParseRate accepts compact rate strings like "10-2m", "5-1h" or "20-10s".
func ParseRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	if len(durationStr) < 2 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}
	unit := durationStr[len(durationStr)-1:]
	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	var period time.Duration
	switch unit {
	case "s":
		period = time.Duration(n) * time.Second
	case "m":
		period = time.Duration(n) * time.Minute
	case "h":
		period = time.Duration(n) * time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{Period: period, Limit: int64(limit)}, nil
}

// NewRateLimiter builds a per-subject Redis-backed rate limit for a route.
// On configuration errors it degrades to a pass-through so a bad rate string
// cannot take a route down.
func NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	rate, err := ParseRate(rateStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid rate %q for route %s: %v", rateStr, routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := newRedisStore(routeID, rate.Period)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create redis store for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	instance := limiter.New(store, rate)
	return ginmiddleware.NewMiddleware(instance, ginmiddleware.WithKeyGetter(limiterKey))
}
