package promo_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	redisclient "github.com/stayvia/booking/config/redis"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/promo_models"
	"github.com/stayvia/booking/pricing"
	"github.com/stayvia/booking/utils"
)

const (
	promoPreviewPrefix = "promo_preview:"
	promoPreviewTTL    = 5 * time.Minute
)

type PromoController struct {
	DB *pgxpool.Pool
}

func NewPromoController(db *pgxpool.Pool) *PromoController {
	return &PromoController{DB: db}
}

// promoPreview is the cacheable, non-sensitive slice of a promo code used
// for client-side price previews. Usage counters are deliberately absent so
// the cache cannot serve a stale "still available" answer at redemption
// time; the real cap check happens in the booking transaction.
type promoPreview struct {
	Code            string     `json:"code"`
	DiscountPercent *float64   `json:"discountPercent,omitempty"`
	DiscountAmount  *float64   `json:"discountAmount,omitempty"`
	DiscountValue   *float64   `json:"discountValue,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

type validatePromoRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"omitempty,gt=0"`
}

// ValidatePromo checks a code's eligibility and previews the discount
// against the caller's subtotal. Previews are cached briefly in Redis keyed
// by code and subtotal; the cache holds only valid answers, so a hit short
// circuits the lookup while rejections always re-validate.
func (pc *PromoController) ValidatePromo(c *gin.Context) {
	var req validatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("%s%s:%.2f", promoPreviewPrefix, strings.ToUpper(req.Code), req.Subtotal)

	if rdb, err := redisclient.GetRedisClient(ctx); err == nil {
		if cached, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var preview promoPreview
			if json.Unmarshal([]byte(cached), &preview) == nil {
				if preview.ExpiresAt == nil || preview.ExpiresAt.After(time.Now()) {
					c.JSON(http.StatusOK, gin.H{"valid": true, "promo": preview})
					return
				}
			}
		}
	}

	promo, err := promo_models.GetPromoByCode(ctx, pc.DB, req.Code)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := promo.Validate(time.Now()); err != nil {
		utils.RespondError(c, err)
		return
	}

	preview := promoPreview{
		Code:            promo.Code,
		DiscountPercent: promo.DiscountPercent,
		DiscountAmount:  promo.DiscountAmount,
		ExpiresAt:       promo.ExpiresAt,
	}
	if req.Subtotal > 0 {
		value := pricing.ApplyDiscount(req.Subtotal, promo.Discount())
		preview.DiscountValue = &value
	}

	if rdb, err := redisclient.GetRedisClient(ctx); err == nil {
		if payload, err := json.Marshal(preview); err == nil {
			if err := rdb.Set(ctx, cacheKey, payload, promoPreviewTTL).Err(); err != nil {
				logger.WarnLogger.Warnf("Failed to cache promo preview %s: %v", promo.Code, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "promo": preview})
}

type createPromoRequest struct {
	Code            string     `json:"code" binding:"required,min=3,max=32"`
	DiscountPercent *float64   `json:"discountPercent" binding:"omitempty,gt=0,lte=100"`
	DiscountAmount  *float64   `json:"discountAmount" binding:"omitempty,gt=0"`
	MaxUses         *int       `json:"maxUses" binding:"omitempty,gt=0"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// CreatePromo registers a new promo code. At least one discount dimension
// is required.
func (pc *PromoController) CreatePromo(c *gin.Context) {
	var req createPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DiscountPercent == nil && req.DiscountAmount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either discountPercent or discountAmount is required"})
		return
	}

	promo, err := promo_models.NewPromoCode(req.Code, req.DiscountPercent, req.DiscountAmount, req.MaxUses, req.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo code"})
		return
	}
	if err := promo_models.CreatePromoCode(c.Request.Context(), pc.DB, promo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo code"})
		return
	}

	logger.InfoLogger.Infof("Promo code %s created", promo.Code)
	c.JSON(http.StatusCreated, gin.H{"promo": promo})
}

// DeactivatePromo retires a code and drops its cached previews, so validate
// stops answering "valid" the moment the code is turned off rather than when
// the cache entry expires.
func (pc *PromoController) DeactivatePromo(c *gin.Context) {
	code := c.Param("code")
	ctx := c.Request.Context()

	if err := promo_models.DeactivatePromo(ctx, pc.DB, code); err != nil {
		utils.RespondError(c, err)
		return
	}
	pc.invalidatePreviews(ctx, code)

	logger.InfoLogger.Infof("Promo code %s deactivated", strings.ToUpper(code))
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// invalidatePreviews deletes every cached preview for the code, one key per
// subtotal. Best effort: a miss just means previews age out on their TTL.
func (pc *PromoController) invalidatePreviews(ctx context.Context, code string) {
	rdb, err := redisclient.GetRedisClient(ctx)
	if err != nil {
		return
	}
	pattern := promoPreviewPrefix + strings.ToUpper(code) + ":*"
	iter := rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logger.WarnLogger.Warnf("Failed to drop cached promo preview %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to scan promo previews for %s: %v", code, err)
	}
}
