package promo_models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/pricing"
	"github.com/stayvia/booking/utils"
)

// PromoCode is a named, time-and-usage-bounded discount rule. Codes are
// compared case-insensitively; current_uses only ever increments.
type PromoCode struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	DiscountPercent *float64   `json:"discount_percent,omitempty"`
	DiscountAmount  *float64   `json:"discount_amount,omitempty"`
	MaxUses         *int       `json:"max_uses,omitempty"`
	CurrentUses     int        `json:"current_uses"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewPromoCode(code string, percent, amount *float64, maxUses *int, expiresAt *time.Time) (*PromoCode, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for promo code: %w", err)
	}
	return &PromoCode{
		ID:              id,
		Code:            strings.ToUpper(code),
		DiscountPercent: percent,
		DiscountAmount:  amount,
		MaxUses:         maxUses,
		ExpiresAt:       expiresAt,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}, nil
}

// Discount converts the stored rule into its pricing form.
func (p *PromoCode) Discount() pricing.Discount {
	var d pricing.Discount
	if p.DiscountPercent != nil {
		d.Percent = *p.DiscountPercent
	}
	if p.DiscountAmount != nil {
		d.Amount = *p.DiscountAmount
	}
	return d
}

// Validate checks eligibility without mutating anything. now is injected so
// expiry behavior is testable.
func (p *PromoCode) Validate(now time.Time) error {
	if !p.IsActive {
		return utils.BadRequest(utils.CodeInvalidPromoCode, "Invalid promo code")
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return utils.BadRequest(utils.CodePromoExpired, "Promo code expired")
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return utils.BadRequest(utils.CodePromoExhausted, "Promo code usage limit reached")
	}
	return nil
}

func CreatePromoCode(ctx context.Context, db shared_models.DBTX, promo *PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, code, discount_percent, discount_amount, max_uses, current_uses, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Exec(ctx, query,
		promo.ID, promo.Code, promo.DiscountPercent, promo.DiscountAmount,
		promo.MaxUses, promo.CurrentUses, promo.ExpiresAt, promo.IsActive, promo.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert promo code %s: %v", promo.Code, err)
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func GetPromoByCode(ctx context.Context, db shared_models.DBTX, code string) (*PromoCode, error) {
	promo := &PromoCode{}
	query := `
		SELECT id, code, discount_percent, discount_amount, max_uses, current_uses, expires_at, is_active, created_at
		FROM promo_codes
		WHERE upper(code) = upper($1)`

	err := db.QueryRow(ctx, query, code).Scan(
		&promo.ID, &promo.Code, &promo.DiscountPercent, &promo.DiscountAmount,
		&promo.MaxUses, &promo.CurrentUses, &promo.ExpiresAt, &promo.IsActive, &promo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.BadRequest(utils.CodeInvalidPromoCode, "Invalid promo code")
		}
		logger.ErrorLogger.Errorf("Failed to fetch promo code: %v", err)
		return nil, fmt.Errorf("database error fetching promo code: %w", err)
	}
	return promo, nil
}

// DeactivatePromo retires a code. Validation rejects inactive codes, so this
// stops both previews and new redemptions; existing bookings keep their price.
func DeactivatePromo(ctx context.Context, db shared_models.DBTX, code string) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE promo_codes
		SET is_active = false
		WHERE upper(code) = upper($1) AND is_active`,
		code)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to deactivate promo %s: %v", code, err)
		return fmt.Errorf("failed to deactivate promo code: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return utils.NotFound("Promo code not found or already inactive")
	}
	return nil
}

// RedeemPromo increments current_uses with the usage cap enforced in the
// same statement, so concurrent redemptions near the cap cannot overshoot.
// It must run inside the transaction that creates the booking.
func RedeemPromo(ctx context.Context, tx shared_models.DBTX, promoID uuid.UUID) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE promo_codes
		SET current_uses = current_uses + 1
		WHERE id = $1
		  AND is_active
		  AND (max_uses IS NULL OR current_uses < max_uses)`,
		promoID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to redeem promo %s: %v", promoID, err)
		return fmt.Errorf("failed to redeem promo code: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return utils.BadRequest(utils.CodePromoExhausted, "Promo code usage limit reached")
	}
	return nil
}
