package promo_models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayvia/booking/pricing"
	"github.com/stayvia/booking/utils"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestNewPromoCodeUppercasesCode(t *testing.T) {
	promo, err := NewPromoCode("welcome10", floatPtr(10), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", promo.Code)
	assert.True(t, promo.IsActive)
	assert.Zero(t, promo.CurrentUses)
}

func TestValidate(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		promo    PromoCode
		wantCode string
	}{
		{"active unbounded", PromoCode{IsActive: true}, ""},
		{"inactive", PromoCode{IsActive: false}, utils.CodeInvalidPromoCode},
		{"expired", PromoCode{IsActive: true, ExpiresAt: &past}, utils.CodePromoExpired},
		{"not yet expired", PromoCode{IsActive: true, ExpiresAt: &future}, ""},
		{"exhausted", PromoCode{IsActive: true, MaxUses: intPtr(5), CurrentUses: 5}, utils.CodePromoExhausted},
		{"over cap", PromoCode{IsActive: true, MaxUses: intPtr(5), CurrentUses: 7}, utils.CodePromoExhausted},
		{"under cap", PromoCode{IsActive: true, MaxUses: intPtr(5), CurrentUses: 4}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.promo.Validate(now)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *utils.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestDiscountConversion(t *testing.T) {
	percentOnly := PromoCode{DiscountPercent: floatPtr(10)}
	d := percentOnly.Discount()
	assert.Equal(t, 10.0, d.Percent)
	assert.Zero(t, d.Amount)

	// Amount takes precedence downstream in pricing.ApplyDiscount; the
	// conversion itself carries both values through.
	both := PromoCode{DiscountPercent: floatPtr(10), DiscountAmount: floatPtr(50)}
	d = both.Discount()
	assert.Equal(t, 10.0, d.Percent)
	assert.Equal(t, 50.0, d.Amount)
}

// The discount shown at validation time must match what redemption applies:
// both go through pricing.ApplyDiscount on the same room subtotal.
func TestPreviewMatchesRedeemTimeDiscount(t *testing.T) {
	promos := []PromoCode{
		{DiscountPercent: floatPtr(10)},
		{DiscountAmount: floatPtr(250)},
		{DiscountAmount: floatPtr(9999)}, // clamped to subtotal
	}
	fees := pricing.FeePolicy{ServiceFee: 100, DeliveryFee: 1000}

	for _, promo := range promos {
		d := promo.Discount()
		preview := pricing.ApplyDiscount(3000, d)
		quote := pricing.Compute(3, 1000, fees, &d)
		assert.Equal(t, preview, quote.Discount)
	}
}

// promoDB satisfies shared_models.DBTX with a scripted Exec result, standing
// in for the guarded UPDATE: "UPDATE 1" means the guard matched, "UPDATE 0"
// means it did not.
type promoDB struct {
	tag pgconn.CommandTag
	sql []string
}

func (d *promoDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.sql = append(d.sql, sql)
	return d.tag, nil
}

func (d *promoDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type noRow struct{}

func (noRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func (d *promoDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return noRow{}
}

func TestRedeemPromoExhaustedCap(t *testing.T) {
	// The cap check and the increment share one statement; when the guard
	// matches zero rows nothing was incremented and the caller gets the
	// business error, aborting the booking transaction.
	db := &promoDB{tag: pgconn.NewCommandTag("UPDATE 0")}

	err := RedeemPromo(context.Background(), db, uuid.New())
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.CodePromoExhausted, appErr.Code)

	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "current_uses < max_uses")
}

func TestRedeemPromoWithinCap(t *testing.T) {
	db := &promoDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	assert.NoError(t, RedeemPromo(context.Background(), db, uuid.New()))
}

func TestDeactivatePromo(t *testing.T) {
	db := &promoDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	assert.NoError(t, DeactivatePromo(context.Background(), db, "welcome10"))

	missing := &promoDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	err := DeactivatePromo(context.Background(), missing, "GHOST")
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.CodeNotFound, appErr.Code)
}
