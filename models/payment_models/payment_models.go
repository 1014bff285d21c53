package payment_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/utils"
)

// Payment is one attempt to settle a booking's total. Gateway payments start
// PENDING and move to SUCCESS exactly once, driven by webhook reconciliation;
// wallet payments are created SUCCESS because settlement is synchronous.
type Payment struct {
	ID              uuid.UUID `json:"id"`
	BookingID       uuid.UUID `json:"booking_id"`
	Method          string    `json:"method"`
	Reference       string    `json:"reference"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	GatewayResponse []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewPayment(bookingID uuid.UUID, method, reference string, amount float64, status string) (*Payment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for payment: %w", err)
	}
	now := time.Now()
	return &Payment{
		ID:        id,
		BookingID: bookingID,
		Method:    method,
		Reference: reference,
		Amount:    amount,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func CreatePayment(ctx context.Context, db shared_models.DBTX, payment *Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, method, reference, amount, status, gateway_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Exec(ctx, query,
		payment.ID, payment.BookingID, payment.Method, payment.Reference,
		payment.Amount, payment.Status, payment.GatewayResponse, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert payment %s: %v", payment.Reference, err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func GetPaymentByReference(ctx context.Context, db shared_models.DBTX, reference string) (*Payment, error) {
	payment := &Payment{}
	query := `
		SELECT id, booking_id, method, reference, amount, status, gateway_response, created_at, updated_at
		FROM payments
		WHERE reference = $1`

	err := db.QueryRow(ctx, query, reference).Scan(
		&payment.ID, &payment.BookingID, &payment.Method, &payment.Reference,
		&payment.Amount, &payment.Status, &payment.GatewayResponse, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NotFound("Payment not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch payment %s: %v", reference, err)
		return nil, fmt.Errorf("database error fetching payment: %w", err)
	}
	return payment, nil
}

// MarkSuccess transitions a payment PENDING -> SUCCESS and stores the raw
// gateway event as the audit payload. The status guard in the WHERE clause
// is what makes webhook redelivery idempotent: a second delivery matches
// zero rows and the caller treats that as a no-op.
func MarkSuccess(ctx context.Context, tx shared_models.DBTX, paymentID uuid.UUID, rawEvent []byte) (bool, error) {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $2, gateway_response = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		paymentID, shared_models.PaymentStatusSuccess, rawEvent, shared_models.PaymentStatusPending)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark payment %s successful: %v", paymentID, err)
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// MarkFailed records a payment that could not be handed to the gateway.
// Like MarkSuccess it only moves PENDING rows, so a late success webhook and
// a failure mark cannot both win.
func MarkFailed(ctx context.Context, db shared_models.DBTX, paymentID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		UPDATE payments
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		paymentID, shared_models.PaymentStatusFailed, shared_models.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// RecordWebhookEvent appends the raw event to the audit log. Failures are
// the caller's to tolerate; the log exists for replay and debugging.
func RecordWebhookEvent(ctx context.Context, db shared_models.DBTX, provider, eventType string, payload []byte) error {
	_, err := db.Exec(ctx, `
		INSERT INTO webhook_events (provider, event_type, raw_payload, created_at)
		VALUES ($1, $2, $3, now())`,
		provider, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}
