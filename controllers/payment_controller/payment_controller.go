package payment_controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stayvia/booking/clients"
	"github.com/stayvia/booking/logger"
	"github.com/stayvia/booking/middlewares/auth"
	"github.com/stayvia/booking/models/booking_models"
	"github.com/stayvia/booking/models/payment_models"
	"github.com/stayvia/booking/models/property_models"
	"github.com/stayvia/booking/models/shared_models"
	"github.com/stayvia/booking/models/wallet_models"
	"github.com/stayvia/booking/notifications"
	"github.com/stayvia/booking/utils"
)

// pendingStaleAfter is how long a gateway payment may sit PENDING before the
// verify endpoint flags it as stale for the client to retry.
const pendingStaleAfter = 30 * time.Minute

// Pool is the pgxpool surface the controller needs: plain statements plus
// transactions for wallet settlement and webhook reconciliation.
type Pool interface {
	shared_models.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PaymentController settles bookings. Wallet payments settle synchronously
// inside one transaction; gateway payments open a PENDING row that webhook
// reconciliation later closes.
type PaymentController struct {
	DB       Pool
	Checkout clients.CheckoutClientWrapper
	Razorpay clients.RazorpayClientWrapper
	Notify   *notifications.Dispatcher
}

func NewPaymentController(db *pgxpool.Pool, checkout clients.CheckoutClientWrapper, razorpay clients.RazorpayClientWrapper, notify *notifications.Dispatcher) *PaymentController {
	return &PaymentController{DB: db, Checkout: checkout, Razorpay: razorpay, Notify: notify}
}

type initiatePaymentRequest struct {
	BookingID string `json:"bookingId" binding:"required,uuid"`
	Method    string `json:"method" binding:"required,oneof=WALLET CHECKOUT RAZORPAY"`
}

// InitiatePayment starts settlement for one of the caller's bookings.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	userID, _ := auth.SubjectID(c)

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bookingID := uuid.MustParse(req.BookingID)
	ctx := c.Request.Context()

	booking, err := booking_models.GetUserBooking(ctx, pc.DB, userID, bookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !shared_models.CanTransition(shared_models.ActionPay, booking.Status) {
		utils.RespondError(c, utils.BadRequest(utils.CodeBookingNotPayable,
			"Booking in status "+booking.Status+" cannot be paid"))
		return
	}

	// Gateway methods route money to the host, so the host must have
	// completed payout onboarding first. Wallet payments settle internally
	// and carry no such requirement.
	if req.Method != shared_models.PaymentMethodWallet {
		property, err := property_models.GetPropertyByID(ctx, pc.DB, booking.PropertyID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		vendor, err := property_models.GetVendorByID(ctx, pc.DB, property.VendorID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if !vendor.PayoutOnboarded {
			utils.RespondError(c, utils.BadRequest(utils.CodeVendorNotOnboarded,
				"Host has not completed payout onboarding"))
			return
		}
	}

	switch req.Method {
	case shared_models.PaymentMethodWallet:
		pc.payWithWallet(c, booking)
	case shared_models.PaymentMethodCheckout:
		pc.payWithCheckout(c, booking)
	case shared_models.PaymentMethodRazorpay:
		pc.payWithRazorpay(c, booking)
	}
}

// payWithWallet debits the wallet, records the payment and moves the booking
// to PAID in a single transaction. A failed debit leaves no trace. A fully
// discounted booking has nothing to debit; it still gets a payment row and
// a ledger-free settlement.
func (pc *PaymentController) payWithWallet(c *gin.Context, booking *booking_models.Booking) {
	ctx := c.Request.Context()
	reference := utils.GeneratePaymentReference()

	tx, err := pc.DB.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to begin wallet payment transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}
	defer tx.Rollback(ctx)

	var wallet *wallet_models.Wallet
	if booking.Total > 0 {
		wallet, err = wallet_models.DebitTx(ctx, tx, booking.UserID, booking.Total,
			"Booking payment", reference)
	} else {
		wallet, err = wallet_models.GetOrCreateWallet(ctx, tx, booking.UserID)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	payment, err := payment_models.NewPayment(booking.ID, shared_models.PaymentMethodWallet,
		reference, booking.Total, shared_models.PaymentStatusSuccess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}
	if err := payment_models.CreatePayment(ctx, tx, payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}

	updated, err := booking_models.Transition(ctx, tx, booking.ID, shared_models.ActionPay)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit wallet payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}

	logger.InfoLogger.Infof("Wallet payment %s settled booking %s", reference, booking.ID)
	pc.notifyPaid(c, updated, reference)

	c.JSON(http.StatusOK, gin.H{
		"payment":       payment,
		"booking":       updated,
		"walletBalance": wallet.Balance,
	})
}

// payWithCheckout opens a PENDING payment and hands the caller a hosted
// payment page. Settlement arrives later through the webhook.
func (pc *PaymentController) payWithCheckout(c *gin.Context, booking *booking_models.Booking) {
	ctx := c.Request.Context()
	reference := utils.GeneratePaymentReference()

	payment, err := payment_models.NewPayment(booking.ID, shared_models.PaymentMethodCheckout,
		reference, booking.Total, shared_models.PaymentStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}
	if err := payment_models.CreatePayment(ctx, pc.DB, payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}

	session, err := pc.Checkout.CreateSession(ctx, clients.CheckoutSessionRequest{
		OrderID:       reference,
		OrderAmount:   booking.Total,
		CustomerName:  booking.GuestName,
		CustomerEmail: booking.GuestEmail,
		CustomerPhone: booking.GuestPhone,
		Metadata:      map[string]string{"reference": reference, "booking_id": booking.ID.String()},
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create checkout session for %s: %v", reference, err)
		if markErr := payment_models.MarkFailed(ctx, pc.DB, payment.ID); markErr != nil {
			logger.ErrorLogger.Errorf("Failed to mark payment %s failed: %v", reference, markErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference":  reference,
		"paymentUrl": session.PaymentURL,
		"sessionId":  session.SessionID,
		"amount":     booking.Total,
	})
}

// payWithRazorpay creates a Razorpay order carrying our reference in its
// notes so the captured-payment webhook can be matched back.
func (pc *PaymentController) payWithRazorpay(c *gin.Context, booking *booking_models.Booking) {
	ctx := c.Request.Context()
	reference := utils.GeneratePaymentReference()

	payment, err := payment_models.NewPayment(booking.ID, shared_models.PaymentMethodRazorpay,
		reference, booking.Total, shared_models.PaymentStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}
	if err := payment_models.CreatePayment(ctx, pc.DB, payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
		return
	}

	order, err := pc.Razorpay.CreateOrder(map[string]interface{}{
		"amount":   int64(booking.Total * 100), // smallest currency unit
		"currency": "INR",
		"receipt":  reference,
		"notes":    map[string]interface{}{"reference": reference, "booking_id": booking.ID.String()},
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create razorpay order for %s: %v", reference, err)
		if markErr := payment_models.MarkFailed(ctx, pc.DB, payment.ID); markErr != nil {
			logger.ErrorLogger.Errorf("Failed to mark payment %s failed: %v", reference, markErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference": reference,
		"order":     order,
		"amount":    booking.Total,
	})
}

// VerifyPayment reports the current status of a payment by reference.
// Long-pending gateway payments are flagged stale so clients can offer a
// retry instead of polling forever.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	userID, _ := auth.SubjectID(c)
	reference := c.Param("reference")
	ctx := c.Request.Context()

	payment, err := payment_models.GetPaymentByReference(ctx, pc.DB, reference)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	booking, err := booking_models.GetUserBooking(ctx, pc.DB, userID, payment.BookingID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	stale := payment.Status == shared_models.PaymentStatusPending &&
		time.Since(payment.CreatedAt) > pendingStaleAfter

	c.JSON(http.StatusOK, gin.H{
		"payment":       payment,
		"bookingStatus": booking.Status,
		"stale":         stale,
	})
}

// checkoutEvent is the gateway's webhook envelope.
type checkoutEvent struct {
	Type string `json:"type"`
	Data struct {
		OrderID   string `json:"order_id"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// razorpayEvent is the subset of Razorpay's webhook payload we consume.
type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				Notes map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook receives gateway events. Signature verification happens against
// the raw body before any parsing; unknown event types acknowledge with 200
// so the gateway stops redelivering them.
func (pc *PaymentController) Webhook(c *gin.Context) {
	provider := c.Param("provider")
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	ctx := c.Request.Context()

	var reference, eventType string
	switch provider {
	case "checkout":
		signature := c.GetHeader("x-webhook-signature")
		if !pc.Checkout.VerifyWebhookSignature(signature, rawBody) {
			logger.WarnLogger.Warn("Rejected checkout webhook with bad signature")
			c.JSON(http.StatusUnauthorized, gin.H{"code": utils.CodeInvalidSignature, "error": "Invalid webhook signature"})
			return
		}
		var event checkoutEvent
		if err := json.Unmarshal(rawBody, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
			return
		}
		eventType = event.Type
		reference = event.Data.Reference
		if reference == "" {
			reference = event.Data.OrderID
		}
		if eventType != "PAYMENT_SUCCESS" {
			pc.recordEvent(ctx, provider, eventType, rawBody)
			c.JSON(http.StatusOK, gin.H{"received": true, "status": "ignored"})
			return
		}

	case "razorpay":
		signature := c.GetHeader("X-Razorpay-Signature")
		if !pc.Razorpay.VerifyPaymentSignature(signature, string(rawBody)) {
			logger.WarnLogger.Warn("Rejected razorpay webhook with bad signature")
			c.JSON(http.StatusUnauthorized, gin.H{"code": utils.CodeInvalidSignature, "error": "Invalid webhook signature"})
			return
		}
		var event razorpayEvent
		if err := json.Unmarshal(rawBody, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
			return
		}
		eventType = event.Event
		reference = event.Payload.Payment.Entity.Notes["reference"]
		if eventType != "payment.captured" {
			pc.recordEvent(ctx, provider, eventType, rawBody)
			c.JSON(http.StatusOK, gin.H{"received": true, "status": "ignored"})
			return
		}

	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment provider"})
		return
	}

	pc.recordEvent(ctx, provider, eventType, rawBody)

	if reference == "" {
		logger.WarnLogger.Warnf("%s success event without reference", provider)
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "ignored"})
		return
	}

	pc.reconcile(c, reference, rawBody)
}

func (pc *PaymentController) recordEvent(ctx context.Context, provider, eventType string, rawBody []byte) {
	if err := payment_models.RecordWebhookEvent(ctx, pc.DB, provider, eventType, rawBody); err != nil {
		logger.WarnLogger.Warnf("Failed to record %s webhook event: %v", provider, err)
	}
}

// reconcile settles the payment a success event refers to. The PENDING
// guard in MarkSuccess makes redelivered events no-ops: the first delivery
// flips the payment and the booking, later ones see zero rows and return
// without touching anything.
func (pc *PaymentController) reconcile(c *gin.Context, reference string, rawEvent []byte) {
	ctx := c.Request.Context()

	tx, err := pc.DB.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to begin reconcile transaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}
	defer tx.Rollback(ctx)

	payment, err := payment_models.GetPaymentByReference(ctx, tx, reference)
	if err != nil {
		logger.WarnLogger.Warnf("Webhook references unknown payment %s", reference)
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "ignored"})
		return
	}

	applied, err := payment_models.MarkSuccess(ctx, tx, payment.ID, rawEvent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}
	if !applied {
		logger.InfoLogger.Infof("Payment %s already settled, ignoring redelivery", reference)
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "already_processed"})
		return
	}

	booking, err := booking_models.Transition(ctx, tx, payment.BookingID, shared_models.ActionPay)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("Failed to commit reconcile for %s: %v", reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}

	logger.InfoLogger.Infof("Payment %s reconciled, booking %s is PAID", reference, booking.ID)
	pc.notifyPaid(c, booking, reference)
	c.JSON(http.StatusOK, gin.H{"received": true, "status": "processed"})
}

func (pc *PaymentController) notifyPaid(c *gin.Context, booking *booking_models.Booking, reference string) {
	room, property, err := property_models.GetRoomWithProperty(c.Request.Context(), pc.DB, booking.RoomID)
	if err != nil {
		return
	}
	pc.Notify.PaymentSucceeded(booking, room, property, reference)
}
