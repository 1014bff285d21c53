package payment_controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayvia/booking/clients"
)

type fakeRazorpay struct {
	verifyResult bool
}

func (f *fakeRazorpay) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return map[string]interface{}{"id": "order_test"}, nil
}

func (f *fakeRazorpay) VerifyPaymentSignature(signature, body string) bool {
	return f.verifyResult
}

// auditPool satisfies Pool for webhook paths that only append to the audit
// log: Exec succeeds, lookups miss, and transactions are unavailable.
type auditPool struct {
	execCount int
}

func (p *auditPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execCount++
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (p *auditPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

type stubRow struct{}

func (stubRow) Scan(dest ...any) error { return pgx.ErrNoRows }

func (p *auditPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return stubRow{}
}

func (p *auditPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("transactions unavailable")
}

func newWebhookRouter(db Pool, checkout clients.CheckoutClientWrapper, razorpay clients.RazorpayClientWrapper) *gin.Engine {
	gin.SetMode(gin.TestMode)
	pc := &PaymentController{DB: db, Checkout: checkout, Razorpay: razorpay}
	r := gin.New()
	r.POST("/payments/webhook/:provider", pc.Webhook)
	return r
}

func TestWebhookRejectsBadCheckoutSignature(t *testing.T) {
	checkout := &clients.CheckoutClient{WebhookSecret: "whsec_test"}
	r := newWebhookRouter(&auditPool{}, checkout, &fakeRazorpay{})

	body := []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"PAY_AB12CD34"}}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/checkout", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", "not-a-real-signature")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SIGNATURE", resp["code"])
}

func TestWebhookRejectsBadRazorpaySignature(t *testing.T) {
	r := newWebhookRouter(&auditPool{}, &clients.CheckoutClient{}, &fakeRazorpay{verifyResult: false})

	body := []byte(`{"event":"payment.captured"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "bogus")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookUnknownProvider(t *testing.T) {
	r := newWebhookRouter(&auditPool{}, &clients.CheckoutClient{}, &fakeRazorpay{})

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookNonSuccessEventAcknowledgedAndRecorded(t *testing.T) {
	// Gateways retry anything that is not a 2xx, so a well-signed event we
	// do not act on must still be acknowledged with received=true, after
	// landing in the audit log.
	checkout := &clients.CheckoutClient{WebhookSecret: "whsec_test"}
	pool := &auditPool{}
	r := newWebhookRouter(pool, checkout, &fakeRazorpay{})

	body := []byte(`{"type":"PAYMENT_FAILED","data":{"order_id":"PAY_AB12CD34"}}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/checkout", bytes.NewReader(body))
	req.Header.Set("x-webhook-signature", clients.SignWebhookPayload("whsec_test", body))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, "ignored", resp["status"])
	assert.Equal(t, 1, pool.execCount)
}

func TestWebhookSuccessWithoutReferenceAcknowledged(t *testing.T) {
	pool := &auditPool{}
	r := newWebhookRouter(pool, &clients.CheckoutClient{}, &fakeRazorpay{verifyResult: true})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"notes":{}}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "sig")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["received"])
	assert.Equal(t, "ignored", resp["status"])
}

func TestCheckoutEventParsing(t *testing.T) {
	raw := []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"PAY_AB12CD34"}}`)
	var event checkoutEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "PAYMENT_SUCCESS", event.Type)
	assert.Equal(t, "PAY_AB12CD34", event.Data.OrderID)

	// explicit reference wins over order_id when both are present
	raw = []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"cf_123","reference":"PAY_AB12CD34"}}`)
	event = checkoutEvent{}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "PAY_AB12CD34", event.Data.Reference)
}

func TestRazorpayEventParsing(t *testing.T) {
	raw := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"notes": {"reference": "PAY_AB12CD34", "booking_id": "b1"}
				}
			}
		}
	}`)
	var event razorpayEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "payment.captured", event.Event)
	assert.Equal(t, "PAY_AB12CD34", event.Payload.Payment.Entity.Notes["reference"])
}
