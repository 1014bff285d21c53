package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSignatureRoundTrip(t *testing.T) {
	client := &CheckoutClient{WebhookSecret: "whsec_test"}
	body := []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"PAY_AB12CD34"}}`)

	sig := SignWebhookPayload("whsec_test", body)
	assert.True(t, client.VerifyWebhookSignature(sig, body))
}

func TestWebhookSignatureRejectsTampering(t *testing.T) {
	client := &CheckoutClient{WebhookSecret: "whsec_test"}
	body := []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"PAY_AB12CD34"}}`)
	sig := SignWebhookPayload("whsec_test", body)

	tampered := []byte(`{"type":"PAYMENT_SUCCESS","data":{"order_id":"PAY_FFFFFFFF"}}`)
	assert.False(t, client.VerifyWebhookSignature(sig, tampered))

	wrongSecret := SignWebhookPayload("whsec_other", body)
	assert.False(t, client.VerifyWebhookSignature(wrongSecret, body))
}

func TestWebhookSignatureRejectsEmptyInputs(t *testing.T) {
	client := &CheckoutClient{WebhookSecret: "whsec_test"}
	assert.False(t, client.VerifyWebhookSignature("", []byte("body")))
	assert.False(t, client.VerifyWebhookSignature("sig", nil))

	noSecret := &CheckoutClient{}
	assert.False(t, noSecret.VerifyWebhookSignature("sig", []byte("body")))
}

func TestCreateSession(t *testing.T) {
	var gotReq CheckoutSessionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "app_test", r.Header.Get("x-client-id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(CheckoutSessionResponse{
			SessionID:   "sess_123",
			OrderID:     gotReq.OrderID,
			OrderStatus: "ACTIVE",
			PaymentURL:  "https://pay.example.com/sess_123",
			OrderAmount: gotReq.OrderAmount,
		})
	}))
	defer server.Close()

	client := &CheckoutClient{
		AppID:      "app_test",
		SecretKey:  "secret",
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	session, err := client.CreateSession(context.Background(), CheckoutSessionRequest{
		OrderID:       "PAY_AB12CD34",
		OrderAmount:   1270,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Metadata:      map[string]string{"reference": "PAY_AB12CD34"},
	})
	require.NoError(t, err)

	assert.Equal(t, "sess_123", session.SessionID)
	assert.Equal(t, "https://pay.example.com/sess_123", session.PaymentURL)
	assert.Equal(t, "PAY_AB12CD34", gotReq.OrderID)
	assert.Equal(t, "PAY_AB12CD34", gotReq.Metadata["reference"])
	assert.Equal(t, "INR", gotReq.OrderCurrency)
}

func TestCreateSessionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "order_amount invalid"})
	}))
	defer server.Close()

	client := &CheckoutClient{
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}

	_, err := client.CreateSession(context.Background(), CheckoutSessionRequest{OrderID: "PAY_00000000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkout API error")
}
