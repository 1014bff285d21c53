package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stayvia/booking/config"
)

// CheckoutClientWrapper provides an interface for hosted checkout operations.
// This interface allows for easier testing by mocking gateway interactions.
type CheckoutClientWrapper interface {
	CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSessionResponse, error)
	VerifyWebhookSignature(signature string, rawBody []byte) bool
}

// CheckoutSessionRequest is the order we hand to the gateway. Reference goes
// into metadata so the webhook can be matched back to our payment row.
type CheckoutSessionRequest struct {
	OrderID       string            `json:"order_id"`
	OrderAmount   float64           `json:"order_amount"`
	OrderCurrency string            `json:"order_currency"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	ReturnURL     string            `json:"return_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CheckoutSessionResponse carries the hosted payment page the client is
// redirected to.
type CheckoutSessionResponse struct {
	SessionID   string  `json:"session_id"`
	OrderID     string  `json:"order_id"`
	OrderStatus string  `json:"order_status"`
	PaymentURL  string  `json:"payment_url"`
	OrderAmount float64 `json:"order_amount"`
	ExpiresAt   string  `json:"order_expiry_time,omitempty"`
}

// CheckoutClient implements CheckoutClientWrapper against the gateway's PG API.
type CheckoutClient struct {
	AppID         string
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	HTTPClient    *http.Client
}

// NewCheckoutClient builds a client from environment configuration.
// CHECKOUT_ENV selects the sandbox or production endpoint.
func NewCheckoutClient() *CheckoutClient {
	baseURL := "https://sandbox.checkout-gateway.com/pg"
	if config.GetEnv("CHECKOUT_ENV", "sandbox") == "production" {
		baseURL = "https://api.checkout-gateway.com/pg"
	}

	return &CheckoutClient{
		AppID:         config.GetEnv("CHECKOUT_APP_ID", ""),
		SecretKey:     config.GetEnv("CHECKOUT_SECRET_KEY", ""),
		WebhookSecret: config.GetEnv("CHECKOUT_WEBHOOK_SECRET", ""),
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateSession creates a hosted checkout session for the order.
func (c *CheckoutClient) CreateSession(ctx context.Context, sessionReq CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if sessionReq.OrderCurrency == "" {
		sessionReq.OrderCurrency = config.GetEnv("CHECKOUT_CURRENCY", "INR")
	}

	jsonData, err := json.Marshal(sessionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	url := fmt.Sprintf("%s/orders", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", "2023-08-01")
	req.Header.Set("x-client-id", c.AppID)
	req.Header.Set("x-client-secret", c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("checkout API error: %d - %v", resp.StatusCode, apiErr)
	}

	var session CheckoutSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	return &session, nil
}

// VerifyWebhookSignature checks the gateway's HMAC-SHA256 signature over the
// raw body. The comparison is constant-time.
func (c *CheckoutClient) VerifyWebhookSignature(signature string, rawBody []byte) bool {
	if signature == "" || len(rawBody) == 0 || c.WebhookSecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SignWebhookPayload produces the signature the gateway would send for a
// payload. Used by sandbox tooling and tests.
func SignWebhookPayload(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
