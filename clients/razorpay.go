package clients

import (
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/stayvia/booking/config"
)

// RazorpayClientWrapper provides an interface for Razorpay operations.
// This interface allows for easier testing by mocking Razorpay interactions.
type RazorpayClientWrapper interface {
	CreateOrder(data map[string]interface{}) (map[string]interface{}, error)
	VerifyPaymentSignature(signature, body string) bool
}

// RazorpayClient implements RazorpayClientWrapper using the actual Razorpay SDK.
type RazorpayClient struct {
	Client        *razorpay.Client
	WebhookSecret string
}

// NewRazorpayClient initializes the SDK client from environment configuration.
func NewRazorpayClient() *RazorpayClient {
	return &RazorpayClient{
		Client:        razorpay.NewClient(config.GetEnv("RAZORPAY_KEY_ID", ""), config.GetEnv("RAZORPAY_KEY_SECRET", "")),
		WebhookSecret: config.GetEnv("RAZORPAY_WEBHOOK_SECRET", ""),
	}
}

// CreateOrder creates a new order in Razorpay. The receipt field carries our
// payment reference so webhook events can be matched back.
func (r *RazorpayClient) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	return r.Client.Order.Create(data, nil)
}

// VerifyPaymentSignature verifies a Razorpay webhook signature against the
// raw request body using the SDK helper.
func (r *RazorpayClient) VerifyPaymentSignature(signature, body string) bool {
	return utils.VerifyWebhookSignature(body, signature, r.WebhookSecret)
}
