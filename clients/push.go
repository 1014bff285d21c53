package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stayvia/booking/config"
)

// PushSender delivers a push notification to a single device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// PushMessage is the Expo push API request shape.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// ExpoPushClient implements PushSender against the Expo push service.
type ExpoPushClient struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewExpoPushClient() *ExpoPushClient {
	return &ExpoPushClient{
		Endpoint:   config.GetEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *ExpoPushClient) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := PushMessage{To: token, Title: title, Body: body, Data: data, Sound: "default"}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
