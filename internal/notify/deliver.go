package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrDeliveryFailed is returned when the webhook POST does not succeed.
// Delivery is at most once; the caller decides whether a later cycle retries.
var ErrDeliveryFailed = errors.New("webhook delivery failed")

// WebhookSender posts composed messages to per-game webhook URLs
type WebhookSender struct {
	httpClient *http.Client
}

// NewWebhookSender creates a webhook delivery client
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send delivers a message to a webhook URL. Any 2xx response is success.
func (s *WebhookSender) Send(ctx context.Context, webhookURL string, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	return nil
}
