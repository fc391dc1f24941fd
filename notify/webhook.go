package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
)

// WebhookPayload is the JSON body POSTed for every failure.
type WebhookPayload struct {
	AccountID  string    `json:"account_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Webhook POSTs failure messages as JSON to an HTTP endpoint.
type Webhook struct {
	client  *http.Client
	url     string
	headers map[string]string
	now     func() time.Time
}

var _ goVerify.Notifier = (*Webhook)(nil)

// WebhookOption configures Webhook.
type WebhookOption func(*Webhook)

// WithClient sets the HTTP client (default: 10s timeout).
func WithClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		w.client = c
	}
}

// WithHeader sets a header sent on every request (e.g. Authorization).
func WithHeader(key, value string) WebhookOption {
	return func(w *Webhook) {
		if w.headers == nil {
			w.headers = make(map[string]string)
		}
		w.headers[key] = value
	}
}

// NewWebhook returns a notifier posting to url.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify POSTs a [WebhookPayload]. Non-2xx responses are errors.
func (w *Webhook) Notify(ctx context.Context, accountID, message string) error {
	body, err := json.Marshal(WebhookPayload{
		AccountID:  accountID,
		Message:    message,
		OccurredAt: w.now().UTC(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
