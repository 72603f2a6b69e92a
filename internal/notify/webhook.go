package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

const defaultWebhookTimeout = 5 * time.Second

// WebhookSink delivers anomaly events as JSON POST requests. Delivery is
// best effort; a failed or slow endpoint never propagates back into the
// credential path.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookSink{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *WebhookSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.url == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}
