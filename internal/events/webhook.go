package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type WebhookSink struct {
	client  *http.Client
	url     string
	authKey string
}

func NewWebhookSink(client *http.Client, url, authKey string) *WebhookSink {
	return &WebhookSink{client: client, url: url, authKey: authKey}
}

func (w *WebhookSink) Name() string { return "webhook" }

func (w *WebhookSink) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.authKey != "" {
		req.Header.Set("x-ins-auth-key", w.authKey)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received status %d from webhook", resp.StatusCode)
	}
	return nil
}
