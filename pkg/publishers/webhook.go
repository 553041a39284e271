package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/Adda-Baaj/khobor-watch/pkg/httpclient"
	"github.com/go-resty/resty/v2"
)

// webhookPayload is the chat incoming-webhook body (Slack compatible).
type webhookPayload struct {
	Text string `json:"text"`
}

// webhookPublisher posts the event text to a chat incoming webhook.
type webhookPublisher struct {
	id      string
	url     string
	headers map[string]string
	client  *resty.Client
	log     Logger
}

func newWebhookPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Webhook == nil {
		return nil, fmt.Errorf("publisher %q missing webhook configuration", cfg.ID)
	}

	return &webhookPublisher{
		id:      cfg.ID,
		url:     cfg.Webhook.URL,
		headers: cfg.Webhook.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second),
		log:     logger.Ensure(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeWebhook }

// Publish sends {"text": evt.Text}. Only a 2xx response counts as delivered.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	req := w.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Text: evt.Text})

	if len(w.headers) > 0 {
		req.SetHeaders(w.headers)
	}
	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook response status %d: %s", resp.StatusCode(), readBodySnippet(resp.Body()))
	}
	w.log.DebugObj("webhook delivered", "publisher_webhook_delivery", map[string]any{
		"publisher_id": w.id,
		"status":       resp.StatusCode(),
	})
	return nil
}
