package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/types"
)

// WebhookConfig configures webhook delivery.
type WebhookConfig struct {
	URL        string        `json:"url" yaml:"url"`
	AuthToken  string        `json:"auth_token" yaml:"auth_token"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	Backoff    time.Duration `json:"backoff" yaml:"backoff"`
}

// Webhook posts each message as JSON to a configured endpoint,
// retrying rate-limit and server errors with exponential backoff.
type Webhook struct {
	config WebhookConfig
	client *http.Client
	logger *zap.Logger
}

// NewWebhook creates a webhook notifier.
func NewWebhook(config WebhookConfig, logger *zap.Logger) (*Webhook, error) {
	if config.URL == "" {
		return nil, types.NewError(types.ErrValidation, "webhook notifier requires a url")
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.Backoff <= 0 {
		config.Backoff = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("component", "webhook_notifier")),
	}, nil
}

func (w *Webhook) Send(ctx context.Context, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= w.config.MaxRetries+1; attempt++ {
		lastErr = w.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if !types.IsRetryable(lastErr) || attempt > w.config.MaxRetries {
			break
		}
		w.logger.Warn("notification delivery failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(w.config.Backoff, attempt)):
		}
	}
	return lastErr
}

func (w *Webhook) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.AuthToken)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return types.NewErrorf(types.ErrExternalService, "deliver notification: %v", err).WithRetryable(true)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	e := types.NewErrorf(types.ErrExternalService, "notification endpoint returned %d", resp.StatusCode)
	return e.WithRetryable(retryableStatus(resp.StatusCode))
}
