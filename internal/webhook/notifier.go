// Package webhook delivers best-effort batch-completion notifications.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

const userAgent = "MCP-News-Webhook/1.0"

// Notifier posts analysis summaries to a configured webhook URL. Delivery is
// fire-and-forget: failures are logged and never surfaced to the analysis
// caller. A Notifier without a URL is valid and skips all sends.
type Notifier struct {
	httpClient *http.Client
	url        string
	secret     string
	logger     *logrus.Logger
}

// NewNotifier creates a notifier from the webhook configuration.
func NewNotifier(cfg config.WebhookConfig, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.New()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	n := &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		secret:     cfg.Secret,
		logger:     logger,
	}

	if n.Enabled() {
		logger.Info("Webhook notifications enabled")
	} else {
		logger.Info("Webhook notifications disabled (no URL configured)")
	}
	return n
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// SendBatchResults delivers a batch summary. Returns true when delivery
// succeeded or the notifier is disabled.
func (n *Notifier) SendBatchResults(ctx context.Context, results []models.Analysis, requestID string) bool {
	if !n.Enabled() {
		return true
	}

	payload := models.WebhookPayload{
		RequestID:    requestID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		TotalItems:   len(results),
		Results:      results,
		SummaryStats: summarize(results),
	}

	if err := n.send(ctx, payload); err != nil {
		n.logger.WithField("request_id", requestID).WithError(err).Error("Webhook delivery failed")
		return false
	}

	n.logger.WithField("request_id", requestID).Info("Webhook sent successfully")
	return true
}

// Test posts a canned payload to verify connectivity.
func (n *Notifier) Test(ctx context.Context) error {
	if !n.Enabled() {
		return fmt.Errorf("no webhook URL configured")
	}

	payload := map[string]interface{}{
		"test":      true,
		"test_id":   uuid.New().String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "mcp-crypto-news",
	}
	return n.send(ctx, payload)
}

func (n *Notifier) send(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if n.secret != "" {
		req.Header.Set("X-Webhook-Secret", n.secret)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 202 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// summarize tallies impacts, confidence levels and errors across the batch.
func summarize(results []models.Analysis) models.SummaryStats {
	var stats models.SummaryStats
	for _, result := range results {
		switch result.Impact {
		case models.ImpactPositive:
			stats.Positive++
		case models.ImpactNegative:
			stats.Negative++
		case models.ImpactNeutral:
			stats.Neutral++
		}

		if result.Confidence > 75 {
			stats.HighConfidence++
		} else {
			stats.LowConfidence++
		}

		if result.Error != "" {
			stats.Errors++
		}
	}
	return stats
}
