package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func sampleResults() []models.Analysis {
	return []models.Analysis{
		{Impact: models.ImpactPositive, Confidence: 90, AffectedCoins: []string{"BTC"}, Summary: "up", Lang: "en"},
		{Impact: models.ImpactNegative, Confidence: 40, AffectedCoins: []string{}, Summary: "down", Lang: "en"},
		{Impact: models.ImpactNeutral, Confidence: 0, AffectedCoins: []string{}, Summary: "Analysis failed", Lang: "en", Error: "boom"},
	}
}

func TestNotifier_SendBatchResults(t *testing.T) {
	var received models.WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "top-secret", r.Header.Get("X-Webhook-Secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewNotifier(config.WebhookConfig{URL: server.URL, Secret: "top-secret", Timeout: 5}, testLogger())

	ok := notifier.SendBatchResults(context.Background(), sampleResults(), "req_1")

	require.True(t, ok)
	assert.Equal(t, "req_1", received.RequestID)
	assert.Equal(t, 3, received.TotalItems)
	assert.Len(t, received.Results, 3)
	assert.NotEmpty(t, received.Timestamp)

	assert.Equal(t, 1, received.SummaryStats.Positive)
	assert.Equal(t, 1, received.SummaryStats.Negative)
	assert.Equal(t, 1, received.SummaryStats.Neutral)
	assert.Equal(t, 1, received.SummaryStats.HighConfidence)
	assert.Equal(t, 2, received.SummaryStats.LowConfidence)
	assert.Equal(t, 1, received.SummaryStats.Errors)
}

func TestNotifier_DisabledSkipsDelivery(t *testing.T) {
	notifier := NewNotifier(config.WebhookConfig{}, testLogger())

	assert.False(t, notifier.Enabled())
	assert.True(t, notifier.SendBatchResults(context.Background(), sampleResults(), "req_2"))
}

func TestNotifier_ServerErrorReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewNotifier(config.WebhookConfig{URL: server.URL, Timeout: 5}, testLogger())

	assert.False(t, notifier.SendBatchResults(context.Background(), sampleResults(), "req_3"))
}

func TestNotifier_TransportFailureReportsFailure(t *testing.T) {
	notifier := NewNotifier(config.WebhookConfig{URL: "http://127.0.0.1:1", Timeout: 1}, testLogger())

	assert.False(t, notifier.SendBatchResults(context.Background(), sampleResults(), "req_4"))
}

func TestNotifier_Test(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	notifier := NewNotifier(config.WebhookConfig{URL: server.URL, Timeout: 5}, testLogger())

	require.NoError(t, notifier.Test(context.Background()))
	assert.Equal(t, true, received["test"])
	assert.NotEmpty(t, received["test_id"])

	disabled := NewNotifier(config.WebhookConfig{}, testLogger())
	assert.Error(t, disabled.Test(context.Background()))
}

func TestSummarize_EmptyBatch(t *testing.T) {
	stats := summarize(nil)
	assert.Equal(t, models.SummaryStats{}, stats)
}

func TestSummarize_ConfidenceBoundary(t *testing.T) {
	// 76 counts as high confidence, 75 does not
	stats := summarize([]models.Analysis{
		{Impact: models.ImpactNeutral, Confidence: 76},
		{Impact: models.ImpactNeutral, Confidence: 75},
	})
	assert.Equal(t, 1, stats.HighConfidence)
	assert.Equal(t, 1, stats.LowConfidence)
}
