package analyzer

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

func testLLMConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "gpt-4",
		MaxTokens:   200,
		Temperature: 0.1,
		Timeout:     5,
	}
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: content}})
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestLLMClient_ClassifySuccess(t *testing.T) {
	content := `Here is my assessment:
{"impact": "Positive", "confidence": 88, "summary": "ETF approval lifts sentiment", "reasoning": "strong inflows"}`
	server := completionServer(t, content)
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	verdict, ok := client.Classify(context.Background(), "ETF approved", "Spot ETF goes live", "en", "test_item_0")

	require.True(t, ok)
	assert.Equal(t, models.ImpactPositive, verdict.Impact)
	assert.Equal(t, 88, verdict.Confidence)
	assert.Equal(t, "ETF approval lifts sentiment", verdict.Summary)
	assert.Equal(t, "en", verdict.Lang)
	assert.False(t, verdict.LowConfidence)
	assert.Empty(t, verdict.AffectedCoins)
}

func TestLLMClient_ConfidenceClamped(t *testing.T) {
	content := `{"impact": "Negative", "confidence": 250, "summary": "sell-off"}`
	server := completionServer(t, content)
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	verdict, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	require.True(t, ok)
	assert.Equal(t, 100, verdict.Confidence)
}

func TestLLMClient_NoCredentialIsUnavailable(t *testing.T) {
	cfg := testLLMConfig("http://localhost:1")
	cfg.APIKey = ""
	client := NewLLMClient(cfg, logrus.New())

	verdict, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
	assert.Nil(t, verdict)
}

func TestLLMClient_HTTPErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	_, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
}

func TestLLMClient_TransportFailureIsUnavailable(t *testing.T) {
	// Nothing listens here
	client := NewLLMClient(testLLMConfig("http://127.0.0.1:1"), logrus.New())

	_, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
}

func TestLLMClient_NoJSONInReplyIsUnavailable(t *testing.T) {
	server := completionServer(t, "I cannot provide a structured answer.")
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	_, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
}

func TestLLMClient_InvalidImpactIsUnavailable(t *testing.T) {
	server := completionServer(t, `{"impact": "Bullish", "confidence": 80, "summary": "x"}`)
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	_, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
}

func TestLLMClient_MissingFieldsAreUnavailable(t *testing.T) {
	server := completionServer(t, `{"impact": "Positive"}`)
	defer server.Close()

	client := NewLLMClient(testLLMConfig(server.URL), logrus.New())

	_, ok := client.Classify(context.Background(), "t", "s", "en", "test_item_0")

	assert.False(t, ok)
}

func TestParseCompletion_ExtractsEmbeddedObject(t *testing.T) {
	completion := "Sure! ```json\n{\"impact\": \"Neutral\", \"confidence\": 50, \"summary\": \"mixed\"}\n``` hope that helps"

	verdict, ok := parseCompletion(completion, "ar")

	require.True(t, ok)
	assert.Equal(t, models.ImpactNeutral, verdict.Impact)
	assert.Equal(t, "ar", verdict.Lang)
}
