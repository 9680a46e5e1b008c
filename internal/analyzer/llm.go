package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

const llmSystemPrompt = "You are a cryptocurrency market analyst."

// Greedy on purpose: the completion may wrap the JSON object in prose, and the
// object itself can span lines.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// LLMClient calls the external chat-completion endpoint for the confirmation
// stage. Every failure mode (missing credential, transport error, bad status,
// unparseable reply) is reported as "unavailable" via the ok return, never as
// an error: callers fall back to the keyword verdict.
type LLMClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        config.OpenAIConfig
	logger     *logrus.Logger
}

// NewLLMClient creates a client from the OpenAI configuration.
func NewLLMClient(cfg config.OpenAIConfig, logger *logrus.Logger) *LLMClient {
	if logger == nil {
		logger = logrus.New()
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &LLMClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		cfg:        cfg,
		logger:     logger,
	}
}

// Enabled reports whether an API credential is configured.
func (c *LLMClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify asks the LLM for a verdict on one news item. The returned analysis
// carries the pipeline's language, an empty coin set and low_confidence=false;
// coin detection is layered on by the caller.
func (c *LLMClient) Classify(ctx context.Context, title, summary, lang, itemID string) (*models.Analysis, bool) {
	if !c.Enabled() {
		c.logger.WithField("item_id", itemID).Warn("No LLM API key configured")
		return nil, false
	}

	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: llmSystemPrompt},
			{Role: "user", Content: buildPrompt(title, summary)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	completion, err := c.createCompletion(ctx, payload)
	if err != nil {
		c.logger.WithField("item_id", itemID).WithError(err).Error("LLM request failed")
		return nil, false
	}

	analysis, ok := parseCompletion(completion, lang)
	if !ok {
		c.logger.WithField("item_id", itemID).Error("Failed to parse LLM response")
		return nil, false
	}
	return analysis, true
}

func (c *LLMClient) createCompletion(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("LLM response contains no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func buildPrompt(title, summary string) string {
	return fmt.Sprintf(`Analyze this cryptocurrency news for market impact:

Title: %s
Summary: %s

Respond with JSON format only:
{
    "impact": "Positive|Negative|Neutral",
    "confidence": 0-100,
    "summary": "Brief summary for trading alerts",
    "reasoning": "Why this impact?"
}

Focus on immediate market sentiment and price impact potential.`, title, summary)
}

type llmVerdict struct {
	Impact     string   `json:"impact"`
	Confidence *float64 `json:"confidence"`
	Summary    string   `json:"summary"`
	Reasoning  string   `json:"reasoning"`
}

// parseCompletion extracts the first well-formed JSON object from the free-form
// reply and validates its fields.
func parseCompletion(completion, lang string) (*models.Analysis, bool) {
	raw := jsonObjectPattern.FindString(completion)
	if raw == "" {
		return nil, false
	}

	var verdict llmVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, false
	}

	impact := models.Impact(verdict.Impact)
	if !impact.IsValid() {
		return nil, false
	}
	if verdict.Confidence == nil || verdict.Summary == "" {
		return nil, false
	}

	return &models.Analysis{
		Impact:        impact,
		Confidence:    models.ClampConfidence(int(*verdict.Confidence)),
		AffectedCoins: []string{},
		Summary:       verdict.Summary,
		Lang:          lang,
		LowConfidence: false,
	}, true
}
