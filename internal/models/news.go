package models

import (
	"fmt"
	"strings"
)

// Impact represents the assessed directional market sentiment of a news item.
type Impact string

const (
	ImpactPositive Impact = "Positive"
	ImpactNegative Impact = "Negative"
	ImpactNeutral  Impact = "Neutral"
)

// IsValid reports whether the impact is one of the three known values.
func (i Impact) IsValid() bool {
	switch i {
	case ImpactPositive, ImpactNegative, ImpactNeutral:
		return true
	}
	return false
}

// Input bounds enforced before any analysis work starts.
const (
	MaxTitleLength   = 500
	MaxSummaryLength = 2000
	MaxBatchSize     = 50
)

// NewsItem is a single news item submitted for analysis.
type NewsItem struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary" binding:"required"`
}

// Validate checks the required fields and length bounds.
func (n NewsItem) Validate() error {
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	if len(n.Title) > MaxTitleLength {
		return fmt.Errorf("title exceeds %d characters", MaxTitleLength)
	}
	if len(n.Summary) > MaxSummaryLength {
		return fmt.Errorf("summary exceeds %d characters", MaxSummaryLength)
	}
	return nil
}

// Analysis is the verdict produced for one news item. It is never mutated
// after creation; re-analysis produces a new value.
type Analysis struct {
	Impact        Impact   `json:"impact"`
	Confidence    int      `json:"confidence"`
	AffectedCoins []string `json:"affected_coins"`
	Summary       string   `json:"summary"`
	Lang          string   `json:"lang"`
	LowConfidence bool     `json:"low_confidence"`
	Error         string   `json:"error,omitempty"`
}

// NormalizeCoins uppercases symbols and removes duplicates and empty entries.
func NormalizeCoins(coins []string) []string {
	seen := make(map[string]bool, len(coins))
	normalized := make([]string, 0, len(coins))
	for _, coin := range coins {
		if coin == "" {
			continue
		}
		symbol := strings.ToUpper(coin)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		normalized = append(normalized, symbol)
	}
	return normalized
}

// ClampConfidence bounds a confidence value to the [0,100] range.
func ClampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

// BatchRequest is the REST payload for batch analysis.
type BatchRequest struct {
	News []NewsItem `json:"news" binding:"required"`
}

// Validate checks the batch bounds and every item in it.
func (b BatchRequest) Validate() error {
	if len(b.News) == 0 {
		return fmt.Errorf("news batch is empty")
	}
	if len(b.News) > MaxBatchSize {
		return fmt.Errorf("news batch exceeds %d items", MaxBatchSize)
	}
	for i, item := range b.News {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// SummaryStats tallies batch results for webhook notifications.
type SummaryStats struct {
	Positive       int `json:"positive"`
	Negative       int `json:"negative"`
	Neutral        int `json:"neutral"`
	HighConfidence int `json:"high_confidence"`
	LowConfidence  int `json:"low_confidence"`
	Errors         int `json:"errors"`
}

// WebhookPayload is the batch-completion notification body.
type WebhookPayload struct {
	RequestID    string       `json:"request_id"`
	Timestamp    string       `json:"timestamp"`
	TotalItems   int          `json:"total_items"`
	Results      []Analysis   `json:"results"`
	SummaryStats SummaryStats `json:"summary_stats"`
}
