// Package analyzer implements the hybrid news classification pipeline: a
// deterministic keyword stage, coin-mention detection, an escalation policy
// and an optional LLM confirmation stage with keyword fallback.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/cache"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

// Keyword-only verdicts are capped at this confidence in the final response.
const keywordFallbackCap = 75

// Arabic Unicode block used for language detection.
const (
	arabicRangeStart = 0x0600
	arabicRangeEnd   = 0x06FF
)

// Analyzer orchestrates the per-item analysis pipeline and the batch fan-out.
// All stages are safe for concurrent use; the cache is the only shared
// resource between in-flight items.
type Analyzer struct {
	cache    *cache.Manager
	llm      *LLMClient
	scorer   *KeywordScorer
	coins    *CoinDetector
	policy   *EscalationPolicy
	logger   *logrus.Logger
	cacheTTL time.Duration
}

// New wires the pipeline stages together. The cache manager and LLM client are
// injected; the deterministic stages are built here once and shared.
func New(cacheManager *cache.Manager, llm *LLMClient, logger *logrus.Logger, cacheTTL time.Duration) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 12 * time.Hour
	}
	return &Analyzer{
		cache:    cacheManager,
		llm:      llm,
		scorer:   NewKeywordScorer(),
		coins:    NewCoinDetector(),
		policy:   NewEscalationPolicy(),
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// AnalyzeSingle runs the full pipeline for one item, consulting the cache
// first and storing the fresh verdict on completion. It always returns a
// verdict for a well-formed input; dependency failures degrade, they do not
// propagate.
func (a *Analyzer) AnalyzeSingle(ctx context.Context, title, summary, requestID string) *models.Analysis {
	key := cache.AnalysisKey(title, summary)

	if cached, ok := a.cache.GetAnalysis(ctx, key); ok {
		a.logger.WithField("request_id", requestID).Info("Cache hit for analysis")
		return cached
	}

	result := a.analyzeItem(ctx, title, summary, requestID)

	a.cache.SetAnalysis(ctx, key, result, a.cacheTTL)

	return result
}

// AnalyzeBatch fans the items out to concurrent pipeline invocations and
// collects the verdicts in input order. A panicking item is converted into a
// neutral placeholder at its position; it never aborts or reorders siblings.
// Batches outside the 1..MaxBatchSize bound are rejected before any work.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []models.NewsItem, requestID string) ([]models.Analysis, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("news batch is empty")
	}
	if len(items) > models.MaxBatchSize {
		return nil, fmt.Errorf("news batch exceeds %d items", models.MaxBatchSize)
	}

	a.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"items":      len(items),
	}).Info("Starting batch analysis")

	results := make([]models.Analysis, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.NewsItem) {
			defer wg.Done()
			itemID := fmt.Sprintf("%s_item_%d", requestID, i)
			defer func() {
				if r := recover(); r != nil {
					a.logger.WithFields(logrus.Fields{
						"request_id": requestID,
						"item":       i,
					}).Errorf("Item analysis failed: %v", r)
					results[i] = failedAnalysis(fmt.Sprintf("%v", r))
				}
			}()
			results[i] = *a.AnalyzeSingle(ctx, item.Title, item.Summary, itemID)
		}(i, item)
	}
	wg.Wait()

	a.logger.WithField("request_id", requestID).Info("Batch analysis completed")
	return results, nil
}

// analyzeItem is the uncached core pipeline for one item.
func (a *Analyzer) analyzeItem(ctx context.Context, title, summary, itemID string) *models.Analysis {
	fullText := strings.ToLower(title + " " + summary)

	// Phase 1: keyword verdict
	impact, confidence := a.scorer.Score(fullText)

	lang := detectLanguage(title + summary)
	affectedCoins := a.coins.Detect(title + summary)

	// Phase 2: LLM confirmation when the keyword verdict is not trustworthy
	if a.policy.ShouldEscalate(confidence, fullText) {
		if verdict, ok := a.llm.Classify(ctx, title, summary, lang, itemID); ok {
			// Pipeline-detected coins win when present; the LLM verdict
			// always arrives with an empty set.
			if len(affectedCoins) > 0 {
				verdict.AffectedCoins = models.NormalizeCoins(affectedCoins)
			}
			return verdict
		}
		a.logger.WithField("item_id", itemID).Warn("LLM unavailable, falling back to keyword verdict")
	}

	return &models.Analysis{
		Impact:        impact,
		Confidence:    min(confidence, keywordFallbackCap),
		AffectedCoins: models.NormalizeCoins(affectedCoins),
		Summary:       generateSummary(title, impact, confidence, lang),
		Lang:          lang,
		LowConfidence: confidence < escalationConfidenceThreshold,
	}
}

// detectLanguage returns "ar" when any character falls in the Arabic Unicode
// range, "en" otherwise.
func detectLanguage(text string) string {
	for _, r := range text {
		if r >= arabicRangeStart && r <= arabicRangeEnd {
			return "ar"
		}
	}
	return "en"
}

// generateSummary builds the human-readable broadcast line for a verdict.
func generateSummary(title string, impact models.Impact, confidence int, lang string) string {
	shortTitle := title
	if runes := []rune(title); len(runes) > 80 {
		shortTitle = string(runes[:80]) + "..."
	}

	confidenceText := "Low"
	switch {
	case confidence > 75:
		confidenceText = "High"
	case confidence > 50:
		confidenceText = "Medium"
	}

	if lang == "ar" {
		return fmt.Sprintf("%s - تأثير %s (%s ثقة)", shortTitle, impact, confidenceText)
	}
	return fmt.Sprintf("%s - %s impact (%s confidence)", shortTitle, impact, confidenceText)
}

// failedAnalysis is the placeholder verdict for an item whose pipeline
// invocation faulted unexpectedly.
func failedAnalysis(message string) models.Analysis {
	return models.Analysis{
		Impact:        models.ImpactNeutral,
		Confidence:    0,
		AffectedCoins: []string{},
		Summary:       "Analysis failed",
		Lang:          "en",
		Error:         message,
	}
}
