package analyzer

import (
	"regexp"

	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

// Weighted sentiment lexicons. Static for the process lifetime; compiled once
// by NewKeywordScorer and shared read-only across concurrent pipelines.
var positiveLexicon = map[string]int{
	"surge": 10, "soar": 10, "rally": 9, "pump": 8, "moon": 8,
	"bullish": 9, "positive": 7, "gain": 8, "up": 6, "rise": 7,
	"breakout": 9, "adoption": 8, "approval": 10, "partnership": 8,
	"upgrade": 7, "milestone": 8, "breakthrough": 9, "success": 8,
	"launch": 7, "integration": 7, "buy": 6, "invest": 7,
	"green": 5, "profit": 8, "ath": 9, "new high": 9,
}

var negativeLexicon = map[string]int{
	"crash": 10, "dump": 9, "drop": 8, "fall": 7, "decline": 7,
	"bearish": 9, "negative": 7, "loss": 8, "down": 6, "plunge": 9,
	"collapse": 10, "hack": 10, "scam": 10, "fraud": 10, "ban": 9,
	"regulation": 6, "crackdown": 8, "liquidation": 8, "sell": 6,
	"red": 5, "correction": 7, "dip": 5, "panic": 8, "fear": 7,
}

// Confidence ceilings. The doubled score is capped at 100, the scorer output
// at 85 and the pipeline caps the keyword fallback at 75. The three values are
// intentionally distinct.
const (
	keywordConfidenceCap = 85
	doubledScoreCap      = 100
	scoreThreshold       = 5
)

type lexiconTerm struct {
	pattern *regexp.Regexp
	weight  int
}

// KeywordScorer performs the deterministic keyword stage of the hybrid
// pipeline. It is pure and safe for concurrent use.
type KeywordScorer struct {
	positive []lexiconTerm
	negative []lexiconTerm
}

// NewKeywordScorer compiles the lexicons into whole-word matchers.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		positive: compileLexicon(positiveLexicon),
		negative: compileLexicon(negativeLexicon),
	}
}

func compileLexicon(lexicon map[string]int) []lexiconTerm {
	terms := make([]lexiconTerm, 0, len(lexicon))
	for keyword, weight := range lexicon {
		terms = append(terms, lexiconTerm{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`),
			weight:  weight,
		})
	}
	return terms
}

// Score scans the combined lowercased text and returns the keyword verdict.
// Every whole-word occurrence of a term adds its weight; a term occurring N
// times contributes N times its weight.
func (s *KeywordScorer) Score(text string) (models.Impact, int) {
	positiveScore := scoreLexicon(s.positive, text)
	negativeScore := scoreLexicon(s.negative, text)

	var impact models.Impact
	var confidence int

	switch {
	case positiveScore > negativeScore && positiveScore > scoreThreshold:
		impact = models.ImpactPositive
		confidence = min(positiveScore*2, doubledScoreCap)
	case negativeScore > positiveScore && negativeScore > scoreThreshold:
		impact = models.ImpactNegative
		confidence = min(negativeScore*2, doubledScoreCap)
	default:
		impact = models.ImpactNeutral
		diff := positiveScore - negativeScore
		if diff < 0 {
			diff = -diff
		}
		confidence = 40 + diff
	}

	return impact, min(confidence, keywordConfidenceCap)
}

func scoreLexicon(terms []lexiconTerm, text string) int {
	score := 0
	for _, term := range terms {
		matches := term.pattern.FindAllStringIndex(text, -1)
		score += len(matches) * term.weight
	}
	return score
}
