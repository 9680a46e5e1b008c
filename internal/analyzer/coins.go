package analyzer

import (
	"regexp"
	"strings"
)

// Alias table mapping mention patterns to canonical symbols. Static for the
// process lifetime.
var coinAliases = []struct {
	aliases string
	symbol  string
}{
	{`\bbtc\b|\bbitcoin\b`, "BTC"},
	{`\beth\b|\bethereum\b`, "ETH"},
	{`\bbnb\b|\bbinance\b`, "BNB"},
	{`\bada\b|\bcardano\b`, "ADA"},
	{`\bsol\b|\bsolana\b`, "SOL"},
	{`\bxrp\b|\bripple\b`, "XRP"},
	{`\bdot\b|\bpolkadot\b`, "DOT"},
	{`\bavax\b|\bavalanche\b`, "AVAX"},
	{`\bmatic\b|\bpolygon\b`, "MATIC"},
	{`\blink\b|\bchainlink\b`, "LINK"},
}

type coinPattern struct {
	pattern *regexp.Regexp
	symbol  string
}

// CoinDetector scans text for cryptocurrency mentions. Pure and safe for
// concurrent use.
type CoinDetector struct {
	patterns []coinPattern
}

// NewCoinDetector compiles the alias table.
func NewCoinDetector() *CoinDetector {
	patterns := make([]coinPattern, 0, len(coinAliases))
	for _, alias := range coinAliases {
		patterns = append(patterns, coinPattern{
			pattern: regexp.MustCompile(alias.aliases),
			symbol:  alias.symbol,
		})
	}
	return &CoinDetector{patterns: patterns}
}

// Detect returns the deduplicated set of canonical symbols mentioned in the
// text. The result is never nil.
func (d *CoinDetector) Detect(text string) []string {
	lowered := strings.ToLower(text)
	detected := []string{}
	for _, p := range d.patterns {
		if p.pattern.MatchString(lowered) {
			detected = append(detected, p.symbol)
		}
	}
	return detected
}
